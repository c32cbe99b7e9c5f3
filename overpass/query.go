package overpass

import (
	"fmt"
	"strings"
	"time"

	"github.com/pdok/asciimap/geo"
	"github.com/pdok/asciimap/style"
)

const DefaultTimeout = 30 * time.Second

// Query describes what to fetch for a bounding box: the ways of the given types, with their nodes,
// or only the centers of buildings.
type Query struct {
	Box       geo.BoundingBox
	Types     []string
	Timeout   time.Duration
	Buildings bool
}

// NewQuery returns a query for the way types of the given detail level.
// Detail level -1 derives the level from the width of the box.
func NewQuery(box geo.BoundingBox, detailLevel int, timeout time.Duration) (Query, error) {
	if detailLevel == -1 {
		detailLevel = style.DetailLevelForScale(box.DLonKm())
	}
	types, err := style.TypesForDetailLevel(detailLevel)
	if err != nil {
		return Query{}, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return Query{Box: box, Types: types, Timeout: timeout}, nil
}

// Text renders the query in Overpass QL. Without newlines it fits in a single form value or URL parameter.
func (q Query) Text(withNewlines bool) string {
	bbox := q.Box.String()

	var sb strings.Builder
	fmt.Fprintf(&sb, "[out:json][timeout:%d];\n", int(q.Timeout.Seconds()))
	if q.Buildings {
		fmt.Fprintf(&sb, "way[building](%s);\nout center;\n", bbox)
	} else {
		sb.WriteString("(\n(\n")
		for _, name := range q.Types {
			t, ok := style.Classify(name)
			if !ok {
				continue
			}
			fmt.Fprintf(&sb, "way[%s=%s](%s);\n", style.TagKey(t), name, bbox)
		}
		sb.WriteString(");\nnode(w);\n);\nout;\n")
	}

	if withNewlines {
		return sb.String()
	}
	return strings.ReplaceAll(sb.String(), "\n", "")
}

func (q Query) String() string {
	return q.Text(false)
}
