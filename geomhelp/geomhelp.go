package geomhelp

import (
	"strings"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/wkt"
	"github.com/muesli/reflow/truncate"
)

// WktMustEncode encodes g as WKT, truncated to maxLen runes (0 means no limit).
// Empty geometries encode as "".
func WktMustEncode(g geom.Geometry, maxLen uint) string {
	switch gg := g.(type) {
	case geom.LineString:
		if len(gg) == 0 {
			return ""
		}
		if len(gg) == 1 {
			return wktMustEncodeTruncated(geom.Point(gg[0]), maxLen)
		}
	case geom.MultiPoint:
		if len(gg) == 0 {
			return ""
		}
	}
	return wktMustEncodeTruncated(g, maxLen)
}

// WktMustEncodeSlice encodes every geometry on its own line.
func WktMustEncodeSlice[G geom.Geometry](geoms []G, maxLen uint) string {
	var sb strings.Builder
	for i := range geoms {
		sb.WriteString(WktMustEncode(geoms[i], maxLen))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func wktMustEncodeTruncated(g geom.Geometry, width uint) string {
	if width == 0 {
		return wkt.MustEncode(g)
	}
	return truncate.StringWithTail(wkt.MustEncode(g), width, "...")
}
