// Package mapdata holds the in-memory model of fetched vector data: nodes and the ways built from them.
package mapdata

import (
	"math"

	"github.com/go-spatial/geom"
	"github.com/paulmach/osm"
	"github.com/pdok/asciimap/mathhelp"
	"github.com/pdok/asciimap/style"
)

// Node is a single geographic point. Synthetic (interpolated) nodes have ID 0.
type Node struct {
	ID      osm.NodeID
	Lat     float64
	Lon     float64
	WayType style.WayType
}

func (n Node) Point() geom.Point {
	return geom.Point{n.Lon, n.Lat}
}

func (n Node) IsSynthetic() bool {
	return n.ID == 0
}

// Way is an ordered path of nodes. The node order is taken as is: connectivity is not checked.
type Way struct {
	ID    osm.WayID
	Nodes []Node
	Tags  osm.Tags

	wayType style.WayType
}

// NewWay creates an empty way, classified by its highway tag or else its waterway tag.
func NewWay(id osm.WayID, tags osm.Tags) *Way {
	return &Way{
		ID:      id,
		Tags:    tags,
		wayType: classify(tags),
	}
}

func classify(tags osm.Tags) style.WayType {
	for _, key := range []string{style.HighwayKey, style.WaterwayKey} {
		if !tags.HasTag(key) {
			continue
		}
		// the first tag present decides, also when its value is unknown
		if t, ok := style.Classify(tags.Find(key)); ok && style.TagKey(t) == key {
			return t
		}
		return style.Untyped
	}
	return style.Untyped
}

// WayType is the catalog index of the way, or style.Untyped.
func (w *Way) WayType() style.WayType {
	return w.wayType
}

// Tag returns the value of the given tag, "" if absent.
func (w *Way) Tag(key string) string {
	return w.Tags.Find(key)
}

// AddNode appends n to the way. The node takes over the type of the way.
func (w *Way) AddNode(n Node) {
	n.WayType = w.wayType
	w.Nodes = append(w.Nodes, n)
}

// InterpolateNodes inserts n evenly spaced synthetic nodes between every pair of consecutive nodes,
// so a way of k nodes ends up with k + n*(k-1) nodes. Ways with less than 2 nodes are left alone.
func (w *Way) InterpolateNodes(n int) {
	k := len(w.Nodes)
	if k < 2 || n <= 0 {
		return
	}
	nodes := make([]Node, 0, k+n*(k-1))
	for i := 0; i < k-1; i++ {
		cur, next := w.Nodes[i], w.Nodes[i+1]
		nodes = append(nodes, cur)
		dLat := next.Lat - cur.Lat
		dLon := next.Lon - cur.Lon
		for j := 1; j <= n; j++ {
			f := float64(j) / float64(n+1)
			nodes = append(nodes, Node{
				Lat:     cur.Lat + dLat*f,
				Lon:     cur.Lon + dLon*f,
				WayType: w.wayType,
			})
		}
	}
	w.Nodes = append(nodes, w.Nodes[k-1])
}

// AngleAt returns the local direction of the way at node i, in degrees in [0, 180).
// The direction runs from the previous to the next node. At the ends of the way the node itself
// stands in for the missing neighbour. An isolated node has angle 0.
func (w *Way) AngleAt(i int) float64 {
	hasPrev := i > 0
	hasNext := i < len(w.Nodes)-1
	switch {
	case hasPrev && hasNext:
		return Angle(w.Nodes[i-1], w.Nodes[i+1])
	case hasPrev:
		return Angle(w.Nodes[i-1], w.Nodes[i])
	case hasNext:
		return Angle(w.Nodes[i], w.Nodes[i+1])
	default:
		return 0
	}
}

// Angle returns the direction of the vector from -> to, measured counterclockwise from east
// and folded into [0, 180). Vertical vectors (equal longitudes) yield 90, coinciding points 0.
func Angle(from, to Node) float64 {
	dLat := to.Lat - from.Lat
	dLon := to.Lon - from.Lon
	if dLat == 0 && dLon == 0 {
		return 0
	}
	// dLon == 0 gives ±Inf, and atan(±Inf) is ±90°
	deg := mathhelp.Rad2Deg(math.Atan(dLat / dLon))
	return mathhelp.FloatMod(deg, 180)
}

func (w *Way) LineString() geom.LineString {
	ls := make(geom.LineString, len(w.Nodes))
	for i := range w.Nodes {
		ls[i] = w.Nodes[i].Point()
	}
	return ls
}
