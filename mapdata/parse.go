package mapdata

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/paulmach/osm"
	"github.com/pdok/asciimap/style"
)

const (
	nodeType = "node"
	wayType  = "way"
)

// element is one record of an Overpass JSON response. Nodes carry lat/lon, ways carry node refs and tags.
type element struct {
	Type  string            `json:"type"`
	ID    int64             `json:"id"`
	Lat   float64           `json:"lat"`
	Lon   float64           `json:"lon"`
	Nodes []int64           `json:"nodes"`
	Tags  map[string]string `json:"tags"`
}

type envelope struct {
	Elements []element `json:"elements"`
}

// Data is the result of ParseVectorData.
type Data struct {
	Ways []*Way
	// LoneNodes are the nodes no way refers to, in input order. They are never drawn.
	LoneNodes []Node
	// SkippedRefs counts way members that referred to a node not seen (or already claimed) before the way.
	SkippedRefs int
}

// ParseVectorData builds ways from an Overpass JSON response (`{"elements": [...]}`) or a bare array of elements.
//
// A node is only found by ways that come after it, and it belongs to the first way that claims it.
// References that do not resolve are skipped. Elements other than nodes and ways are ignored.
func ParseVectorData(raw []byte) (Data, error) {
	elements, err := decode(raw)
	if err != nil {
		return Data{}, err
	}

	var (
		data    Data
		arena   []Node
		claimed []bool
		// unclaimed node id -> index in arena
		scratch = make(map[osm.NodeID]int)
	)
	for i := range elements {
		e := &elements[i]
		switch e.Type {
		case nodeType:
			id := osm.NodeID(e.ID)
			if prev, ok := scratch[id]; ok {
				// a repeated node replaces the earlier one
				claimed[prev] = true
			}
			scratch[id] = len(arena)
			arena = append(arena, Node{ID: id, Lat: e.Lat, Lon: e.Lon, WayType: style.Untyped})
			claimed = append(claimed, false)
		case wayType:
			way := NewWay(osm.WayID(e.ID), toTags(e.Tags))
			for _, ref := range e.Nodes {
				idx, ok := scratch[osm.NodeID(ref)]
				if !ok {
					data.SkippedRefs++
					continue
				}
				delete(scratch, osm.NodeID(ref))
				claimed[idx] = true
				way.AddNode(arena[idx])
			}
			data.Ways = append(data.Ways, way)
		}
	}

	for i := range arena {
		if !claimed[i] {
			data.LoneNodes = append(data.LoneNodes, arena[i])
		}
	}
	return data, nil
}

func decode(raw []byte) ([]element, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var elements []element
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return nil, fmt.Errorf("failed to decode vector data: %w", err)
		}
		return elements, nil
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("failed to decode vector data: %w", err)
	}
	return env.Elements, nil
}

// toTags converts a tag object to osm.Tags, sorted by key so ways compare equal regardless of JSON key order.
func toTags(m map[string]string) osm.Tags {
	if len(m) == 0 {
		return nil
	}
	tags := make(osm.Tags, 0, len(m))
	for k, v := range m {
		tags = append(tags, osm.Tag{Key: k, Value: v})
	}
	tags.SortByKeyValue()
	return tags
}
