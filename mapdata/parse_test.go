package mapdata

import (
	"testing"

	"github.com/paulmach/osm"
	"github.com/pdok/asciimap/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodeIDs(nodes []Node) []osm.NodeID {
	ids := make([]osm.NodeID, len(nodes))
	for i := range nodes {
		ids[i] = nodes[i].ID
	}
	return ids
}

func TestParseVectorData(t *testing.T) {
	raw := []byte(`{
  "version": 0.6,
  "elements": [
    {"type": "node", "id": 1, "lat": 45.0, "lon": 4.0},
    {"type": "node", "id": 2, "lat": 45.01, "lon": 4.01},
    {"type": "node", "id": 3, "lat": 45.005, "lon": 4.002},
    {"type": "node", "id": 4, "lat": 45.002, "lon": 4.005},
    {"type": "way", "id": 10, "nodes": [1, 2, 99, 5], "tags": {"highway": "motorway", "name": "A7", "lanes": "2"}},
    {"type": "node", "id": 5, "lat": 45.003, "lon": 4.003},
    {"type": "way", "id": 11, "nodes": [2, 4], "tags": {"waterway": "river"}},
    {"type": "relation", "id": 12, "members": []}
  ]
}`)
	data, err := ParseVectorData(raw)
	require.NoError(t, err)
	require.Len(t, data.Ways, 2)

	motorway := data.Ways[0]
	assert.Equal(t, osm.WayID(10), motorway.ID)
	assert.Equal(t, []osm.NodeID{1, 2}, nodeIDs(motorway.Nodes))
	assert.Equal(t, style.MustClassify("motorway"), motorway.WayType())
	assert.Equal(t, osm.Tags{
		{Key: "highway", Value: "motorway"},
		{Key: "lanes", Value: "2"},
		{Key: "name", Value: "A7"},
	}, motorway.Tags)

	// node 2 was claimed by the motorway
	river := data.Ways[1]
	assert.Equal(t, []osm.NodeID{4}, nodeIDs(river.Nodes))
	assert.Equal(t, style.MustClassify("river"), river.Nodes[0].WayType)

	assert.Equal(t, []osm.NodeID{3, 5}, nodeIDs(data.LoneNodes))
	for _, n := range data.LoneNodes {
		assert.Equal(t, style.Untyped, n.WayType)
	}
	// 99 never appears, 5 appears too late, 2 was already claimed
	assert.Equal(t, 3, data.SkippedRefs)
}

func TestParseVectorData_bareArray(t *testing.T) {
	raw := []byte(` [
	{"type": "node", "id": 1, "lat": 1, "lon": 2},
	{"type": "way", "id": 2, "nodes": [1]}
]`)
	data, err := ParseVectorData(raw)
	require.NoError(t, err)
	require.Len(t, data.Ways, 1)
	assert.Equal(t, style.Untyped, data.Ways[0].WayType())
	assert.Empty(t, data.LoneNodes)
}

func TestParseVectorData_repeatedNode(t *testing.T) {
	raw := []byte(`{"elements": [
	{"type": "node", "id": 1, "lat": 1, "lon": 1},
	{"type": "node", "id": 1, "lat": 2, "lon": 2}
]}`)
	data, err := ParseVectorData(raw)
	require.NoError(t, err)
	require.Len(t, data.LoneNodes, 1)
	assert.Equal(t, 2.0, data.LoneNodes[0].Lat)
}

func TestParseVectorData_empty(t *testing.T) {
	data, err := ParseVectorData([]byte(`{"elements": []}`))
	require.NoError(t, err)
	assert.Empty(t, data.Ways)
	assert.Empty(t, data.LoneNodes)
}

func TestParseVectorData_malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "truncated", raw: `{"elements": [{"type": "node"`},
		{name: "wrong type", raw: `{"elements": {"type": "node"}}`},
		{name: "html", raw: `<html>rate limited</html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseVectorData([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}
