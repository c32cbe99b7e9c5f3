package mapslicehelp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

func TestAsSet(t *testing.T) {
	set := AsSet([]string{"motorway", "river", "motorway"})
	assert.Len(t, set, 2)
	assert.Contains(t, set, "motorway")
	assert.Contains(t, set, "river")
	assert.Empty(t, AsSet[string](nil))
}

func TestOrderedMapKeys(t *testing.T) {
	m := orderedmap.New[string, int]()
	m.Set("b", 1)
	m.Set("a", 2)
	m.Set("c", 3)
	assert.Equal(t, []string{"b", "a", "c"}, OrderedMapKeys(m))
	assert.Empty(t, OrderedMapKeys(orderedmap.New[string, int]()))
}

func TestFilterOrderedMapKeys(t *testing.T) {
	m := orderedmap.New[string, int]()
	m.Set("b", 1)
	m.Set("a", 2)
	m.Set("c", 3)
	m.Set("d", 4)
	even := func(v int) bool { return v%2 == 0 }
	assert.Equal(t, []string{"a", "d"}, FilterOrderedMapKeys(m, even))
	assert.Equal(t, []string{"b", "a", "c", "d"}, FilterOrderedMapKeys(m, nil))
	assert.Empty(t, FilterOrderedMapKeys(m, func(int) bool { return false }))
}
