package mapslicehelp

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

func AsSet[T comparable](elements []T) map[T]struct{} {
	set := make(map[T]struct{}, len(elements))
	for _, element := range elements {
		set[element] = struct{}{}
	}
	return set
}

// OrderedMapKeys returns all keys, oldest first.
func OrderedMapKeys[K comparable, V any](m *orderedmap.OrderedMap[K, V]) []K {
	return FilterOrderedMapKeys(m, nil)
}

// FilterOrderedMapKeys returns the keys whose value passes keep, oldest first. A nil keep passes everything.
func FilterOrderedMapKeys[K comparable, V any](m *orderedmap.OrderedMap[K, V], keep func(V) bool) []K {
	l := make([]K, 0, m.Len())
	for p := m.Oldest(); p != nil; p = p.Next() {
		if keep == nil || keep(p.Value) {
			l = append(l, p.Key)
		}
	}
	return l
}
