// Package generics implements generic data structure functions missing from the stdlib.
package generics

import (
	"cmp"
	"iter"
	"maps"
	"slices"
)

// SliceMap executes the given function sequentially for every element on in, and returns a mapped slice.
func SliceMap[In, Out any](in []In, fn func(e In) Out) (out []Out) {
	out = make([]Out, len(in))
	for ii, e := range in {
		out[ii] = fn(e)
	}
	return
}

// SortedKeys returns an iterator over the sorted keys of the given map.
//
// It extracts the keys, sort them and then iterate over, so it's convenient but not fast.
func SortedKeys[M interface{ ~map[K]V }, K cmp.Ordered, V any](m M) iter.Seq[K] {
	sortedKeys := slices.Collect(maps.Keys(m))
	slices.Sort(sortedKeys)
	return slices.Values(sortedKeys)
}

// KeysSlice returns the sorted keys of the map as a slice.
func KeysSlice[M interface{ ~map[K]V }, K cmp.Ordered, V any](m M) []K {
	return slices.Collect(SortedKeys(m))
}

// ArgMaxes returns the indices of all the elements of values equal to its maximum, in increasing order.
// It returns nil for an empty slice.
//
// NaN values are never selected, unless all values are NaN.
func ArgMaxes[T cmp.Ordered](values []T) []int {
	var indices []int
	for ii, v := range values {
		if v != v { // NaN.
			continue
		}
		if len(indices) == 0 || v > values[indices[0]] {
			indices = append(indices[:0], ii)
		} else if v == values[indices[0]] {
			indices = append(indices, ii)
		}
	}
	if len(indices) == 0 && len(values) > 0 {
		for ii := range values {
			indices = append(indices, ii)
		}
	}
	return indices
}

// Set implements a Set for the key type T.
type Set[T comparable] map[T]struct{}

// MakeSet returns an empty Set of the given type. Size is optional, and if given
// will reserve the expected size.
func MakeSet[T comparable](size ...int) Set[T] {
	if len(size) == 0 {
		return make(Set[T])
	}
	return make(Set[T], size[0])
}

// Has returns true if Set s has the given key.
func (s Set[T]) Has(key T) bool {
	_, found := s[key]
	return found
}

// Insert keys into set.
func (s Set[T]) Insert(keys ...T) {
	for _, key := range keys {
		s[key] = struct{}{}
	}
}
