package internal

import (
	"cmp"
	"iter"
	"slices"
)

// Concat2 yields each sequence in turn, until the consumer stops.
func Concat2[K any, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, seq := range seqs {
			for k, v := range seq {
				if !yield(k, v) {
					return
				}
			}
		}
	}
}

// Sorted2 yields the pairs of a sequence ordered by key. Later duplicates
// of a key replace earlier ones.
func Sorted2[K cmp.Ordered, V any](seq iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		all := make(map[K]V)
		for k, v := range seq {
			all[k] = v
		}
		keys := make([]K, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if !yield(k, all[k]) {
				return
			}
		}
	}
}
