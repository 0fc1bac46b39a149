package containers

import (
	"iter"

	"github.com/trumank/meatloaf/internal/remote"
)

// Pair is one (key, value) entry of a decoded Map.
type Pair[K, V any] struct {
	Key   K
	Value V
}

// Map is a TMap<K,V>: a hash set of (K,V) tuples. No operations beyond
// iterating pairs are required.
type Map struct {
	set HashSet
}

// ReadMap decodes a TMap<K,V> header at addr. Structurally identical to a
// TSet whose element type is the (K,V) pair.
func ReadMap(ctx *remote.Context, addr remote.Addr) (Map, error) {
	set, err := ReadHashSet(ctx, addr)
	if err != nil {
		return Map{}, err
	}
	return Map{set: set}, nil
}

// MapIterLive iterates the backing set of (K,V) tuples.
func MapIterLive[K, V any](ctx *remote.Context, m Map, keySize, valueSize int64, decodeKey ReadLocalDecoder[K], decodeValue ReadLocalDecoder[V]) iter.Seq[Item[Pair[K, V]]] {
	pairSize := keySize + valueSize
	decode := func(window []byte) (Pair[K, V], error) {
		k, err := decodeKey(window[:keySize])
		if err != nil {
			return Pair[K, V]{}, err
		}
		v, err := decodeValue(window[keySize : keySize+valueSize])
		if err != nil {
			return Pair[K, V]{}, err
		}
		return Pair[K, V]{Key: k, Value: v}, nil
	}
	return SetIterLive(ctx, m.set, pairSize, decode)
}
