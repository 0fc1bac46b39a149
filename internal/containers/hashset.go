package containers

import (
	"iter"

	"github.com/trumank/meatloaf/internal/remote"
)

// setElementTrailerSize is sizeof(hash_next SetId + hash_index int32) that
// follows a TSet element's value in each slot.
const setElementTrailerSize = 8

// HashSet mirrors a TSet: { elements: SparseArray<SetElement<T>>,
// hash, hash_size }. The bucket table (hash/hash_size) only matters for
// lookup by key, which this module never needs — iteration is defined
// purely in terms of the backing sparse array.
type HashSet struct {
	Elements SparseArray
}

// ReadHashSet decodes a TSet<T> header at addr.
func ReadHashSet(ctx *remote.Context, addr remote.Addr) (HashSet, error) {
	elements, err := ReadSparseArray(ctx, addr)
	if err != nil {
		return HashSet{}, err
	}
	return HashSet{Elements: elements}, nil
}

// SetIterLive yields the live elements of a TSet<T> in ascending slot-index
// order: equivalent to iterating the elements' sparse array and projecting
// .value.
func SetIterLive[T any](ctx *remote.Context, hs HashSet, valueSize int64, decodeValue ReadLocalDecoder[T]) iter.Seq[Item[T]] {
	stride := valueSize + setElementTrailerSize
	decode := func(window []byte) (T, error) {
		return decodeValue(window[:valueSize])
	}
	return SparseIterLive(ctx, hs.Elements, stride, decode)
}
