package containers

import (
	"iter"

	"github.com/trumank/meatloaf/internal/remote"
)

// bitArrayTotalSize is sizeof(TBitArray<>) with its default inline word
// count: the inline-or-heap word allocator, plus NumBits and MaxBits (each
// int32).
const bitArrayTotalSize = bitArrayAllocatorSize + 8

// sparseArrayHeaderSize is sizeof(TSparseArray<T>): the backing element
// array, the allocation-flags bit array, FirstFreeIndex and NumFreeIndices.
const sparseArrayHeaderSize = heapArrayHeaderSize + bitArrayTotalSize + 4 + 4

// SparseArray mirrors a TSparseArray: { data, allocation_flags, first_free,
// num_free }. A slot at index i is live iff bit i of Flags is set.
type SparseArray struct {
	Data               ArrayHeader
	Flags              BitArray
	FirstFree, NumFree int32
}

// ReadSparseArray decodes a TSparseArray<T> header at addr. The backing
// element array always uses the default heap allocator (TSparseArray never
// inlines its slot storage), so the data header alone determines the slot
// addresses IterLive reads elements from.
func ReadSparseArray(ctx *remote.Context, addr remote.Addr) (SparseArray, error) {
	data, err := ReadHeapArrayHeader(ctx, addr)
	if err != nil {
		return SparseArray{}, err
	}
	flags, err := ReadBitArray(ctx, addr.Add(heapArrayHeaderSize))
	if err != nil {
		return SparseArray{}, err
	}
	firstFree, err := remote.ReadI32(remote.NewCursor[int32](ctx, addr.Add(heapArrayHeaderSize+bitArrayTotalSize)))
	if err != nil {
		return SparseArray{}, err
	}
	numFree, err := remote.ReadI32(remote.NewCursor[int32](ctx, addr.Add(heapArrayHeaderSize+bitArrayTotalSize+4)))
	if err != nil {
		return SparseArray{}, err
	}
	return SparseArray{Data: data, Flags: flags, FirstFree: firstFree, NumFree: numFree}, nil
}

// Item is one (index, value) pair yielded by a lazy container iterator, or
// a terminal Err if decoding failed partway through.
type Item[T any] struct {
	Index int
	Value T
	Err   error
}

// SparseIterLive composes BitArray.IterLive with a read-at-index over Data,
// yielding (index, T) pairs in ascending index order. Iteration stops
// (after yielding the error) the first time a read fails.
func SparseIterLive[T any](ctx *remote.Context, sp SparseArray, elemSize int64, decode ReadLocalDecoder[T]) iter.Seq[Item[T]] {
	return func(yield func(Item[T]) bool) {
		for idx, err := range sp.Flags.IterLive(ctx) {
			if err != nil {
				yield(Item[T]{Err: err})
				return
			}
			v, err := ReadElementAt(ctx, sp.Data, elemSize, idx, decode)
			if err != nil {
				yield(Item[T]{Index: idx, Err: err})
				return
			}
			if !yield(Item[T]{Index: idx, Value: v}) {
				return
			}
		}
	}
}
