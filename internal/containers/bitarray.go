package containers

import (
	"fmt"
	"iter"

	"github.com/trumank/meatloaf/internal/remote"
)

// bitArrayWordsInline is the number of inline uint32 words a TBitArray's
// default allocator holds before spilling to the heap.
const bitArrayWordsInline = 4

// bitArrayAllocatorSize is the byte size of the inline-or-heap allocator
// backing a BitArray's words: the inline buffer plus the secondary pointer.
const bitArrayAllocatorSize = int64(bitArrayWordsInline)*4 + 8

// BitArray mirrors a TBitArray: a backing array-of-u32 plus
// NumBits/MaxBits. Bit i lives in word i/32, mask 1<<(i%32).
type BitArray struct {
	words   remote.FlaggedPtr[byte]
	NumBits int32
	MaxBits int32
}

// ReadBitArray decodes a TBitArray header at addr: an inline-or-heap
// allocator of uint32 words, followed by NumBits and MaxBits.
func ReadBitArray(ctx *remote.Context, addr remote.Addr) (BitArray, error) {
	words, err := ReadInlineOrHeapAllocator(ctx, addr, bitArrayWordsInline, 4)
	if err != nil {
		return BitArray{}, err
	}
	numBits, err := remote.ReadI32(remote.NewCursor[int32](ctx, addr.Add(bitArrayAllocatorSize)))
	if err != nil {
		return BitArray{}, err
	}
	maxBits, err := remote.ReadI32(remote.NewCursor[int32](ctx, addr.Add(bitArrayAllocatorSize+4)))
	if err != nil {
		return BitArray{}, err
	}
	return BitArray{words: words, NumBits: numBits, MaxBits: maxBits}, nil
}

// IterLive yields ascending bit indices i in [0, NumBits) where bit i is
// set, fetching one word at a time and stopping at NumBits.
func (b BitArray) IterLive(ctx *remote.Context) iter.Seq2[int, error] {
	return func(yield func(int, error) bool) {
		if b.NumBits <= 0 {
			return
		}
		numWords := (int(b.NumBits) + 31) / 32
		words, err := ReadFirstN(ctx, b.words, 4, numWords, func(w []byte) (uint32, error) {
			if len(w) != 4 {
				return 0, fmt.Errorf("containers: short bit array word: %w", remote.ErrDecode)
			}
			return uint32(w[0]) | uint32(w[1])<<8 | uint32(w[2])<<16 | uint32(w[3])<<24, nil
		})
		if err != nil {
			yield(0, err)
			return
		}
		for i := 0; i < int(b.NumBits); i++ {
			word := words[i/32]
			if word&(1<<uint(i%32)) != 0 {
				if !yield(i, nil) {
					return
				}
			}
		}
	}
}
