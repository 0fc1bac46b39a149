// Package containers decodes the engine's C++-layout containers across the
// process boundary: dynamic arrays, bit arrays, sparse arrays, hash sets,
// maps, and length-prefixed strings, each built on top of internal/remote's
// cursors and primitive reads.
//
// Grounded on gocore's lazy, one-element-at-a-time access style
// (internal/gocore/object.go's heapTable.all, which returns an iter.Seq2
// instead of building a slice) — container iteration here never
// materializes a whole sparse array eagerly, matching that ordering and
// laziness.
package containers

import (
	"fmt"

	"github.com/trumank/meatloaf/internal/remote"
)

// ElementDecoder decodes one T at addr. Every container decoder in this
// package is parameterized by one of these instead of assuming a concrete
// element type, since the reflection walker decodes many different element
// shapes (names, pointers, nested tuples) through the same containers.
type ElementDecoder[T any] func(ctx *remote.Context, addr remote.Addr) (T, error)

// heapArrayHeaderSize is sizeof(FScriptArray) for a plain heap allocator:
// Data pointer (8), Num (4), Max (4).
const heapArrayHeaderSize = 16

// ArrayHeader is the decoded (but not yet element-read) header of a
// TArray<T>: { allocator, num, max }.
type ArrayHeader struct {
	Num, Max uint32
	data     remote.FlaggedPtr[byte]
}

// ReadHeapArrayHeader decodes a TArray<T> backed by a plain heap allocator
// (a single remote data pointer) at addr.
func ReadHeapArrayHeader(ctx *remote.Context, addr remote.Addr) (ArrayHeader, error) {
	dataCur := remote.NewCursor[remote.Ptr[byte]](ctx, addr)
	dataPtr, err := remote.ReadPtr(dataCur)
	if err != nil {
		return ArrayHeader{}, err
	}
	num, err := remote.ReadU32(remote.NewCursor[uint32](ctx, addr.Add(8)))
	if err != nil {
		return ArrayHeader{}, err
	}
	max, err := remote.ReadU32(remote.NewCursor[uint32](ctx, addr.Add(12)))
	if err != nil {
		return ArrayHeader{}, err
	}
	if num > max {
		return ArrayHeader{}, fmt.Errorf("containers: array header at %s has num %d > max %d: %w", addr, num, max, remote.ErrDecode)
	}
	return ArrayHeader{Num: num, Max: max, data: remote.Remote(dataPtr)}, nil
}

// ReadInlineOrHeapArrayHeader decodes a TArray<T, TInlineAllocator<N>>
// header at addr: N inline slots of elemSize bytes each, followed by a
// secondary heap allocator. The secondary (heap) pointer wins when
// non-null; otherwise the inline region — read once, right here — is used
// as the data source.
func ReadInlineOrHeapArrayHeader(ctx *remote.Context, addr remote.Addr, inlineSlots int, elemSize int64) (ArrayHeader, error) {
	inlineBytes := int64(inlineSlots) * elemSize
	secondaryAddr := addr.Add(inlineBytes)

	secondary, err := remote.ReadPtr(remote.NewCursor[remote.Ptr[byte]](ctx, secondaryAddr))
	if err != nil {
		return ArrayHeader{}, err
	}
	num, err := remote.ReadU32(remote.NewCursor[uint32](ctx, secondaryAddr.Add(8)))
	if err != nil {
		return ArrayHeader{}, err
	}
	max, err := remote.ReadU32(remote.NewCursor[uint32](ctx, secondaryAddr.Add(12)))
	if err != nil {
		return ArrayHeader{}, err
	}
	if num > max {
		return ArrayHeader{}, fmt.Errorf("containers: array header at %s has num %d > max %d: %w", addr, num, max, remote.ErrDecode)
	}

	if !secondary.IsNull() {
		return ArrayHeader{Num: num, Max: max, data: remote.Remote(secondary)}, nil
	}

	inline, err := ctx.Reader.ReadMemory(addr, int(inlineBytes))
	if err != nil {
		return ArrayHeader{}, fmt.Errorf("containers: reading inline array region at %s: %w", addr, err)
	}
	return ArrayHeader{Num: num, Max: max, data: remote.Local[byte](inline)}, nil
}

// ReadInlineOrHeapAllocator resolves just the data source of an
// inline-or-heap allocator (no Num/Max of its own) at addr: N inline slots
// of elemSize bytes, followed by a secondary heap pointer. Used by
// TBitArray's word storage, which carries no num/max fields — those belong
// to TBitArray itself (NumBits/MaxBits), not to its allocator.
func ReadInlineOrHeapAllocator(ctx *remote.Context, addr remote.Addr, inlineSlots int, elemSize int64) (remote.FlaggedPtr[byte], error) {
	inlineBytes := int64(inlineSlots) * elemSize
	secondaryAddr := addr.Add(inlineBytes)

	secondary, err := remote.ReadPtr(remote.NewCursor[remote.Ptr[byte]](ctx, secondaryAddr))
	if err != nil {
		return remote.FlaggedPtr[byte]{}, err
	}
	if !secondary.IsNull() {
		return remote.Remote(secondary), nil
	}
	inline, err := ctx.Reader.ReadMemory(addr, int(inlineBytes))
	if err != nil {
		return remote.FlaggedPtr[byte]{}, fmt.Errorf("containers: reading inline allocator region at %s: %w", addr, err)
	}
	return remote.Local[byte](inline), nil
}

// DataAddr returns the remote address of h's backing data. Valid only for
// headers backed by a remote data source (plain heap-allocated TArray/
// FScriptArray, which is the only shape property values use); panics if h
// resolved to a local (inline) source.
func (h ArrayHeader) DataAddr() remote.Addr {
	if h.data.IsLocal() {
		panic("containers: DataAddr called on an inline array header")
	}
	return h.data.RemotePtr().Addr()
}

// ReadRemoteElements decodes h.Num elements using decode, which may itself
// issue further reads (e.g. resolving a name, or following a nested
// pointer). Valid only for headers backed by a remote data source; every
// current caller with an inline-or-heap allocator uses fixed-size POD
// elements and ReadLocalElements instead, so this never needs to support a
// local source.
func ReadRemoteElements[T any](ctx *remote.Context, h ArrayHeader, elemSize int64, decode ElementDecoder[T]) ([]T, error) {
	if h.data.IsLocal() {
		return nil, fmt.Errorf("containers: ReadRemoteElements called on an inline array header: %w", remote.ErrDecode)
	}
	base := h.data.RemotePtr().Addr()
	out := make([]T, 0, h.Num)
	for i := uint32(0); i < h.Num; i++ {
		v, err := decode(ctx, base.Add(int64(i)*elemSize))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ReadLocalDecoder decodes one element of size elemSize directly out of a
// byte window, without going through the remote reader.
type ReadLocalDecoder[T any] func(window []byte) (T, error)

// ReadLocalElements decodes h.Num elements directly from h's resolved
// bytes: if the header resolved to a local (inline) source the bytes are
// already in hand; if it resolved to remote data, the bytes are fetched
// through ctx in one call per element's window.
func ReadLocalElements[T any](ctx *remote.Context, h ArrayHeader, elemSize int64, decode ReadLocalDecoder[T]) ([]T, error) {
	out := make([]T, 0, h.Num)
	for i := uint32(0); i < h.Num; i++ {
		window, err := elementWindow(ctx, h, elemSize, int64(i))
		if err != nil {
			return nil, err
		}
		v, err := decode(window)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ReadFirstN decodes exactly n elements from an allocator's data source.
// Used by BitArray, whose word count is derived from NumBits rather than
// from any Num/Max field (TBitArray's allocator carries none).
func ReadFirstN[T any](ctx *remote.Context, data remote.FlaggedPtr[byte], elemSize int64, n int, decode ReadLocalDecoder[T]) ([]T, error) {
	h := ArrayHeader{Num: uint32(n), Max: uint32(n), data: data}
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		window, err := elementWindow(ctx, h, elemSize, int64(i))
		if err != nil {
			return nil, err
		}
		v, err := decode(window)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ReadElementAt decodes the single element at index idx out of h, without
// reading any of the others. Used by SparseArray/HashSet iteration, where
// only the live slots (a subset of [0, Max)) are ever touched.
func ReadElementAt[T any](ctx *remote.Context, h ArrayHeader, elemSize int64, idx int, decode ReadLocalDecoder[T]) (T, error) {
	var zero T
	window, err := elementWindow(ctx, h, elemSize, int64(idx))
	if err != nil {
		return zero, err
	}
	return decode(window)
}

func elementWindow(ctx *remote.Context, h ArrayHeader, elemSize, idx int64) ([]byte, error) {
	off := idx * elemSize
	if h.data.IsLocal() {
		local := h.data.LocalBytes()
		if off+elemSize > int64(len(local)) {
			return nil, fmt.Errorf("containers: inline element %d out of range: %w", idx, remote.ErrDecode)
		}
		return local[off : off+elemSize], nil
	}
	b, err := ctx.Reader.ReadMemory(h.data.RemotePtr().Addr().Add(off), int(elemSize))
	if err != nil {
		return nil, fmt.Errorf("containers: reading element %d at offset %d: %w", idx, off, err)
	}
	return b, nil
}
