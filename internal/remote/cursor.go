package remote

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrDecode marks malformed inline data: an invalid array header, bad
// UTF-16, and similar.
var ErrDecode = errors.New("remote: decode error")

// Cur is a RemoteCursor: a typed remote address bundled with the Context
// needed to dereference it. Cursors are cheap value types, safe to copy and
// pass by value.
type Cur[T any] struct {
	Ptr Ptr[T]
	Ctx *Context
}

// NewCursor builds a cursor over addr using ctx.
func NewCursor[T any](ctx *Context, addr Addr) Cur[T] {
	return Cur[T]{Ptr: NewPtr[T](addr), Ctx: ctx}
}

// Addr returns the cursor's address.
func (c Cur[T]) Addr() Addr {
	return c.Ptr.Addr()
}

// IsNull reports whether the cursor's pointer is null.
func (c Cur[T]) IsNull() bool {
	return c.Ptr.IsNull()
}

// OffsetBytes returns a cursor n bytes further into the address space,
// performing address arithmetic only — no read happens here.
func (c Cur[T]) OffsetBytes(n int64) Cur[T] {
	return Cur[T]{Ptr: c.Ptr.OffsetBytes(n), Ctx: c.Ctx}
}

// CastCursor reinterprets c as a cursor over U at the same address, sharing
// the same Context.
func CastCursor[U, T any](c Cur[T]) Cur[U] {
	return Cur[U]{Ptr: Cast[U](c.Ptr), Ctx: c.Ctx}
}

// ReadBytes reads n raw bytes at the cursor's address through the shared
// reader (normally a page cache). Every leaf decoder in this package reads
// through it; internal/containers and internal/names also call
// ctx.Reader.ReadMemory directly for raw byte windows.
func (c Cur[T]) ReadBytes(n int) ([]byte, error) {
	b, err := c.Ctx.Reader.ReadMemory(c.Addr(), n)
	if err != nil {
		return nil, fmt.Errorf("remote: read %d bytes at %s: %w", n, c.Addr(), err)
	}
	return b, nil
}

// Field returns a cursor over U at the offset of fieldName within
// structName, per the context's layout registry. The FUObject/FField/
// FProperty readers in internal/reflect use Field (or, for a few header
// reads, Context.OffsetOf directly) instead of a hard-coded offset.
func Field[U any, T any](c Cur[T], structName, fieldName string) (Cur[U], error) {
	off, err := c.Ctx.OffsetOf(structName, fieldName)
	if err != nil {
		return Cur[U]{}, err
	}
	return CastCursor[U](c.OffsetBytes(int64(off))), nil
}

// The following are the leaf-numeric decoders every composite decoder in
// internal/containers and internal/reflect is eventually built from. They
// are not dispatched by T the way container decoders are (that would need
// Go method specialization this package deliberately avoids); callers just
// call the one matching the width and signedness they want.

func ReadU8(c Cur[uint8]) (uint8, error) {
	b, err := c.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func ReadU16(c Cur[uint16]) (uint16, error) {
	b, err := c.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func ReadU32(c Cur[uint32]) (uint32, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func ReadU64(c Cur[uint64]) (uint64, error) {
	b, err := c.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func ReadI8(c Cur[int8]) (int8, error) {
	v, err := ReadU8(CastCursor[uint8](c))
	return int8(v), err
}

func ReadI16(c Cur[int16]) (int16, error) {
	v, err := ReadU16(CastCursor[uint16](c))
	return int16(v), err
}

func ReadI32(c Cur[int32]) (int32, error) {
	v, err := ReadU32(CastCursor[uint32](c))
	return int32(v), err
}

func ReadI64(c Cur[int64]) (int64, error) {
	v, err := ReadU64(CastCursor[uint64](c))
	return int64(v), err
}

func ReadF32(c Cur[float32]) (float32, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return bitsToFloat32(binary.LittleEndian.Uint32(b)), nil
}

func ReadF64(c Cur[float64]) (float64, error) {
	b, err := c.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return bitsToFloat64(binary.LittleEndian.Uint64(b)), nil
}

// ReadPtr reads a single remote pointer value (8 bytes; the module targets
// 64-bit engine builds only).
func ReadPtr[T any](c Cur[Ptr[T]]) (Ptr[T], error) {
	raw, err := c.ReadBytes(8)
	if err != nil {
		return Ptr[T]{}, err
	}
	return NewPtr[T](Addr(binary.LittleEndian.Uint64(raw))), nil
}

// ReadOptPtr is the cursor's null-returning read variant for pointer-typed
// T: a null pointer is read with zero additional reader calls beyond
// reading the pointer word itself.
func ReadOptPtr[T any](c Cur[Ptr[T]]) (Ptr[T], bool, error) {
	p, err := ReadPtr(c)
	if err != nil {
		return Ptr[T]{}, false, err
	}
	if p.IsNull() {
		return Ptr[T]{}, false, nil
	}
	return p, true, nil
}
