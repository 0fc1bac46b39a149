package remote

// Ptr is a typed remote pointer: an address plus a phantom type tag T. T
// never appears in the struct's storage, only in the type system, so two
// Ptr[T] values with the same address and different T are distinct Go
// values that nonetheless describe the same bytes.
type Ptr[T any] struct {
	addr Addr
}

// NewPtr wraps a raw remote address as a Ptr[T].
func NewPtr[T any](addr Addr) Ptr[T] {
	return Ptr[T]{addr: addr}
}

// Addr returns the pointer's address.
func (p Ptr[T]) Addr() Addr {
	return p.addr
}

// IsNull reports whether p is the null pointer.
func (p Ptr[T]) IsNull() bool {
	return p.addr.IsNull()
}

// Offset advances p by n logical elements of T, where elementSize is T's
// size in bytes in the target. Opaque T (no natural logical size) must use
// OffsetBytes instead.
func (p Ptr[T]) Offset(n int64, elementSize int64) Ptr[T] {
	return Ptr[T]{addr: p.addr.Add(n * elementSize)}
}

// OffsetBytes advances p by n raw bytes.
func (p Ptr[T]) OffsetBytes(n int64) Ptr[T] {
	return Ptr[T]{addr: p.addr.Add(n)}
}

// Cast reinterprets p as a pointer to U at the same address. This is the Go
// equivalent of the source's pointer-cast-preserving-address operation; it
// cannot be a method (Go forbids new type parameters on methods), so it is
// a free function.
func Cast[U any, T any](p Ptr[T]) Ptr[U] {
	return Ptr[U]{addr: p.addr}
}

// FlaggedPtr is either a remote Ptr[T] or a pointer into locally-held bytes
// (an inline allocator's payload travels inside its parent's already-read
// bytes rather than living at a separate remote address). It is null iff
// the underlying pointer — whichever kind — is null.
type FlaggedPtr[T any] struct {
	remote Ptr[T]
	local  []byte // non-nil selects the local source
}

// Remote wraps a remote pointer as a FlaggedPtr.
func Remote[T any](p Ptr[T]) FlaggedPtr[T] {
	return FlaggedPtr[T]{remote: p}
}

// Local wraps an already-read byte slice as a FlaggedPtr. A nil or empty
// slice is treated as null, matching "inline buffer with nothing in it".
func Local[T any](data []byte) FlaggedPtr[T] {
	return FlaggedPtr[T]{local: data}
}

// IsNull reports whether the flagged pointer is null: for a local source,
// that means no bytes were supplied; for a remote source, the usual
// address-is-zero test.
func (f FlaggedPtr[T]) IsNull() bool {
	if len(f.local) != 0 {
		return false
	}
	return f.remote.IsNull()
}

// IsLocal reports whether f reads from locally-held bytes rather than a
// remote address.
func (f FlaggedPtr[T]) IsLocal() bool {
	return f.local != nil
}

// LocalBytes returns the locally-held bytes; valid only if IsLocal is true.
func (f FlaggedPtr[T]) LocalBytes() []byte {
	return f.local
}

// RemotePtr returns the remote pointer; valid only if IsLocal is false.
func (f FlaggedPtr[T]) RemotePtr() Ptr[T] {
	return f.remote
}

// ReadOpt tests nullness of a pointer value already in hand. Unlike
// ReadOptPtr (which must first read the 8 bytes of a pointer-typed field to
// learn the pointer's value), this costs zero reader calls: if p is null,
// there was never anything to fetch.
func (p Ptr[T]) ReadOpt() (Ptr[T], bool) {
	if p.IsNull() {
		return Ptr[T]{}, false
	}
	return p, true
}
