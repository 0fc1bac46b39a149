package remote

import (
	"testing"

	"github.com/trumank/meatloaf/core"
	"github.com/trumank/meatloaf/internal/layout"
)

type countingReader struct {
	data  []byte
	calls int
}

func (r *countingReader) ReadMemory(addr core.Address, length int) ([]byte, error) {
	r.calls++
	off := int(addr)
	if off < 0 || off+length > len(r.data) {
		return nil, core.ErrInvalidAddress
	}
	return r.data[off : off+length], nil
}

func testContext(data []byte) (*Context, *countingReader) {
	reg := layout.NewDefaultRegistry()
	cr := &countingReader{data: data}
	return &Context{Reader: cr, Layout: reg, Version: layout.V1}, cr
}

func TestReadOptPtrNullCostsZeroCalls(t *testing.T) {
	p := NewPtr[uint32](0)
	got, ok := p.ReadOpt()
	if ok || got != (Ptr[uint32]{}) {
		t.Fatalf("expected absent for null pointer, got %v, %v", got, ok)
	}
}

func TestReadOptPtrFieldDereferencesOnce(t *testing.T) {
	data := make([]byte, 16)
	// 8 bytes of zero pointer at offset 0.
	ctx, cr := testContext(data)
	c := NewCursor[Ptr[uint32]](ctx, 0)
	p, ok, err := ReadOptPtr(c)
	if err != nil {
		t.Fatal(err)
	}
	if ok || !p.IsNull() {
		t.Fatalf("expected null pointer, got %v ok=%v", p, ok)
	}
	if cr.calls != 1 {
		t.Fatalf("expected exactly 1 reader call, got %d", cr.calls)
	}
}

func TestFieldUsesRegistryOffset(t *testing.T) {
	data := make([]byte, 64)
	data[0x18] = 0xAB // NamePrivate offset for UObjectBase in the default registry
	ctx, _ := testContext(data)
	base := NewCursor[struct{}](ctx, 0)
	f, err := Field[uint8](base, "UObjectBase", "NamePrivate")
	if err != nil {
		t.Fatal(err)
	}
	v, err := ReadU8(f)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0xAB {
		t.Fatalf("got %#x, want 0xAB", v)
	}
}

func TestCastPreservesAddress(t *testing.T) {
	p := NewPtr[uint32](0x1234)
	q := Cast[uint64](p)
	if q.Addr() != p.Addr() {
		t.Fatalf("cast changed address: %s vs %s", q.Addr(), p.Addr())
	}
}

func TestFlaggedPtrLocalVsRemote(t *testing.T) {
	local := Local[byte]([]byte{1, 2, 3})
	if local.IsNull() || !local.IsLocal() {
		t.Fatal("expected non-null local flagged ptr")
	}
	remoteNull := Remote(NewPtr[byte](0))
	if !remoteNull.IsNull() {
		t.Fatal("expected null remote flagged ptr")
	}
}
