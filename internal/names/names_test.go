package names

import (
	"encoding/binary"
	"errors"
	"testing"
	"unicode/utf16"

	"github.com/trumank/meatloaf/core"
	"github.com/trumank/meatloaf/internal/layout"
	"github.com/trumank/meatloaf/internal/remote"
)

type memReader struct {
	data []byte
}

func (m *memReader) ReadMemory(addr core.Address, length int) ([]byte, error) {
	off := int64(addr)
	if off < 0 || off+int64(length) > int64(len(m.data)) {
		return nil, core.ErrInvalidAddress
	}
	return m.data[off : off+int64(length)], nil
}

// buildPool lays out a name pool at address 0 with a single block at a
// fixed address, and writes one entry's header+payload into that block.
func buildPool(t *testing.T, blockAddr uint64, byteOff uint32, header uint16, payload []byte) *remote.Context {
	t.Helper()
	data := make([]byte, int(blockAddr)+blockSize)
	binary.LittleEndian.PutUint64(data[blocksTableOffset:], blockAddr)
	binary.LittleEndian.PutUint16(data[int(blockAddr)+int(byteOff):], header)
	copy(data[int(blockAddr)+int(byteOff)+2:], payload)
	return &remote.Context{
		Reader:       &memReader{data: data},
		NamePoolAddr: 0,
		Layout:       layout.NewDefaultRegistry(),
		Version:      layout.V1,
	}
}

func TestResolveNarrowAscii(t *testing.T) {
	text := "Object"
	header := uint16(len(text)) << 6 // wide bit clear
	ctx := buildPool(t, 0x1000, 0, header, []byte(text))
	r := NewResolver(ctx)
	got, err := r.Resolve(Name{EntryIndex: 0, Number: 0})
	if err != nil {
		t.Fatal(err)
	}
	if got != text {
		t.Fatalf("got %q, want %q", got, text)
	}
}

func Test63CharAsciiName(t *testing.T) {
	text := make([]byte, 63)
	for i := range text {
		text[i] = 'a'
	}
	header := uint16(63) << 6
	ctx := buildPool(t, 0x2000, 0, header, text)
	r := NewResolver(ctx)
	got, err := r.Resolve(Name{EntryIndex: 0})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 63 {
		t.Fatalf("expected 63 bytes, got %d", len(got))
	}
}

func TestResolveWideSingleBMPChar(t *testing.T) {
	units := utf16.Encode([]rune{'é'}) // single BMP code point, 1 unit
	payload := make([]byte, 2*len(units))
	for i, u := range units {
		binary.LittleEndian.PutUint16(payload[i*2:], u)
	}
	header := uint16(1)<<6 | 1 // len=1, wide bit set
	ctx := buildPool(t, 0x3000, 0, header, payload)
	r := NewResolver(ctx)
	got, err := r.Resolve(Name{EntryIndex: 0})
	if err != nil {
		t.Fatal(err)
	}
	want := string([]rune{'é'})
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEntryIndexDecomposition(t *testing.T) {
	text := "Second"
	byteOff := uint32(40)
	header := uint16(len(text)) << 6
	ctx := buildPool(t, 0x4000, byteOff, header, []byte(text))
	r := NewResolver(ctx)
	entryIndex := (uint32(0) << 16) | (byteOff / 2)
	got, err := r.Resolve(Name{EntryIndex: entryIndex})
	if err != nil {
		t.Fatal(err)
	}
	if got != text {
		t.Fatalf("got %q, want %q", got, text)
	}
}

func TestResolveNumberedAppendsSuffix(t *testing.T) {
	text := "Foo"
	header := uint16(len(text)) << 6
	ctx := buildPool(t, 0x5000, 0, header, []byte(text))
	r := NewResolver(ctx)

	got, err := r.ResolveNumbered(Name{EntryIndex: 0, Number: 0})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Foo" {
		t.Fatalf("number=0: got %q, want %q", got, "Foo")
	}

	got, err = r.ResolveNumbered(Name{EntryIndex: 0, Number: 3})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Foo_2" {
		t.Fatalf("number=3: got %q, want %q", got, "Foo_2")
	}
}

func TestResolveIgnoresNumberSuffix(t *testing.T) {
	text := "Bar"
	header := uint16(len(text)) << 6
	ctx := buildPool(t, 0x6000, 0, header, []byte(text))
	r := NewResolver(ctx)
	got, err := r.Resolve(Name{EntryIndex: 0, Number: 7})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Bar" {
		t.Fatalf("got %q, want %q (number suffix must be ignored)", got, "Bar")
	}
}

func TestResolveNullBlockIsDecodeError(t *testing.T) {
	ctx := &remote.Context{
		Reader:       &memReader{data: make([]byte, blocksTableOffset+8)},
		NamePoolAddr: 0,
		Layout:       layout.NewDefaultRegistry(),
		Version:      layout.V1,
	}
	r := NewResolver(ctx)
	_, err := r.Resolve(Name{EntryIndex: 0})
	if !errors.Is(err, remote.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}
