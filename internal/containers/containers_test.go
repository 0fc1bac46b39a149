package containers

import (
	"encoding/binary"
	"errors"
	"testing"

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

func testCtx(data []byte) *remote.Context {
	return &remote.Context{
		Reader:  &memReader{data: data},
		Layout:  layout.NewDefaultRegistry(),
		Version: layout.V1,
	}
}

func putU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:], v)
}
func putU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:], v)
}

func decodeU32(w []byte) (uint32, error) {
	return binary.LittleEndian.Uint32(w), nil
}

func TestHeapArrayEmpty(t *testing.T) {
	data := make([]byte, 32)
	putU64(data, 0, 0x1000) // data ptr (unused since num=0)
	putU32(data, 8, 0)      // num
	putU32(data, 12, 0)     // max
	ctx := testCtx(data)
	h, err := ReadHeapArrayHeader(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	elems, err := ReadLocalElements(ctx, h, 4, decodeU32)
	if err != nil {
		t.Fatal(err)
	}
	if len(elems) != 0 {
		t.Fatalf("expected 0 elements, got %d", elems)
	}
}

func TestHeapArrayNumEqualsMax(t *testing.T) {
	elemsData := make([]byte, 12)
	putU32(elemsData, 0, 10)
	putU32(elemsData, 4, 20)
	putU32(elemsData, 8, 30)

	data := make([]byte, 16+len(elemsData))
	copy(data[16:], elemsData)
	putU64(data, 0, 16)
	putU32(data, 8, 3)
	putU32(data, 12, 3)

	ctx := testCtx(data)
	h, err := ReadHeapArrayHeader(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ReadLocalElements(ctx, h, 4, decodeU32)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint32{10, 20, 30}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestHeapArrayNumGreaterThanMaxIsDecodeError(t *testing.T) {
	data := make([]byte, 16)
	putU64(data, 0, 16)
	putU32(data, 8, 5)
	putU32(data, 12, 3)
	ctx := testCtx(data)
	_, err := ReadHeapArrayHeader(ctx, 0)
	if !errors.Is(err, remote.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestInlineOrHeapArrayPrefersSecondary(t *testing.T) {
	const inlineSlots = 2
	const elemSize = 4
	headerSize := int64(inlineSlots)*elemSize + 16

	heapElems := []byte{1, 0, 0, 0, 2, 0, 0, 0}
	data := make([]byte, int(headerSize)+len(heapElems))
	copy(data[headerSize:], heapElems)
	putU64(data, inlineSlots*elemSize, uint64(headerSize))
	putU32(data, inlineSlots*elemSize+8, 2)
	putU32(data, inlineSlots*elemSize+12, 2)
	// Inline region left as garbage to prove it's ignored when secondary != null.
	data[0] = 0xFF
	data[1] = 0xFF

	ctx := testCtx(data)
	h, err := ReadInlineOrHeapArrayHeader(ctx, 0, inlineSlots, elemSize)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ReadLocalElements(ctx, h, elemSize, decodeU32)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("got %v, want [1 2]", got)
	}
}

func TestInlineOrHeapArrayUsesInlineWhenSecondaryNull(t *testing.T) {
	const inlineSlots = 2
	const elemSize = 4
	headerSize := int64(inlineSlots)*elemSize + 16

	data := make([]byte, headerSize)
	putU32(data, 0, 7)
	putU32(data, 4, 8)
	// secondary ptr stays 0
	putU32(data, inlineSlots*elemSize+8, 2) // num
	putU32(data, inlineSlots*elemSize+12, 2) // max

	ctx := testCtx(data)
	h, err := ReadInlineOrHeapArrayHeader(ctx, 0, inlineSlots, elemSize)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ReadLocalElements(ctx, h, elemSize, decodeU32)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != 7 || got[1] != 8 {
		t.Fatalf("got %v, want [7 8]", got)
	}
}

func TestBitArrayAllClearAndAllSet(t *testing.T) {
	wordsHeaderSize := int64(bitArrayWordsInline)*4 + 8

	// All clear, 10 bits.
	data := make([]byte, wordsHeaderSize+8)
	putU32(data, int(wordsHeaderSize), 10) // NumBits
	putU32(data, int(wordsHeaderSize)+4, 10)
	ctx := testCtx(data)
	ba, err := ReadBitArray(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for idx, err := range ba.IterLive(ctx) {
		if err != nil {
			t.Fatal(err)
		}
		_ = idx
		count++
	}
	if count != 0 {
		t.Fatalf("expected 0 live bits, got %d", count)
	}

	// All set, 10 bits -> word 0 = 0x3FF.
	data2 := make([]byte, wordsHeaderSize+8)
	putU32(data2, 0, 0x3FF)
	putU32(data2, int(wordsHeaderSize), 10)
	putU32(data2, int(wordsHeaderSize)+4, 10)
	ctx2 := testCtx(data2)
	ba2, err := ReadBitArray(ctx2, 0)
	if err != nil {
		t.Fatal(err)
	}
	var indices []int
	for idx, err := range ba2.IterLive(ctx2) {
		if err != nil {
			t.Fatal(err)
		}
		indices = append(indices, idx)
	}
	if len(indices) != 10 {
		t.Fatalf("expected 10 live bits, got %d: %v", len(indices), indices)
	}
	for i, idx := range indices {
		if idx != i {
			t.Fatalf("expected ascending indices, got %v", indices)
		}
	}
}

func TestFStringDecodesAsciiPrefix(t *testing.T) {
	text := "hello"
	units := make([]byte, (len(text)+1)*2) // +1 for terminating zero
	for i, r := range text {
		binary.LittleEndian.PutUint16(units[i*2:], uint16(r))
	}
	data := make([]byte, 16+len(units))
	copy(data[16:], units)
	putU64(data, 0, 16)
	putU32(data, 8, uint32(len(text)+1))
	putU32(data, 12, uint32(len(text)+1))

	ctx := testCtx(data)
	got, err := ReadFString(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != text {
		t.Fatalf("got %q, want %q", got, text)
	}
}

func TestFStringNoTerminatorUsesFullLength(t *testing.T) {
	text := "abc"
	units := make([]byte, len(text)*2)
	for i, r := range text {
		binary.LittleEndian.PutUint16(units[i*2:], uint16(r))
	}
	data := make([]byte, 16+len(units))
	copy(data[16:], units)
	putU64(data, 0, 16)
	putU32(data, 8, uint32(len(text)))
	putU32(data, 12, uint32(len(text)))

	ctx := testCtx(data)
	got, err := ReadFString(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != text {
		t.Fatalf("got %q, want %q", got, text)
	}
}
