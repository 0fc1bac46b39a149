package reflect

import (
	"encoding/binary"
	"testing"

	"github.com/trumank/meatloaf/core"
	"github.com/trumank/meatloaf/internal/layout"
	"github.com/trumank/meatloaf/internal/names"
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

// fixture builds a synthetic flat address space: a one-block name pool
// starting at namePoolAddr, followed by a bump-allocated object heap, all
// backed by one growable byte slice addressed directly (address == byte
// index), mirroring internal/names and internal/containers' test style.
type fixture struct {
	t        *testing.T
	data     []byte
	blockOff uint32
	heapNext uint64
	ctx      *remote.Context
}

// namesBlocksTableOffset and namesBlockSize mirror internal/names'
// unexported blocksTableOffset and blockSize: the blocks-pointer table
// offset from NamePoolAddr, and the fixed per-block byte size.
const namesBlocksTableOffset = 0x10
const namesBlockSize = 0x20000

const fixtureBlockAddr = 0x1000
const fixtureHeapStart = fixtureBlockAddr + namesBlockSize

func newFixture(t *testing.T) *fixture {
	t.Helper()
	data := make([]byte, fixtureHeapStart+0x4000)
	binary.LittleEndian.PutUint64(data[namesBlocksTableOffset:], fixtureBlockAddr)
	f := &fixture{
		t:        t,
		data:     data,
		heapNext: fixtureHeapStart,
	}
	f.ctx = &remote.Context{
		Reader:       &memReader{data: f.data},
		NamePoolAddr: 0,
		Layout:       layout.NewDefaultRegistry(),
		Version:      layout.V1,
	}
	return f
}

// name interns text into the fixture's single block and returns its Name.
func (f *fixture) name(text string) names.Name {
	f.t.Helper()
	header := uint16(len(text)) << 6
	addr := fixtureBlockAddr + f.blockOff
	binary.LittleEndian.PutUint16(f.data[addr:], header)
	copy(f.data[addr+2:], text)
	entryIndex := f.blockOff / 2
	f.blockOff += uint32(2 + len(text))
	if f.blockOff%2 != 0 {
		f.blockOff++
	}
	return names.Name{EntryIndex: entryIndex}
}

// alloc bump-allocates size bytes of object-heap space and returns its
// address, zero-filled.
func (f *fixture) alloc(size int) remote.Addr {
	addr := remote.Addr(f.heapNext)
	f.heapNext += uint64(size)
	if int(f.heapNext) > len(f.data) {
		f.t.Fatalf("fixture heap exhausted (need %d more bytes)", size)
	}
	return addr
}

func (f *fixture) off(structName, fieldName string) uint32 {
	f.t.Helper()
	o, err := f.ctx.OffsetOf(structName, fieldName)
	if err != nil {
		f.t.Fatal(err)
	}
	return o
}

func (f *fixture) putU32(addr remote.Addr, structName, fieldName string, v uint32) {
	binary.LittleEndian.PutUint32(f.data[int64(addr)+int64(f.off(structName, fieldName)):], v)
}

func (f *fixture) putU64(addr remote.Addr, structName, fieldName string, v uint64) {
	binary.LittleEndian.PutUint64(f.data[int64(addr)+int64(f.off(structName, fieldName)):], v)
}

func (f *fixture) putPtr(addr remote.Addr, structName, fieldName string, target remote.Addr) {
	f.putU64(addr, structName, fieldName, uint64(target))
}

func (f *fixture) putU8(addr remote.Addr, structName, fieldName string, v uint8) {
	f.data[int64(addr)+int64(f.off(structName, fieldName))] = v
}

// putRaw64 writes a plain little-endian uint64 directly at addr, for
// locations (like a chunk-pointer slot) with no registry field name.
func (f *fixture) putRaw64(addr remote.Addr, v uint64) {
	binary.LittleEndian.PutUint64(f.data[int64(addr):], v)
}

// putArrayHeader writes a 16-byte heap-array header (data pointer, num,
// max) at structName.fieldName's offset within addr.
func (f *fixture) putArrayHeader(addr remote.Addr, structName, fieldName string, data remote.Addr, num, max uint32) {
	base := int64(addr) + int64(f.off(structName, fieldName))
	binary.LittleEndian.PutUint64(f.data[base:], uint64(data))
	binary.LittleEndian.PutUint32(f.data[base+8:], num)
	binary.LittleEndian.PutUint32(f.data[base+12:], max)
}

func (f *fixture) putName(addr remote.Addr, structName, fieldName string, n names.Name) {
	raw := uint64(n.EntryIndex) | uint64(n.Number)<<32
	f.putU64(addr, structName, fieldName, raw)
}

// initObject fills in NamePrivate, ClassPrivate and OuterPrivate of the
// already-allocated record at addr (callers allocate a record big enough for
// the derived struct they need).
func (f *fixture) initObject(addr remote.Addr, name names.Name, class, outer remote.Addr) {
	f.putName(addr, "UObjectBase", "NamePrivate", name)
	f.putPtr(addr, "UObjectBase", "ClassPrivate", class)
	f.putPtr(addr, "UObjectBase", "OuterPrivate", outer)
}

// newClassCastFlagsHolder allocates a UClass-sized record with only
// ClassCastFlags set, for use as another object's ClassPrivate. It stands in
// for a full metaclass chain (a real UClass's ClassPrivate points at a
// metaclass object carrying CastUClass) in tests that only need
// classification.
func (f *fixture) newClassCastFlagsHolder(flags CastFlags) remote.Addr {
	addr := f.alloc(int(0xd0))
	f.putU64(addr, "UClass", "ClassCastFlags", uint64(flags))
	return addr
}

func (f *fixture) newFieldClassCastFlagsHolder(flags CastFlags) remote.Addr {
	addr := f.alloc(0x20)
	f.putU64(addr, "FFieldClass", "CastFlags", uint64(flags))
	return addr
}

// newProperty allocates an FField/FProperty-sized node (sized generously
// to cover every subtype's trailing fields) with the given class, name and
// core FProperty fields. Its Next pointer is left null; chain nodes with
// setNext.
func (f *fixture) newProperty(class remote.Addr, name names.Name, offset, arrayDim, size uint32, flags uint32) remote.Addr {
	addr := f.alloc(0x90)
	f.putPtr(addr, "FField", "ClassPrivate", class)
	f.putName(addr, "FField", "NamePrivate", name)
	f.putU32(addr, "FProperty", "Offset_Internal", offset)
	f.putU32(addr, "FProperty", "ArrayDim", arrayDim)
	f.putU32(addr, "FProperty", "ElementSize", size)
	f.putU32(addr, "FProperty", "PropertyFlags", flags)
	return addr
}

func (f *fixture) setNext(fieldAddr, next remote.Addr) {
	f.putPtr(fieldAddr, "FField", "Next", next)
}

// newStruct allocates a UClass-sized record (big enough for any UStruct
// derivative this package tests) with object/struct fields filled in, no
// properties or super yet.
func (f *fixture) newStruct(name names.Name, class, outer remote.Addr) remote.Addr {
	addr := f.alloc(0xd0)
	f.initObject(addr, name, class, outer)
	return addr
}

func (f *fixture) setChildProperties(structAddr, head remote.Addr) {
	f.putPtr(structAddr, "UStruct", "ChildProperties", head)
}

func (f *fixture) setSuperStruct(structAddr, super remote.Addr) {
	f.putPtr(structAddr, "UStruct", "SuperStruct", super)
}
