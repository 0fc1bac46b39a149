// Package names implements the interned-name resolver: decoding an
// (entry_index, number) handle into a UTF-8 string by walking the target's
// name pool.
//
// Grounded on internal/gocore's readNameLen/name-table reading
// (type.go), which resolves a runtime type name from a length-prefixed
// region at a computed offset; here the length-prefix header additionally
// carries a wide/narrow encoding bit, and the "table" is two levels
// (block pointer array, then byte offset within a block) instead of one.
package names

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/trumank/meatloaf/internal/remote"
)

// blocksTableOffset is the byte offset of the blocks-pointer-array from the
// name pool's base address.
const blocksTableOffset = 0x10

// blockSize is the fixed byte size of each name-pool block.
const blockSize = 0x20000

// Name is an interned-name handle: a pair (entry_index, number). The
// number suffix is resolved only by ResolveNumbered; Resolve ignores it,
// matching the documented (possibly buggy) source behavior.
type Name struct {
	EntryIndex uint32
	Number     uint32
}

// Resolver resolves interned names against one dump's name pool.
type Resolver struct {
	ctx *remote.Context
}

// NewResolver returns a Resolver reading through ctx. ctx.NamePoolAddr must
// already be set to the resolved name-pool base address.
func NewResolver(ctx *remote.Context) *Resolver {
	return &Resolver{ctx: ctx}
}

// Resolve decodes n's entry_index into a UTF-8 string, ignoring the number
// suffix. Callers that want the audited-correct `_N` suffix behavior should
// use ResolveNumbered instead.
func (r *Resolver) Resolve(n Name) (string, error) {
	blockIdx := n.EntryIndex >> 16
	byteOff := (n.EntryIndex & 0xFFFF) * 2

	blockPtrAddr := r.ctx.NamePoolAddr.Add(blocksTableOffset).Add(int64(blockIdx) * 8)
	blockPtrCur := remote.NewCursor[remote.Ptr[byte]](r.ctx, blockPtrAddr)
	blockPtr, err := remote.ReadPtr(blockPtrCur)
	if err != nil {
		return "", fmt.Errorf("names: reading block %d pointer: %w", blockIdx, err)
	}
	if blockPtr.IsNull() {
		return "", fmt.Errorf("names: block %d is null: %w", blockIdx, remote.ErrDecode)
	}

	headerAddr := blockPtr.Addr().Add(int64(byteOff))
	header, err := r.ctx.Reader.ReadMemory(headerAddr, 2)
	if err != nil {
		return "", fmt.Errorf("names: reading header at block %d offset %d: %w", blockIdx, byteOff, err)
	}
	headerBits := uint16(header[0]) | uint16(header[1])<<8

	layout := r.ctx.Layout.NameHeader(r.ctx.Version)
	isWide := headerBits&(1<<layout.WideBit) != 0
	length := int(headerBits >> layout.LenShift)

	payloadAddr := headerAddr.Add(2)
	if isWide {
		raw, err := r.ctx.Reader.ReadMemory(payloadAddr, length*2)
		if err != nil {
			return "", fmt.Errorf("names: reading wide payload: %w", err)
		}
		units := make([]uint16, length)
		for i := range units {
			units[i] = uint16(raw[i*2]) | uint16(raw[i*2+1])<<8
		}
		runes := utf16.Decode(units)
		for _, r := range runes {
			if r == utf8.RuneError {
				return "", fmt.Errorf("names: invalid UTF-16 at block %d offset %d: %w", blockIdx, byteOff, remote.ErrDecode)
			}
		}
		return string(runes), nil
	}

	raw, err := r.ctx.Reader.ReadMemory(payloadAddr, length)
	if err != nil {
		return "", fmt.Errorf("names: reading narrow payload: %w", err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("names: invalid UTF-8 at block %d offset %d: %w", blockIdx, byteOff, remote.ErrDecode)
	}
	return string(raw), nil
}

// ResolveNumbered resolves n like Resolve, then appends "_N" where
// N = number-1 when n.Number > 0, the audited-correct behavior. The
// walker itself calls Resolve, not this, to preserve the documented
// source behavior; ResolveNumbered exists for callers that want it fixed.
func (r *Resolver) ResolveNumbered(n Name) (string, error) {
	base, err := r.Resolve(n)
	if err != nil {
		return "", err
	}
	if n.Number == 0 {
		return base, nil
	}
	return fmt.Sprintf("%s_%d", base, n.Number-1), nil
}
