// Package reflect implements the reflection walker and property type/value
// decoders: enumerating the engine's object array, classifying each object
// by its class' cast flags, decoding class/struct/function/enum metadata
// and CDO property values, and assembling the qualified-path /
// outer-children tree the driver emits.
//
// Grounded on internal/gocore's object-graph walk
// (internal/gocore/object.go's chunked heap-table scan and type
// classification), generalized here from a Go-runtime heap to an engine
// object array addressed through the layout registry instead of fixed Go
// runtime struct offsets.
package reflect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/trumank/meatloaf/internal/names"
	"github.com/trumank/meatloaf/internal/remote"
	"github.com/trumank/meatloaf/snapshot"
)

const objectArrayChunkSize = 65536

// Walker enumerates every object reachable from an object-array address,
// classifies and decodes each one, and produces a complete Snapshot of
// engine-owned (/Script/-prefixed) entries.
type Walker struct {
	ctx         *remote.Context
	resolver    *names.Resolver
	objectArray remote.Addr
}

// NewWalker constructs a Walker over ctx's object space, rooted at
// objectArrayAddr (GUObjectArray's address).
func NewWalker(ctx *remote.Context, objectArrayAddr remote.Addr) *Walker {
	return &Walker{ctx: ctx, resolver: names.NewResolver(ctx), objectArray: objectArrayAddr}
}

// Dump enumerates, classifies, and decodes every object, then assigns
// outer→children before returning the finished Snapshot.
func (w *Walker) Dump() (*snapshot.Snapshot, error) {
	numElements, err := readU32Field(w.ctx, "GUObjectArray", "NumElements", w.objectArray)
	if err != nil {
		return nil, err
	}
	chunksArrayAddr, err := w.chunksArrayAddr()
	if err != nil {
		return nil, err
	}
	stride, err := w.ctx.Stride("FUObjectItem")
	if err != nil {
		return nil, err
	}

	snap := snapshot.NewSnapshot()
	children := make(map[string][]string)

	for i := uint32(0); i < numElements; i++ {
		objAddr, ok, err := w.readObjectPtr(chunksArrayAddr, stride, i)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		path, err := qualifiedPath(w.ctx, w.resolver, objAddr)
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(path, "/Script/") {
			continue
		}

		entry, err := w.readEntry(objAddr)
		if err != nil {
			return nil, fmt.Errorf("reflect: decoding %s: %w", path, err)
		}

		outerAddr, hasOuter, err := readOuterPtr(w.ctx, objAddr)
		if err != nil {
			return nil, err
		}
		if hasOuter {
			outerPath, err := qualifiedPath(w.ctx, w.resolver, outerAddr)
			if err != nil {
				return nil, err
			}
			children[outerPath] = append(children[outerPath], path)
		}

		snap.Entries[path] = entry
	}

	for outerPath, kids := range children {
		entry, ok := snap.Entries[outerPath]
		if !ok {
			continue
		}
		sort.Strings(kids)
		setChildren(&entry, kids)
		snap.Entries[outerPath] = entry
	}

	return snap, nil
}

// setChildren assigns kids to whichever variant entry carries, since
// Object is embedded (directly or via StructFields) in every kind.
func setChildren(entry *snapshot.Entry, kids []string) {
	switch entry.Kind {
	case snapshot.KindClass:
		entry.Class.Children = kids
	case snapshot.KindScriptStruct:
		entry.ScriptStruct.Children = kids
	case snapshot.KindFunction:
		entry.Function.Children = kids
	case snapshot.KindEnum:
		entry.Enum.Children = kids
	case snapshot.KindPackage:
		entry.Package.Children = kids
	case snapshot.KindObject:
		entry.Object.Children = kids
	}
}

// readEntry classifies objAddr by its class' cast flags, most-specific
// first (Class, Function, ScriptStruct, Enum, Package, else bare Object)
// and dispatches to the matching decoder.
func (w *Walker) readEntry(objAddr remote.Addr) (snapshot.Entry, error) {
	classAddr, err := readClassPtr(w.ctx, objAddr)
	if err != nil {
		return snapshot.Entry{}, err
	}

	var flags CastFlags
	if !classAddr.IsNull() {
		flags, err = readClassCastFlags(w.ctx, classAddr)
		if err != nil {
			return snapshot.Entry{}, err
		}
	}

	switch {
	case flags.Has(CastUClass):
		c, err := readClass(w.ctx, w.resolver, objAddr)
		if err != nil {
			return snapshot.Entry{}, err
		}
		return snapshot.Entry{Kind: snapshot.KindClass, Class: &c}, nil

	case flags.Has(CastUFunction):
		fn, err := readFunction(w.ctx, w.resolver, objAddr)
		if err != nil {
			return snapshot.Entry{}, err
		}
		return snapshot.Entry{Kind: snapshot.KindFunction, Function: &fn}, nil

	case flags.Has(CastUScriptStruct):
		s, err := readScriptStruct(w.ctx, w.resolver, objAddr)
		if err != nil {
			return snapshot.Entry{}, err
		}
		return snapshot.Entry{Kind: snapshot.KindScriptStruct, ScriptStruct: &s}, nil

	case flags.Has(CastUEnum):
		e, err := readEnum(w.ctx, w.resolver, objAddr)
		if err != nil {
			return snapshot.Entry{}, err
		}
		return snapshot.Entry{Kind: snapshot.KindEnum, Enum: &e}, nil

	case flags.Has(CastUPackage):
		obj, err := readObject(w.ctx, w.resolver, objAddr)
		if err != nil {
			return snapshot.Entry{}, err
		}
		return snapshot.Entry{Kind: snapshot.KindPackage, Package: &snapshot.Package{Object: obj}}, nil

	default:
		obj, err := readObject(w.ctx, w.resolver, objAddr)
		if err != nil {
			return snapshot.Entry{}, err
		}
		return snapshot.Entry{Kind: snapshot.KindObject, Object: &obj}, nil
	}
}

// chunksArrayAddr reads GUObjectArray.Objects: the pointer to the array of
// chunk pointers.
func (w *Walker) chunksArrayAddr() (remote.Addr, error) {
	off, err := w.ctx.OffsetOf("GUObjectArray", "Objects")
	if err != nil {
		return 0, err
	}
	cur := remote.NewCursor[remote.Ptr[byte]](w.ctx, w.objectArray.Add(int64(off)))
	p, err := remote.ReadPtr(cur)
	if err != nil {
		return 0, err
	}
	return p.Addr(), nil
}

// readObjectPtr resolves element i's FUObjectItem.Object pointer:
// chunk = chunksArrayAddr[i/65536]; item = chunk + stride*(i%65536).
func (w *Walker) readObjectPtr(chunksArrayAddr remote.Addr, stride uint32, i uint32) (remote.Addr, bool, error) {
	chunkIdx := i / objectArrayChunkSize
	chunkCur := remote.NewCursor[remote.Ptr[byte]](w.ctx, chunksArrayAddr.Add(int64(chunkIdx)*8))
	chunkPtr, err := remote.ReadPtr(chunkCur)
	if err != nil {
		return 0, false, err
	}
	itemAddr := chunkPtr.Addr().Add(int64(i%objectArrayChunkSize) * int64(stride))
	itemOff, err := w.ctx.OffsetOf("FUObjectItem", "Object")
	if err != nil {
		return 0, false, err
	}
	objCur := remote.NewCursor[remote.Ptr[byte]](w.ctx, itemAddr.Add(int64(itemOff)))
	objPtr, ok, err := remote.ReadOptPtr(objCur)
	if err != nil {
		return 0, false, err
	}
	return objPtr.Addr(), ok, nil
}
