package reflect

import (
	"github.com/trumank/meatloaf/internal/containers"
	"github.com/trumank/meatloaf/internal/names"
	"github.com/trumank/meatloaf/internal/remote"
	"github.com/trumank/meatloaf/snapshot"
)

// readPropertyValues decodes a class's CDO: walk classAddr's property
// chain (own plus every super_struct's, per forEachProperty) and decode
// each property's value out of cdoAddr's bytes.
func readPropertyValues(ctx *remote.Context, resolver *names.Resolver, classAddr, cdoAddr remote.Addr) (map[string]snapshot.Value, error) {
	values := make(map[string]snapshot.Value)
	err := forEachProperty(ctx, classAddr, func(node propertyNode) error {
		name, err := fieldName(ctx, resolver, node.addr)
		if err != nil {
			return err
		}
		_, arrayDim, _, _, err := readPropertyCore(ctx, node.addr)
		if err != nil {
			return err
		}
		if arrayDim <= 1 {
			v, ok, err := valueAt(ctx, resolver, node, cdoAddr, 0)
			if err != nil {
				return err
			}
			if ok {
				values[name] = v
			}
			return nil
		}

		elements := make([]snapshot.Value, 0, arrayDim)
		for i := uint32(0); i < arrayDim; i++ {
			v, ok, err := valueAt(ctx, resolver, node, cdoAddr, int(i))
			if err != nil {
				return err
			}
			if !ok {
				// If any element is absent, the whole field is omitted.
				return nil
			}
			elements = append(elements, v)
		}
		values[name] = snapshot.Value{Tag: "Array", Present: true, Array: elements}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

// readStructValue decodes every property of structAddr (own chain plus
// supers) out of base's bytes, for PropertyType Struct values nested
// inside a CDO: it recursively decodes the nested struct value via the
// same property chain walk.
func readStructValue(ctx *remote.Context, resolver *names.Resolver, structAddr, base remote.Addr) (map[string]snapshot.Value, error) {
	values := make(map[string]snapshot.Value)
	err := forEachProperty(ctx, structAddr, func(node propertyNode) error {
		name, err := fieldName(ctx, resolver, node.addr)
		if err != nil {
			return err
		}
		v, ok, err := valueAt(ctx, resolver, node, base, 0)
		if err != nil {
			return err
		}
		if ok {
			values[name] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

// valueAt reads node's value at base + offset_internal + index*element_size,
// dispatching on the property's field-class cast flags. The kinds it does
// not decode are tested first; among the decoded kinds, Class is tested with
// Object after every other kind, as in mapProp. Returns ok=false for value
// kinds this reader deliberately doesn't decode — not an error, just an
// omitted field.
func valueAt(ctx *remote.Context, resolver *names.Resolver, node propertyNode, base remote.Addr, index int) (snapshot.Value, bool, error) {
	offset, _, size, _, err := readPropertyCore(ctx, node.addr)
	if err != nil {
		return snapshot.Value{}, false, err
	}
	addr := base.Add(int64(offset) + int64(index)*int64(size))
	f := node.class

	switch {
	case f.Has(CastFStructProperty):
		structAddr, ok, err := readOptPtrField(ctx, "FStructProperty", "Struct", node.addr)
		if err != nil {
			return snapshot.Value{}, false, err
		}
		if !ok {
			return snapshot.Value{}, false, nil
		}
		nested, err := readStructValue(ctx, resolver, structAddr, addr)
		if err != nil {
			return snapshot.Value{}, false, err
		}
		return snapshot.Value{Tag: "Struct", Present: true, Struct: nested}, true, nil

	case f.Has(CastFStrProperty):
		s, err := containers.ReadFString(ctx, addr)
		if err != nil {
			return snapshot.Value{}, false, err
		}
		return snapshot.Value{Tag: "Str", Present: true, Str: s}, true, nil

	case f.Has(CastFNameProperty):
		raw, err := remote.ReadU64(remote.NewCursor[uint64](ctx, addr))
		if err != nil {
			return snapshot.Value{}, false, err
		}
		n := names.Name{EntryIndex: uint32(raw), Number: uint32(raw >> 32)}
		s, err := resolver.Resolve(n)
		if err != nil {
			return snapshot.Value{}, false, err
		}
		return snapshot.Value{Tag: "Name", Present: true, Str: s}, true, nil

	case f.Has(CastFTextProperty),
		f.Has(CastFMulticastInlineDelegateProperty),
		f.Has(CastFMulticastSparseDelegateProperty),
		f.Has(CastFDelegateProperty),
		f.Has(CastFMapProperty),
		f.Has(CastFSetProperty),
		f.Has(CastFWeakObjectProperty),
		f.Has(CastFSoftObjectProperty),
		f.Has(CastFLazyObjectProperty),
		f.Has(CastFInterfaceProperty),
		f.Has(CastFFieldPathProperty),
		f.Has(CastFOptionalProperty):
		// Deliberately unsupported value kinds.
		return snapshot.Value{}, false, nil

	case f.Has(CastFBoolProperty):
		byteOffset, err := readU8Field(ctx, "FBoolProperty", "ByteOffset", node.addr)
		if err != nil {
			return snapshot.Value{}, false, err
		}
		byteMask, err := readU8Field(ctx, "FBoolProperty", "ByteMask", node.addr)
		if err != nil {
			return snapshot.Value{}, false, err
		}
		b, err := remote.ReadU8(remote.NewCursor[uint8](ctx, addr.Add(int64(byteOffset))))
		if err != nil {
			return snapshot.Value{}, false, err
		}
		return snapshot.Value{Tag: "Bool", Present: true, Bool: b&byteMask != 0}, true, nil

	case f.Has(CastFArrayProperty):
		innerAddr, ok, err := readOptPtrField(ctx, "FArrayProperty", "Inner", node.addr)
		if err != nil {
			return snapshot.Value{}, false, err
		}
		if !ok {
			return snapshot.Value{}, false, nil
		}
		innerFlags, err := fieldCastFlagsOf(ctx, innerAddr)
		if err != nil {
			return snapshot.Value{}, false, err
		}
		innerNode := propertyNode{addr: innerAddr, class: innerFlags}
		hdr, err := containers.ReadHeapArrayHeader(ctx, addr)
		if err != nil {
			return snapshot.Value{}, false, err
		}
		if hdr.Num == 0 {
			return snapshot.Value{Tag: "Array", Present: true, Array: nil}, true, nil
		}
		dataAddr := arrayDataAddr(hdr)
		elements := make([]snapshot.Value, 0, hdr.Num)
		for i := uint32(0); i < hdr.Num; i++ {
			v, ok, err := valueAt(ctx, resolver, innerNode, dataAddr, int(i))
			if err != nil {
				return snapshot.Value{}, false, err
			}
			if !ok {
				return snapshot.Value{}, false, nil
			}
			elements = append(elements, v)
		}
		return snapshot.Value{Tag: "Array", Present: true, Array: elements}, true, nil

	case f.Has(CastFEnumProperty):
		underAddr, ok, err := readOptPtrField(ctx, "FEnumProperty", "UnderlyingProp", node.addr)
		if err != nil {
			return snapshot.Value{}, false, err
		}
		if !ok {
			return snapshot.Value{}, false, nil
		}
		underFlags, err := fieldCastFlagsOf(ctx, underAddr)
		if err != nil {
			return snapshot.Value{}, false, err
		}
		under, ok, err := valueAt(ctx, resolver, propertyNode{addr: underAddr, class: underFlags}, addr, 0)
		if err != nil {
			return snapshot.Value{}, false, err
		}
		if !ok {
			return snapshot.Value{}, false, nil
		}
		enumAddr, hasEnum, err := readOptPtrField(ctx, "FEnumProperty", "Enum", node.addr)
		if err != nil {
			return snapshot.Value{}, false, err
		}
		if !hasEnum {
			return snapshot.Value{Tag: "Enum", Present: true, Int: under.Int}, true, nil
		}
		name, found, err := lookupEnumName(ctx, resolver, enumAddr, under.Int)
		if err != nil {
			return snapshot.Value{}, false, err
		}
		if found {
			return snapshot.Value{Tag: "Enum", Present: true, Str: name}, true, nil
		}
		return snapshot.Value{Tag: "Enum", Present: true, Int: under.Int}, true, nil

	case f.Has(CastFFloatProperty):
		v, err := remote.ReadF32(remote.NewCursor[float32](ctx, addr))
		if err != nil {
			return snapshot.Value{}, false, err
		}
		return snapshot.Value{Tag: "Float", Present: true, Float: float64(v)}, true, nil
	case f.Has(CastFDoubleProperty):
		v, err := remote.ReadF64(remote.NewCursor[float64](ctx, addr))
		if err != nil {
			return snapshot.Value{}, false, err
		}
		return snapshot.Value{Tag: "Double", Present: true, Float: v}, true, nil

	case f.Has(CastFByteProperty):
		v, err := remote.ReadU8(remote.NewCursor[uint8](ctx, addr))
		if err != nil {
			return snapshot.Value{}, false, err
		}
		enumAddr, hasEnum, err := readOptPtrField(ctx, "FByteProperty", "Enum", node.addr)
		if err != nil {
			return snapshot.Value{}, false, err
		}
		if hasEnum {
			name, found, err := lookupEnumName(ctx, resolver, enumAddr, int64(v))
			if err != nil {
				return snapshot.Value{}, false, err
			}
			if found {
				return snapshot.Value{Tag: "Byte", Present: true, Str: name}, true, nil
			}
		}
		return snapshot.Value{Tag: "Byte", Present: true, Uint: uint64(v)}, true, nil

	case f.Has(CastFUInt16Property):
		v, err := remote.ReadU16(remote.NewCursor[uint16](ctx, addr))
		return boundUint("UInt16", uint64(v), err)
	case f.Has(CastFUInt32Property):
		v, err := remote.ReadU32(remote.NewCursor[uint32](ctx, addr))
		return boundUint("UInt32", uint64(v), err)
	case f.Has(CastFUInt64Property):
		v, err := remote.ReadU64(remote.NewCursor[uint64](ctx, addr))
		return boundUint("UInt64", v, err)
	case f.Has(CastFInt8Property):
		v, err := remote.ReadI8(remote.NewCursor[int8](ctx, addr))
		return boundInt("Int8", int64(v), err)
	case f.Has(CastFInt16Property):
		v, err := remote.ReadI16(remote.NewCursor[int16](ctx, addr))
		return boundInt("Int16", int64(v), err)
	case f.Has(CastFIntProperty):
		v, err := remote.ReadI32(remote.NewCursor[int32](ctx, addr))
		return boundInt("Int", int64(v), err)
	case f.Has(CastFInt64Property):
		v, err := remote.ReadI64(remote.NewCursor[int64](ctx, addr))
		return boundInt("Int64", v, err)

	case f.Has(CastFClassProperty), f.Has(CastFObjectProperty):
		p, err := remote.ReadPtr(remote.NewCursor[remote.Ptr[byte]](ctx, addr))
		if err != nil {
			return snapshot.Value{}, false, err
		}
		if p.IsNull() {
			return snapshot.Value{Tag: "Object", Present: true, Object: ""}, true, nil
		}
		path, err := qualifiedPath(ctx, resolver, p.Addr())
		if err != nil {
			return snapshot.Value{}, false, err
		}
		return snapshot.Value{Tag: "Object", Present: true, Object: path}, true, nil

	default:
		return snapshot.Value{}, false, nil
	}
}

func boundUint(tag string, v uint64, err error) (snapshot.Value, bool, error) {
	if err != nil {
		return snapshot.Value{}, false, err
	}
	return snapshot.Value{Tag: tag, Present: true, Uint: v}, true, nil
}

func boundInt(tag string, v int64, err error) (snapshot.Value, bool, error) {
	if err != nil {
		return snapshot.Value{}, false, err
	}
	return snapshot.Value{Tag: tag, Present: true, Int: v}, true, nil
}

// arrayDataAddr extracts the backing data pointer's address from an
// already-decoded array header for use as the base of per-element reads.
func arrayDataAddr(h containers.ArrayHeader) remote.Addr {
	return h.DataAddr()
}

// lookupEnumName resolves value against enumAddr's names table, returning
// ok=false if no entry matches so the caller can fall back to the raw
// integer.
func lookupEnumName(ctx *remote.Context, resolver *names.Resolver, enumAddr remote.Addr, value int64) (string, bool, error) {
	e, err := readEnum(ctx, resolver, enumAddr)
	if err != nil {
		return "", false, err
	}
	for _, n := range e.Names {
		if n.Value == value {
			return n.Name, true, nil
		}
	}
	return "", false, nil
}
