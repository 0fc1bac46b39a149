package reflect

import (
	"fmt"

	"github.com/trumank/meatloaf/internal/names"
	"github.com/trumank/meatloaf/internal/remote"
	"github.com/trumank/meatloaf/snapshot"
)

// ErrUnimplementedProperty marks a property cast-flag combination with no
// dispatch arm.
var ErrUnimplementedProperty = fmt.Errorf("reflect: unimplemented property cast flags")

func readPropertyCore(ctx *remote.Context, addr remote.Addr) (offset, arrayDim, size uint32, flags uint64, err error) {
	offset, err = readU32Field(ctx, "FProperty", "Offset_Internal", addr)
	if err != nil {
		return
	}
	arrayDim, err = readU32Field(ctx, "FProperty", "ArrayDim", addr)
	if err != nil {
		return
	}
	size, err = readU32Field(ctx, "FProperty", "ElementSize", addr)
	if err != nil {
		return
	}
	pf, err := readU32Field(ctx, "FProperty", "PropertyFlags", addr)
	flags = uint64(pf)
	return
}

func readU32Field(ctx *remote.Context, structName, fieldName string, addr remote.Addr) (uint32, error) {
	cur, err := remote.Field[uint32](remote.NewCursor[byte](ctx, addr), structName, fieldName)
	if err != nil {
		return 0, err
	}
	return remote.ReadU32(cur)
}

func readU8Field(ctx *remote.Context, structName, fieldName string, addr remote.Addr) (uint8, error) {
	cur, err := remote.Field[uint8](remote.NewCursor[byte](ctx, addr), structName, fieldName)
	if err != nil {
		return 0, err
	}
	return remote.ReadU8(cur)
}

func readOptPtrField(ctx *remote.Context, structName, fieldName string, addr remote.Addr) (remote.Addr, bool, error) {
	cur, err := remote.Field[remote.Ptr[byte]](remote.NewCursor[byte](ctx, addr), structName, fieldName)
	if err != nil {
		return 0, false, err
	}
	p, ok, err := remote.ReadOptPtr(cur)
	if err != nil {
		return 0, false, err
	}
	return p.Addr(), ok, nil
}

// pathOf resolves obj's qualified path, or "" if obj is null.
func pathOf(ctx *remote.Context, resolver *names.Resolver, obj remote.Addr, ok bool) (string, error) {
	if !ok {
		return "", nil
	}
	return qualifiedPath(ctx, resolver, obj)
}

// mapProp maps a property's field-class cast flags to its structural type
// descriptor, dispatching most specific first (Class before Object,
// SoftClass before SoftObject, Multicast variants before Delegate).
func mapProp(ctx *remote.Context, resolver *names.Resolver, node propertyNode) (snapshot.PropertyType, error) {
	f := node.class
	addr := node.addr

	switch {
	case f.Has(CastFStructProperty):
		structAddr, ok, err := readOptPtrField(ctx, "FStructProperty", "Struct", addr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		path, err := pathOf(ctx, resolver, structAddr, ok)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		return snapshot.PropertyType{Tag: "Struct", Struct: path}, nil

	case f.Has(CastFStrProperty):
		return snapshot.PropertyType{Tag: "Str"}, nil
	case f.Has(CastFNameProperty):
		return snapshot.PropertyType{Tag: "Name"}, nil
	case f.Has(CastFTextProperty):
		return snapshot.PropertyType{Tag: "Text"}, nil

	case f.Has(CastFMulticastInlineDelegateProperty):
		sig, err := readSignatureFunction(ctx, resolver, addr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		return snapshot.PropertyType{Tag: "MulticastInlineDelegate", SignatureFunction: sig}, nil
	case f.Has(CastFMulticastSparseDelegateProperty):
		sig, err := readSignatureFunction(ctx, resolver, addr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		return snapshot.PropertyType{Tag: "MulticastSparseDelegate", SignatureFunction: sig}, nil
	case f.Has(CastFDelegateProperty):
		sig, err := readSignatureFunction(ctx, resolver, addr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		return snapshot.PropertyType{Tag: "Delegate", SignatureFunction: sig}, nil

	case f.Has(CastFBoolProperty):
		fieldSize, err := readU8Field(ctx, "FBoolProperty", "FieldSize", addr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		byteOffset, err := readU8Field(ctx, "FBoolProperty", "ByteOffset", addr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		byteMask, err := readU8Field(ctx, "FBoolProperty", "ByteMask", addr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		fieldMask, err := readU8Field(ctx, "FBoolProperty", "FieldMask", addr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		return snapshot.PropertyType{Tag: "Bool", FieldSize: fieldSize, ByteOffset: byteOffset, ByteMask: byteMask, FieldMask: fieldMask}, nil

	case f.Has(CastFArrayProperty):
		innerAddr, ok, err := readOptPtrField(ctx, "FArrayProperty", "Inner", addr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		if !ok {
			return snapshot.PropertyType{}, fmt.Errorf("reflect: array property %s has no inner property: %w", addr, ErrUnimplementedProperty)
		}
		innerFlags, err := fieldCastFlagsOf(ctx, innerAddr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		inner, err := mapProp(ctx, resolver, propertyNode{addr: innerAddr, class: innerFlags})
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		return snapshot.PropertyType{Tag: "Array", Inner: &inner}, nil

	case f.Has(CastFEnumProperty):
		underAddr, ok, err := readOptPtrField(ctx, "FEnumProperty", "UnderlyingProp", addr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		if !ok {
			return snapshot.PropertyType{}, fmt.Errorf("reflect: enum property %s has no underlying property: %w", addr, ErrUnimplementedProperty)
		}
		underFlags, err := fieldCastFlagsOf(ctx, underAddr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		under, err := mapProp(ctx, resolver, propertyNode{addr: underAddr, class: underFlags})
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		enumAddr, ok, err := readOptPtrField(ctx, "FEnumProperty", "Enum", addr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		enumPath, err := pathOf(ctx, resolver, enumAddr, ok)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		return snapshot.PropertyType{Tag: "Enum", Inner: &under, Enum: enumPath}, nil

	case f.Has(CastFMapProperty):
		keyAddr, _, err := readOptPtrField(ctx, "FMapProperty", "KeyProp", addr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		keyFlags, err := fieldCastFlagsOf(ctx, keyAddr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		key, err := mapProp(ctx, resolver, propertyNode{addr: keyAddr, class: keyFlags})
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		valAddr, _, err := readOptPtrField(ctx, "FMapProperty", "ValueProp", addr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		valFlags, err := fieldCastFlagsOf(ctx, valAddr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		val, err := mapProp(ctx, resolver, propertyNode{addr: valAddr, class: valFlags})
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		return snapshot.PropertyType{Tag: "Map", Inner: &key, Value: &val}, nil

	case f.Has(CastFSetProperty):
		elemAddr, _, err := readOptPtrField(ctx, "FSetProperty", "ElementProp", addr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		elemFlags, err := fieldCastFlagsOf(ctx, elemAddr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		elem, err := mapProp(ctx, resolver, propertyNode{addr: elemAddr, class: elemFlags})
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		return snapshot.PropertyType{Tag: "Set", Inner: &elem}, nil

	case f.Has(CastFFloatProperty):
		return snapshot.PropertyType{Tag: "Float"}, nil
	case f.Has(CastFDoubleProperty):
		return snapshot.PropertyType{Tag: "Double"}, nil

	case f.Has(CastFByteProperty):
		enumAddr, ok, err := readOptPtrField(ctx, "FByteProperty", "Enum", addr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		enumPath, err := pathOf(ctx, resolver, enumAddr, ok)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		return snapshot.PropertyType{Tag: "Byte", Enum: enumPath}, nil

	case f.Has(CastFUInt16Property):
		return snapshot.PropertyType{Tag: "UInt16"}, nil
	case f.Has(CastFUInt32Property):
		return snapshot.PropertyType{Tag: "UInt32"}, nil
	case f.Has(CastFUInt64Property):
		return snapshot.PropertyType{Tag: "UInt64"}, nil
	case f.Has(CastFInt8Property):
		return snapshot.PropertyType{Tag: "Int8"}, nil
	case f.Has(CastFInt16Property):
		return snapshot.PropertyType{Tag: "Int16"}, nil
	case f.Has(CastFIntProperty):
		return snapshot.PropertyType{Tag: "Int"}, nil
	case f.Has(CastFInt64Property):
		return snapshot.PropertyType{Tag: "Int64"}, nil

	// Class/SoftClass must be tested before Object/SoftObject: a class
	// property's cast flags also carry the object-property base flags.
	case f.Has(CastFClassProperty):
		propClass, ok, err := readOptPtrField(ctx, "FObjectPropertyBase", "PropertyClass", addr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		propClassPath, err := pathOf(ctx, resolver, propClass, ok)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		metaClass, ok, err := readOptPtrField(ctx, "FClassProperty", "MetaClass", addr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		metaClassPath, err := pathOf(ctx, resolver, metaClass, ok)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		return snapshot.PropertyType{Tag: "Class", PropertyClass: propClassPath, MetaClass: metaClassPath}, nil

	case f.Has(CastFSoftClassProperty):
		propClass, ok, err := readOptPtrField(ctx, "FObjectPropertyBase", "PropertyClass", addr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		propClassPath, err := pathOf(ctx, resolver, propClass, ok)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		metaClass, ok, err := readOptPtrField(ctx, "FClassProperty", "MetaClass", addr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		metaClassPath, err := pathOf(ctx, resolver, metaClass, ok)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		return snapshot.PropertyType{Tag: "SoftClass", PropertyClass: propClassPath, MetaClass: metaClassPath}, nil

	case f.Has(CastFSoftObjectProperty):
		propClass, ok, err := readOptPtrField(ctx, "FObjectPropertyBase", "PropertyClass", addr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		path, err := pathOf(ctx, resolver, propClass, ok)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		return snapshot.PropertyType{Tag: "SoftObject", PropertyClass: path}, nil

	case f.Has(CastFWeakObjectProperty):
		propClass, ok, err := readOptPtrField(ctx, "FObjectPropertyBase", "PropertyClass", addr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		path, err := pathOf(ctx, resolver, propClass, ok)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		return snapshot.PropertyType{Tag: "WeakObject", PropertyClass: path}, nil

	case f.Has(CastFLazyObjectProperty):
		propClass, ok, err := readOptPtrField(ctx, "FObjectPropertyBase", "PropertyClass", addr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		path, err := pathOf(ctx, resolver, propClass, ok)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		return snapshot.PropertyType{Tag: "LazyObject", PropertyClass: path}, nil

	case f.Has(CastFObjectProperty):
		propClass, ok, err := readOptPtrField(ctx, "FObjectPropertyBase", "PropertyClass", addr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		path, err := pathOf(ctx, resolver, propClass, ok)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		return snapshot.PropertyType{Tag: "Object", PropertyClass: path}, nil

	case f.Has(CastFInterfaceProperty):
		ifaceAddr, ok, err := readOptPtrField(ctx, "FObjectPropertyBase", "PropertyClass", addr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		path, err := pathOf(ctx, resolver, ifaceAddr, ok)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		return snapshot.PropertyType{Tag: "Interface", PropertyClass: path}, nil

	case f.Has(CastFFieldPathProperty):
		return snapshot.PropertyType{Tag: "FieldPath"}, nil

	case f.Has(CastFOptionalProperty):
		// FOptionalProperty's inner property is read through the
		// FArrayProperty.Inner registry entry: its trailing offset matches
		// that slot in this registry's default layout. No separate
		// FOptionalProperty entry is consulted.
		innerAddr, ok, err := readOptPtrField(ctx, "FArrayProperty", "Inner", addr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		if !ok {
			return snapshot.PropertyType{}, fmt.Errorf("reflect: optional property %s has no inner property: %w", addr, ErrUnimplementedProperty)
		}
		innerFlags, err := fieldCastFlagsOf(ctx, innerAddr)
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		inner, err := mapProp(ctx, resolver, propertyNode{addr: innerAddr, class: innerFlags})
		if err != nil {
			return snapshot.PropertyType{}, err
		}
		return snapshot.PropertyType{Tag: "Optional", Inner: &inner}, nil

	default:
		return snapshot.PropertyType{}, fmt.Errorf("reflect: property %s has cast flags %#x: %w", addr, uint64(f), ErrUnimplementedProperty)
	}
}

// readSignatureFunction resolves a delegate property's signature-function
// path. Delegate/Multicast property layouts place the signature function
// pointer at the same trailing offset as FObjectPropertyBase.PropertyClass
// in this registry's default layout.
func readSignatureFunction(ctx *remote.Context, resolver *names.Resolver, addr remote.Addr) (string, error) {
	fn, ok, err := readOptPtrField(ctx, "FObjectPropertyBase", "PropertyClass", addr)
	if err != nil {
		return "", err
	}
	return pathOf(ctx, resolver, fn, ok)
}

// fieldCastFlagsOf reads an FField's class cast-flags, used for nested
// property references (array inner, map key/value, set element, enum
// underlying) which are themselves chained FField nodes rather than bare
// addresses.
func fieldCastFlagsOf(ctx *remote.Context, fieldAddr remote.Addr) (CastFlags, error) {
	if fieldAddr.IsNull() {
		return 0, fmt.Errorf("reflect: nested property reference at %s is null: %w", fieldAddr, ErrUnimplementedProperty)
	}
	classAddr, err := fieldClassPtr(ctx, fieldAddr)
	if err != nil {
		return 0, err
	}
	return readFieldClassCastFlags(ctx, classAddr)
}
