package reflect

import (
	"encoding/binary"

	"github.com/trumank/meatloaf/internal/containers"
	"github.com/trumank/meatloaf/internal/names"
	"github.com/trumank/meatloaf/internal/remote"
	"github.com/trumank/meatloaf/snapshot"
)

// readObject builds the Object fields every entry shares: outer path,
// class path, and an empty children set (filled in later by the walker's
// outer→children pass).
func readObject(ctx *remote.Context, resolver *names.Resolver, addr remote.Addr) (snapshot.Object, error) {
	outerAddr, ok, err := readOuterPtr(ctx, addr)
	if err != nil {
		return snapshot.Object{}, err
	}
	outer, err := pathOf(ctx, resolver, outerAddr, ok)
	if err != nil {
		return snapshot.Object{}, err
	}
	classAddr, err := readClassPtr(ctx, addr)
	if err != nil {
		return snapshot.Object{}, err
	}
	class, err := pathOf(ctx, resolver, classAddr, !classAddr.IsNull())
	if err != nil {
		return snapshot.Object{}, err
	}
	return snapshot.Object{Outer: outer, Class: class, Children: nil}, nil
}

// readProperty decodes one FProperty into its descriptor: name, offset,
// array dimension, size, flags, and mapped type.
func readProperty(ctx *remote.Context, resolver *names.Resolver, node propertyNode) (snapshot.Property, error) {
	name, err := fieldName(ctx, resolver, node.addr)
	if err != nil {
		return snapshot.Property{}, err
	}
	offset, arrayDim, size, flags, err := readPropertyCore(ctx, node.addr)
	if err != nil {
		return snapshot.Property{}, err
	}
	typ, err := mapProp(ctx, resolver, node)
	if err != nil {
		return snapshot.Property{}, err
	}
	return snapshot.Property{
		Name:     name,
		Offset:   offset,
		ArrayDim: arrayDim,
		Size:     size,
		Flags:    flags,
		Type:     typ,
	}, nil
}

// readStructFields decodes the object base fields plus the struct's own
// property list (its child_properties chain only; inherited properties are
// listed on the super_struct's own entry), super_struct's path,
// properties_size, and min_alignment.
func readStructFields(ctx *remote.Context, resolver *names.Resolver, addr remote.Addr) (snapshot.StructFields, error) {
	obj, err := readObject(ctx, resolver, addr)
	if err != nil {
		return snapshot.StructFields{}, err
	}

	var props []snapshot.Property
	// Only the struct's own chain (not super_struct's) contributes entries
	// here; forEachProperty already walks the full super chain, so capture
	// just addr's own level by stopping after its chain is exhausted once.
	head, ok, err := childProperties(ctx, addr)
	if err != nil {
		return snapshot.StructFields{}, err
	}
	for ok {
		classAddr, err := fieldClassPtr(ctx, head)
		if err != nil {
			return snapshot.StructFields{}, err
		}
		flags, err := readFieldClassCastFlags(ctx, classAddr)
		if err != nil {
			return snapshot.StructFields{}, err
		}
		if flags.Has(CastFProperty) {
			p, err := readProperty(ctx, resolver, propertyNode{addr: head, class: flags})
			if err != nil {
				return snapshot.StructFields{}, err
			}
			props = append(props, p)
		}
		head, ok, err = fieldNext(ctx, head)
		if err != nil {
			return snapshot.StructFields{}, err
		}
	}

	superAddr, hasSuper, err := superStruct(ctx, addr)
	if err != nil {
		return snapshot.StructFields{}, err
	}
	superPath, err := pathOf(ctx, resolver, superAddr, hasSuper)
	if err != nil {
		return snapshot.StructFields{}, err
	}

	propertiesSize, err := readU32Field(ctx, "UStruct", "PropertiesSize", addr)
	if err != nil {
		return snapshot.StructFields{}, err
	}
	minAlignment, err := readU32Field(ctx, "UStruct", "MinAlignment", addr)
	if err != nil {
		return snapshot.StructFields{}, err
	}

	return snapshot.StructFields{
		Object:         obj,
		SuperStruct:    superPath,
		Properties:     props,
		PropertiesSize: propertiesSize,
		MinAlignment:   minAlignment,
	}, nil
}

// readClass decodes the struct fields plus class flags, cast flags, CDO
// path, and — when the CDO is non-null — the CDO's property values
// decoded by walking the class' own property chain plus every
// super_struct's.
func readClass(ctx *remote.Context, resolver *names.Resolver, addr remote.Addr) (snapshot.Class, error) {
	structFields, err := readStructFields(ctx, resolver, addr)
	if err != nil {
		return snapshot.Class{}, err
	}
	classFlags, err := readU32Field(ctx, "UClass", "ClassFlags", addr)
	if err != nil {
		return snapshot.Class{}, err
	}
	classCastFlags, err := readClassCastFlags(ctx, addr)
	if err != nil {
		return snapshot.Class{}, err
	}
	cdoAddr, hasCDO, err := readOptPtrField(ctx, "UClass", "ClassDefaultObject", addr)
	if err != nil {
		return snapshot.Class{}, err
	}
	cdoPath, err := pathOf(ctx, resolver, cdoAddr, hasCDO)
	if err != nil {
		return snapshot.Class{}, err
	}

	var values map[string]snapshot.Value
	if hasCDO {
		values, err = readPropertyValues(ctx, resolver, addr, cdoAddr)
		if err != nil {
			return snapshot.Class{}, err
		}
	}

	return snapshot.Class{
		StructFields:       structFields,
		ClassFlags:         classFlags,
		ClassCastFlags:     uint64(classCastFlags),
		ClassDefaultObject: cdoPath,
		PropertyValues:     values,
	}, nil
}

// readScriptStruct decodes a UScriptStruct: struct fields plus struct flags.
func readScriptStruct(ctx *remote.Context, resolver *names.Resolver, addr remote.Addr) (snapshot.ScriptStruct, error) {
	structFields, err := readStructFields(ctx, resolver, addr)
	if err != nil {
		return snapshot.ScriptStruct{}, err
	}
	structFlags, err := readU32Field(ctx, "UScriptStruct", "StructFlags", addr)
	if err != nil {
		return snapshot.ScriptStruct{}, err
	}
	return snapshot.ScriptStruct{StructFields: structFields, StructFlags: structFlags}, nil
}

// readFunction decodes a UFunction: struct fields, function flags, and the
// native Func pointer.
func readFunction(ctx *remote.Context, resolver *names.Resolver, addr remote.Addr) (snapshot.Function, error) {
	structFields, err := readStructFields(ctx, resolver, addr)
	if err != nil {
		return snapshot.Function{}, err
	}
	functionFlags, err := readU32Field(ctx, "UFunction", "FunctionFlags", addr)
	if err != nil {
		return snapshot.Function{}, err
	}
	cur, err := remote.Field[remote.Ptr[byte]](remote.NewCursor[byte](ctx, addr), "UFunction", "Func")
	if err != nil {
		return snapshot.Function{}, err
	}
	funcPtr, err := remote.ReadPtr(cur)
	if err != nil {
		return snapshot.Function{}, err
	}
	return snapshot.Function{
		StructFields:  structFields,
		FunctionFlags: functionFlags,
		Func:          uint64(funcPtr.Addr()),
	}, nil
}

// readEnum decodes a UEnum: the cpp_type string, and the names array of
// (Name, i64) pairs.
func readEnum(ctx *remote.Context, resolver *names.Resolver, addr remote.Addr) (snapshot.Enum, error) {
	obj, err := readObject(ctx, resolver, addr)
	if err != nil {
		return snapshot.Enum{}, err
	}
	cppTypeOff, err := ctx.OffsetOf("UEnum", "CppType")
	if err != nil {
		return snapshot.Enum{}, err
	}
	cppType, err := containers.ReadFString(ctx, addr.Add(int64(cppTypeOff)))
	if err != nil {
		return snapshot.Enum{}, err
	}

	namesOff, err := ctx.OffsetOf("UEnum", "Names")
	if err != nil {
		return snapshot.Enum{}, err
	}
	hdr, err := containers.ReadHeapArrayHeader(ctx, addr.Add(int64(namesOff)))
	if err != nil {
		return snapshot.Enum{}, err
	}
	const pairSize = 16 // TPair<FName, int64>: 8 + 8
	entries, err := containers.ReadLocalElements(ctx, hdr, pairSize, func(w []byte) (snapshot.EnumName, error) {
		raw := binary.LittleEndian.Uint64(w[:8])
		n := names.Name{EntryIndex: uint32(raw), Number: uint32(raw >> 32)}
		name, err := resolver.Resolve(n)
		if err != nil {
			return snapshot.EnumName{}, err
		}
		value := int64(binary.LittleEndian.Uint64(w[8:16]))
		return snapshot.EnumName{Name: name, Value: value}, nil
	})
	if err != nil {
		return snapshot.Enum{}, err
	}

	return snapshot.Enum{Object: obj, CppType: cppType, Names: entries}, nil
}
