package reflect

import (
	"github.com/trumank/meatloaf/internal/names"
	"github.com/trumank/meatloaf/internal/remote"
)

// readName decodes the FName at UObjectBase.NamePrivate for the object at
// addr and resolves it to a string, ignoring the number suffix (the
// resolver's documented, possibly-buggy default).
func readName(ctx *remote.Context, resolver *names.Resolver, addr remote.Addr) (string, error) {
	return readNameField(ctx, resolver, "UObjectBase", "NamePrivate", addr)
}

// readNameField decodes the FName at structName.fieldName for the record
// at addr. FName is stored as two packed uint32s (entry_index, number).
func readNameField(ctx *remote.Context, resolver *names.Resolver, structName, fieldName string, addr remote.Addr) (string, error) {
	cur, err := remote.Field[uint64](remote.NewCursor[byte](ctx, addr), structName, fieldName)
	if err != nil {
		return "", err
	}
	raw, err := remote.ReadU64(cur)
	if err != nil {
		return "", err
	}
	n := names.Name{EntryIndex: uint32(raw), Number: uint32(raw >> 32)}
	return resolver.Resolve(n)
}

// readClassPtr reads the UObjectBase.ClassPrivate field at addr.
func readClassPtr(ctx *remote.Context, addr remote.Addr) (remote.Addr, error) {
	cur, err := remote.Field[remote.Ptr[byte]](remote.NewCursor[byte](ctx, addr), "UObjectBase", "ClassPrivate")
	if err != nil {
		return 0, err
	}
	p, err := remote.ReadPtr(cur)
	if err != nil {
		return 0, err
	}
	return p.Addr(), nil
}

// readOuterPtr reads the UObjectBase.OuterPrivate field at addr, returning
// ok=false if it is null.
func readOuterPtr(ctx *remote.Context, addr remote.Addr) (remote.Addr, bool, error) {
	cur, err := remote.Field[remote.Ptr[byte]](remote.NewCursor[byte](ctx, addr), "UObjectBase", "OuterPrivate")
	if err != nil {
		return 0, false, err
	}
	p, ok, err := remote.ReadOptPtr(cur)
	if err != nil {
		return 0, false, err
	}
	return p.Addr(), ok, nil
}

// readObjectFlags reads the UObjectBase.ObjectFlags field at addr.
func readObjectFlags(ctx *remote.Context, addr remote.Addr) (uint32, error) {
	cur, err := remote.Field[uint32](remote.NewCursor[byte](ctx, addr), "UObjectBase", "ObjectFlags")
	if err != nil {
		return 0, err
	}
	return remote.ReadU32(cur)
}

// readClassCastFlags reads the UClass.ClassCastFlags field of the class at
// classAddr (classAddr points at a UObject that is itself a UClass
// instance, i.e. obj.class_private for some other object, or that object
// itself when it is a class).
func readClassCastFlags(ctx *remote.Context, classAddr remote.Addr) (CastFlags, error) {
	cur, err := remote.Field[uint64](remote.NewCursor[byte](ctx, classAddr), "UClass", "ClassCastFlags")
	if err != nil {
		return 0, err
	}
	v, err := remote.ReadU64(cur)
	if err != nil {
		return 0, err
	}
	return CastFlags(v), nil
}

// readFieldClassCastFlags reads FFieldClass.CastFlags at classAddr (the
// class_private of an FField node).
func readFieldClassCastFlags(ctx *remote.Context, classAddr remote.Addr) (CastFlags, error) {
	cur, err := remote.Field[uint64](remote.NewCursor[byte](ctx, classAddr), "FFieldClass", "CastFlags")
	if err != nil {
		return 0, err
	}
	v, err := remote.ReadU64(cur)
	if err != nil {
		return 0, err
	}
	return CastFlags(v), nil
}
