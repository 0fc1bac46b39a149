package reflect

import (
	"github.com/trumank/meatloaf/internal/names"
	"github.com/trumank/meatloaf/internal/remote"
)

// propertyNode is one FField in a struct's property chain, with its
// class's cast flags already resolved so callers can dispatch without a
// second read.
type propertyNode struct {
	addr  remote.Addr
	class CastFlags
}

// childProperties reads UStruct.ChildProperties: the head of the struct's
// own property chain (not including any inherited from super_struct).
func childProperties(ctx *remote.Context, structAddr remote.Addr) (remote.Addr, bool, error) {
	cur, err := remote.Field[remote.Ptr[byte]](remote.NewCursor[byte](ctx, structAddr), "UStruct", "ChildProperties")
	if err != nil {
		return 0, false, err
	}
	p, ok, err := remote.ReadOptPtr(cur)
	if err != nil {
		return 0, false, err
	}
	return p.Addr(), ok, nil
}

// fieldNext reads FField.Next.
func fieldNext(ctx *remote.Context, fieldAddr remote.Addr) (remote.Addr, bool, error) {
	cur, err := remote.Field[remote.Ptr[byte]](remote.NewCursor[byte](ctx, fieldAddr), "FField", "Next")
	if err != nil {
		return 0, false, err
	}
	p, ok, err := remote.ReadOptPtr(cur)
	if err != nil {
		return 0, false, err
	}
	return p.Addr(), ok, nil
}

// fieldClassPtr reads FField.ClassPrivate.
func fieldClassPtr(ctx *remote.Context, fieldAddr remote.Addr) (remote.Addr, error) {
	cur, err := remote.Field[remote.Ptr[byte]](remote.NewCursor[byte](ctx, fieldAddr), "FField", "ClassPrivate")
	if err != nil {
		return 0, err
	}
	p, err := remote.ReadPtr(cur)
	if err != nil {
		return 0, err
	}
	return p.Addr(), nil
}

// fieldName reads FField.NamePrivate.
func fieldName(ctx *remote.Context, resolver *names.Resolver, fieldAddr remote.Addr) (string, error) {
	return readNameField(ctx, resolver, "FField", "NamePrivate", fieldAddr)
}

// fieldFlags reads FField.FlagsPrivate.
func fieldFlags(ctx *remote.Context, fieldAddr remote.Addr) (uint32, error) {
	cur, err := remote.Field[uint32](remote.NewCursor[byte](ctx, fieldAddr), "FField", "FlagsPrivate")
	if err != nil {
		return 0, err
	}
	return remote.ReadU32(cur)
}

// forEachProperty walks structAddr's child_properties chain, then its
// super_struct's, and so on to the root, invoking fn for every node whose
// class cast-flags contain CASTCLASS_FProperty.
func forEachProperty(ctx *remote.Context, structAddr remote.Addr, fn func(propertyNode) error) error {
	for s := structAddr; !s.IsNull(); {
		head, ok, err := childProperties(ctx, s)
		if err != nil {
			return err
		}
		for ok {
			classAddr, err := fieldClassPtr(ctx, head)
			if err != nil {
				return err
			}
			flags, err := readFieldClassCastFlags(ctx, classAddr)
			if err != nil {
				return err
			}
			if flags.Has(CastFProperty) {
				if err := fn(propertyNode{addr: head, class: flags}); err != nil {
					return err
				}
			}
			head, ok, err = fieldNext(ctx, head)
			if err != nil {
				return err
			}
		}
		next, ok, err := superStruct(ctx, s)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		s = next
	}
	return nil
}

// superStruct reads UStruct.SuperStruct.
func superStruct(ctx *remote.Context, structAddr remote.Addr) (remote.Addr, bool, error) {
	cur, err := remote.Field[remote.Ptr[byte]](remote.NewCursor[byte](ctx, structAddr), "UStruct", "SuperStruct")
	if err != nil {
		return 0, false, err
	}
	p, ok, err := remote.ReadOptPtr(cur)
	if err != nil {
		return 0, false, err
	}
	return p.Addr(), ok, nil
}
