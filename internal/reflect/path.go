package reflect

import (
	"strings"

	"github.com/trumank/meatloaf/internal/names"
	"github.com/trumank/meatloaf/internal/remote"
)

// isPackage reports whether the object at addr is classified as a package,
// i.e. its class's ClassCastFlags contain CASTCLASS_UPackage.
func isPackage(ctx *remote.Context, addr remote.Addr) (bool, error) {
	classAddr, err := readClassPtr(ctx, addr)
	if err != nil {
		return false, err
	}
	if classAddr.IsNull() {
		return false, nil
	}
	flags, err := readClassCastFlags(ctx, classAddr)
	if err != nil {
		return false, err
	}
	return flags.Has(CastUPackage), nil
}

// qualifiedPath walks addr's outer_ptr chain to the root and emits names
// root-first, separated by "." when the parent element is a package and
// ":" otherwise. The root's own name carries no leading separator.
func qualifiedPath(ctx *remote.Context, resolver *names.Resolver, addr remote.Addr) (string, error) {
	chain := []remote.Addr{addr}
	cur := addr
	for {
		outer, ok, err := readOuterPtr(ctx, cur)
		if err != nil {
			return "", err
		}
		if !ok {
			break
		}
		chain = append(chain, outer)
		cur = outer
	}

	var b strings.Builder
	for i := len(chain) - 1; i >= 0; i-- {
		if i != len(chain)-1 {
			parent := chain[i+1]
			pkg, err := isPackage(ctx, parent)
			if err != nil {
				return "", err
			}
			if pkg {
				b.WriteByte('.')
			} else {
				b.WriteByte(':')
			}
		}
		name, err := readName(ctx, resolver, chain[i])
		if err != nil {
			return "", err
		}
		b.WriteString(name)
	}
	return b.String(), nil
}
