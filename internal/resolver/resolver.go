// Package resolver defines the capability this module deliberately places
// out of scope: image parsing and pattern-based location of the
// object-array base, the name-pool base, and the engine-version tag.
// Nothing in this module
// performs signature scanning; a dump is driven by whatever Resolver
// implementation the caller supplies, with Static covering the common case
// of addresses already known (from a debugger, a prior scan, or manual
// configuration).
package resolver

import (
	"github.com/trumank/meatloaf/core"
	"github.com/trumank/meatloaf/internal/layout"
	"github.com/trumank/meatloaf/internal/remote"
)

// Targets is the three values a dump needs before the walk can start: the
// object-array base, the name-pool base, and the engine-version tag the
// layout registry is keyed by.
type Targets struct {
	ObjectArray remote.Addr
	NamePool    remote.Addr
	Version     layout.EngineVersion
}

// Resolver locates Targets within an address space. Implementations may
// read reader to pattern-scan for the globals; Static below needs no
// reads at all.
type Resolver interface {
	Resolve(reader core.MemoryReader) (Targets, error)
}

// Static is a Resolver over addresses already known by the caller —
// e.g. supplied on the command line, or recovered from a prior run's
// output. It performs no scanning and never fails.
type Static struct {
	Targets Targets
}

// Resolve returns s.Targets unconditionally.
func (s Static) Resolve(core.MemoryReader) (Targets, error) {
	return s.Targets, nil
}
