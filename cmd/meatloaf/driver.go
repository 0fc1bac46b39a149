// Command meatloaf wires a MemoryReader to a Resolver, runs the reflection
// walker, and serializes the resulting Snapshot. Grounded on
// cmd/viewcore/main.go (flag-parsed top-level command dispatch) and
// cmd/viewcore/objref.go (cobra-flagged subcommand), generalized from
// Go-core inspection to the engine reflection dump this module implements.
package main

import (
	"fmt"

	"github.com/trumank/meatloaf/core"
	"github.com/trumank/meatloaf/internal/layout"
	"github.com/trumank/meatloaf/internal/reflect"
	"github.com/trumank/meatloaf/internal/remote"
	"github.com/trumank/meatloaf/internal/resolver"
	"github.com/trumank/meatloaf/snapshot"
)

// Options configures one Driver run. VersionOverride forces the layout
// registry version instead of trusting whatever the Resolver reports, for
// engine forks with drifted offsets.
type Options struct {
	VersionOverride *layout.EngineVersion
}

// Driver ties a MemoryReader, a Resolver and a LayoutRegistry together and
// exposes the operations the CLI subcommands need.
type Driver struct {
	reader   core.MemoryReader
	resolver resolver.Resolver
	registry *layout.Registry
	opts     Options
}

// New constructs a Driver. registry is typically layout.NewDefaultRegistry()
// or a caller-supplied registry built from a detected engine build.
func New(reader core.MemoryReader, res resolver.Resolver, registry *layout.Registry, opts Options) *Driver {
	return &Driver{reader: reader, resolver: res, registry: registry, opts: opts}
}

// resolveTargets runs the Resolver and applies any VersionOverride.
func (d *Driver) resolveTargets() (resolver.Targets, error) {
	targets, err := d.resolver.Resolve(d.reader)
	if err != nil {
		return resolver.Targets{}, fmt.Errorf("meatloaf: resolving dump targets: %w", err)
	}
	if d.opts.VersionOverride != nil {
		targets.Version = *d.opts.VersionOverride
	}
	return targets, nil
}

// newContext resolves targets and builds the shared remote.Context a walk
// or a one-off read/resolve runs against.
func (d *Driver) newContext() (*remote.Context, resolver.Targets, error) {
	targets, err := d.resolveTargets()
	if err != nil {
		return nil, resolver.Targets{}, err
	}
	cache := core.NewPageCache(d.reader)
	ctx := &remote.Context{
		Reader:       cache,
		NamePoolAddr: targets.NamePool,
		Layout:       d.registry,
		Version:      targets.Version,
	}
	return ctx, targets, nil
}

// Dump runs the full reflection walk and returns the finished Snapshot.
func (d *Driver) Dump() (*snapshot.Snapshot, error) {
	ctx, targets, err := d.newContext()
	if err != nil {
		return nil, err
	}
	w := reflect.NewWalker(ctx, targets.ObjectArray)
	return w.Dump()
}

// Resolve runs just the Resolver, for the resolve-only subcommand — useful
// for debugging a new engine build without running the full walk.
func (d *Driver) Resolve() (resolver.Targets, error) {
	return d.resolveTargets()
}

// Read returns length bytes at addr, through a fresh PageCache over the
// same reader a dump would use.
func (d *Driver) Read(addr remote.Addr, length int) ([]byte, error) {
	cache := core.NewPageCache(d.reader)
	return cache.ReadMemory(addr, length)
}
