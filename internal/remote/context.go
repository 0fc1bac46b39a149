// Package remote implements the typed remote-pointer / remote-cursor layer:
// an immutable cursor value pairing a typed remote address with everything
// needed to dereference it — a shared MemoryReader,
// the name-pool address, and the layout registry — without threading three
// parameters through every call.
//
// Grounded on internal/gocore's "region" idea (a typed view over
// a core.Address, used throughout internal/gocore/type.go and process.go):
// this package generalizes that to a phantom-typed, generic cursor instead
// of one concrete region struct, since here the set of decodable shapes
// (arrays, sparse arrays, hash sets, interned names, structs-by-registry) is
// the whole point rather than a fixed handful of Go runtime types.
package remote

import (
	"github.com/trumank/meatloaf/core"
	"github.com/trumank/meatloaf/internal/layout"
)

// Addr is a remote address. It is exactly core.Address; the alias exists so
// callers of this package don't need to import core directly for the common
// case of holding an address.
type Addr = core.Address

// Context carries everything a cursor needs to dereference itself: a shared
// reader (normally a *core.PageCache), the name pool's base address, and
// the layout registry plus the engine version to look struct offsets up
// under. Contexts are shared by reference across every cursor created
// during one dump.
type Context struct {
	Reader       core.MemoryReader
	NamePoolAddr Addr
	Layout       *layout.Registry
	Version      layout.EngineVersion
}

// OffsetOf looks up a field offset for the context's engine version. It is
// how every decoder in this module learns an engine struct's field offsets.
// The fixed layouts of the container templates and the name pool are
// constants in internal/containers and internal/names, not registry data.
func (c *Context) OffsetOf(structName, fieldName string) (uint32, error) {
	return c.Layout.OffsetOf(c.Version, structName, fieldName)
}

// SizeOf looks up a struct's registered size for the context's engine version.
func (c *Context) SizeOf(structName string) (uint32, error) {
	return c.Layout.SizeOf(c.Version, structName)
}

// Stride looks up a registered per-item stride (e.g. FUObjectItem) for the
// context's engine version.
func (c *Context) Stride(name string) (uint32, error) {
	return c.Layout.Stride(c.Version, name)
}
