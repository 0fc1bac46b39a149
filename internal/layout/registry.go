// Package layout implements the version-aware structure layout registry: a
// host-side table mapping an engine version plus a struct and field name to
// a byte offset. The registry never infers a
// layout; every offset comes from data supplied to Register, or from a
// caller override. A missing entry is a fatal, non-recoverable
// configuration error — the core never falls back to a guessed offset.
//
// Grounded on internal/gocore's Type/Field pair (type.go), which
// plays the analogous role for DWARF-derived Go types; here there is no
// DWARF, so the table is populated explicitly instead of read from debug
// info.
package layout

import (
	"errors"
	"fmt"
	"sync"
)

// ErrLayoutMissing is returned when the registry has no entry for a
// requested engine version, struct, or field.
var ErrLayoutMissing = errors.New("layout: unsupported engine version or struct")

// EngineVersion identifies one build of the target engine. The Resolver
// capability (out of scope) is expected to produce one of these per dump.
type EngineVersion struct {
	Major, Minor, Patch uint32
}

func (v EngineVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// StructLayout describes one struct's size and its named field offsets.
type StructLayout struct {
	Size    uint32
	Members map[string]uint32
}

// NameHeaderLayout describes the bit layout of the 2-byte header preceding
// an interned name's raw bytes in the name pool. The documented layout is
// WideBit=bit0, Len=header>>6; engines with
// "case-preserving" names are known to use a different layout, which is why
// this is data on the registry rather than a constant.
type NameHeaderLayout struct {
	WideBit  uint   // bit index (from LSB) that flags wide (UTF-16LE) encoding
	LenShift uint   // right-shift to recover the length from the header
}

// DefaultNameHeaderLayout is the commonly documented layout.
var DefaultNameHeaderLayout = NameHeaderLayout{WideBit: 0, LenShift: 6}

type versionEntry struct {
	structs    map[string]StructLayout
	strides    map[string]uint32
	nameHeader NameHeaderLayout
}

// Registry is a mapping engine-version -> struct-name -> field-name -> offset,
// plus per-version item strides (e.g. FUObjectItem, which is known to vary)
// and the name-pool header layout. Safe for concurrent reads; Register and
// Override take a write lock.
type Registry struct {
	mu       sync.RWMutex
	versions map[EngineVersion]*versionEntry
}

// NewRegistry returns an empty registry. Callers populate it with Register
// before any dump; RequiredStructs lists the minimum a dump needs.
func NewRegistry() *Registry {
	return &Registry{versions: make(map[EngineVersion]*versionEntry)}
}

// Register installs the layout data for one engine version, overwriting any
// prior registration for that exact version.
func (r *Registry) Register(v EngineVersion, structs map[string]StructLayout, strides map[string]uint32, nameHeader NameHeaderLayout) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.versions[v] = &versionEntry{structs: structs, strides: strides, nameHeader: nameHeader}
}

// Override replaces a single struct's single field offset for v, without
// disturbing the rest of that version's layout. Used when a caller knows a
// specific build's offsets have drifted from the registered default.
func (r *Registry) Override(v EngineVersion, structName, fieldName string, offset uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.versions[v]
	if !ok {
		return fmt.Errorf("layout: override %s.%s: %w: engine version %s not registered", structName, fieldName, ErrLayoutMissing, v)
	}
	s, ok := e.structs[structName]
	if !ok {
		s = StructLayout{Members: map[string]uint32{}}
	}
	if s.Members == nil {
		s.Members = map[string]uint32{}
	}
	s.Members[fieldName] = offset
	e.structs[structName] = s
	return nil
}

// OffsetOf returns the byte offset of fieldName within structName for
// engine version v.
func (r *Registry) OffsetOf(v EngineVersion, structName, fieldName string) (uint32, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.versions[v]
	if !ok {
		return 0, fmt.Errorf("layout: %w: engine version %s", ErrLayoutMissing, v)
	}
	s, ok := e.structs[structName]
	if !ok {
		return 0, fmt.Errorf("layout: %w: struct %s for engine version %s", ErrLayoutMissing, structName, v)
	}
	off, ok := s.Members[fieldName]
	if !ok {
		return 0, fmt.Errorf("layout: %w: field %s.%s for engine version %s", ErrLayoutMissing, structName, fieldName, v)
	}
	return off, nil
}

// SizeOf returns the registered size of structName for engine version v.
func (r *Registry) SizeOf(v EngineVersion, structName string) (uint32, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.versions[v]
	if !ok {
		return 0, fmt.Errorf("layout: %w: engine version %s", ErrLayoutMissing, v)
	}
	s, ok := e.structs[structName]
	if !ok {
		return 0, fmt.Errorf("layout: %w: struct %s for engine version %s", ErrLayoutMissing, structName, v)
	}
	return s.Size, nil
}

// Stride returns the registered per-item stride for name (e.g.
// "FUObjectItem") for engine version v. Item strides vary across engine
// versions and must never be hard-coded by a caller.
func (r *Registry) Stride(v EngineVersion, name string) (uint32, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.versions[v]
	if !ok {
		return 0, fmt.Errorf("layout: %w: engine version %s", ErrLayoutMissing, v)
	}
	s, ok := e.strides[name]
	if !ok {
		return 0, fmt.Errorf("layout: %w: stride %s for engine version %s", ErrLayoutMissing, name, v)
	}
	return s, nil
}

// NameHeader returns the interned-name header layout for engine version v,
// or the documented default if v has none registered explicitly.
func (r *Registry) NameHeader(v EngineVersion) NameHeaderLayout {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.versions[v]; ok {
		return e.nameHeader
	}
	return DefaultNameHeaderLayout
}

// RequiredStructs is the minimum set of struct names a registry must carry
// for a dump to proceed: the walker looks fields of each up through
// OffsetOf, the property-kind structs (FMapProperty, FEnumProperty, ...)
// only when a property of that kind occurs.
var RequiredStructs = []string{
	"UObjectBase", "UStruct", "UClass", "UScriptStruct", "UFunction", "UEnum",
	"FField", "FFieldClass", "FProperty", "FBoolProperty", "FObjectPropertyBase",
	"FArrayProperty", "FStructProperty", "FMapProperty", "FSetProperty",
	"FEnumProperty", "FByteProperty", "GUObjectArray", "FUObjectItem",
}
