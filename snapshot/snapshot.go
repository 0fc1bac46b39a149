// Package snapshot defines the outbound reflection-dump schema: an ordered
// mapping from qualified path to a tagged record, plus JSON serialization.
// The exact wire format is explicitly an external concern ("the output
// data schema and its serialization" is out of scope for the core); this
// package is that external concern's home, kept separate from
// internal/reflect so the walker never depends on a particular
// serialization library.
package snapshot

import (
	"encoding/json"
	"sort"
)

// Kind tags which variant of Entry a path resolves to. Six concrete kinds
// are ever emitted by the walker's classification arms; "Struct" names the
// fields Class, Function and ScriptStruct all embed, not a seventh
// standalone kind — no classification arm ever emits a bare UStruct
// record.
type Kind string

const (
	KindClass        Kind = "Class"
	KindScriptStruct Kind = "ScriptStruct"
	KindFunction     Kind = "Function"
	KindEnum         Kind = "Enum"
	KindPackage      Kind = "Package"
	KindObject       Kind = "Object"
)

// Object is the field set every entry carries: outer path, class path,
// children.
type Object struct {
	Outer    string   `json:"outer,omitempty"`
	Class    string   `json:"class"`
	Children []string `json:"children"`
}

// PropertyType is the structural (schema-only) description of one
// property's type, produced by mapProp.
type PropertyType struct {
	Tag string `json:"tag"`

	// Bool
	FieldSize  uint8 `json:"field_size,omitempty"`
	ByteOffset uint8 `json:"byte_offset,omitempty"`
	ByteMask   uint8 `json:"byte_mask,omitempty"`
	FieldMask  uint8 `json:"field_mask,omitempty"`

	// Struct
	Struct string `json:"struct,omitempty"`

	// Array / Enum(newer) / Optional / Map(key) / Set(key)
	Inner *PropertyType `json:"inner,omitempty"`

	// Enum
	Enum string `json:"enum,omitempty"`

	// Map
	Value *PropertyType `json:"value,omitempty"`

	// Object / WeakObject / SoftObject / LazyObject / Interface
	PropertyClass string `json:"property_class,omitempty"`

	// Class / SoftClass
	MetaClass string `json:"meta_class,omitempty"`

	// Delegate / Multicast*
	SignatureFunction string `json:"signature_function,omitempty"`
}

// Property is one decoded property descriptor: the mapped type plus the
// shared FProperty fields.
type Property struct {
	Name      string       `json:"name"`
	Offset    uint32       `json:"offset"`
	ArrayDim  uint32       `json:"array_dim"`
	Size      uint32       `json:"size"`
	Flags     uint64       `json:"flags"`
	Type      PropertyType `json:"type"`
}

// Value is a decoded CDO property value. Exactly one of the typed fields is
// meaningful, selected by Tag; Present is false when the field was omitted
// (an unsupported value kind, or array_dim>1 with any absent element).
type Value struct {
	Tag     string  `json:"tag"`
	Present bool    `json:"-"`
	Int     int64   `json:"int,omitempty"`
	Uint    uint64  `json:"uint,omitempty"`
	Float   float64 `json:"float,omitempty"`
	Bool    bool    `json:"bool,omitempty"`
	Str     string  `json:"str,omitempty"`
	Object  string  `json:"object,omitempty"`
	Struct  map[string]Value `json:"struct,omitempty"`
	Array   []Value `json:"array,omitempty"`
}

// StructFields is the field set shared by Class, Function and ScriptStruct:
// a UStruct extends Object with super_struct, a property list, properties
// size and min alignment.
type StructFields struct {
	Object
	SuperStruct    string     `json:"super_struct,omitempty"`
	Properties     []Property `json:"properties"`
	PropertiesSize uint32     `json:"properties_size"`
	MinAlignment   uint32     `json:"min_alignment"`
}

// Class is a UClass entry: a struct plus class flags and CDO property
// values.
type Class struct {
	StructFields
	ClassFlags         uint32           `json:"class_flags"`
	ClassCastFlags     uint64           `json:"class_cast_flags"`
	ClassDefaultObject string           `json:"class_default_object,omitempty"`
	PropertyValues     map[string]Value `json:"property_values,omitempty"`
}

// ScriptStruct is a UScriptStruct entry.
type ScriptStruct struct {
	StructFields
	StructFlags uint32 `json:"struct_flags"`
}

// Function is a UFunction entry.
type Function struct {
	StructFields
	FunctionFlags uint32 `json:"function_flags"`
	Func          uint64 `json:"func"`
}

// EnumName is one (name, value) pair of a UEnum's names table.
type EnumName struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// Enum is a UEnum entry.
type Enum struct {
	Object
	CppType string     `json:"cpp_type"`
	Names   []EnumName `json:"names"`
}

// Package is a bare package entry.
type Package struct {
	Object
}

// Entry is one tagged record in a Snapshot. Exactly one of the Kind-named
// fields is populated, matching Kind.
type Entry struct {
	Kind         Kind
	Class        *Class
	ScriptStruct *ScriptStruct
	Function     *Function
	Enum         *Enum
	Package      *Package
	Object       *Object
}

// Snapshot is the complete reflection dump: an ordered mapping from
// qualified path to Entry. Paths are unique: the path→entry mapping is
// injective.
type Snapshot struct {
	Entries map[string]Entry
}

// NewSnapshot returns an empty snapshot ready for population by the walker.
func NewSnapshot() *Snapshot {
	return &Snapshot{Entries: make(map[string]Entry)}
}

// Paths returns every path in the snapshot, sorted, for deterministic
// iteration (e.g. serialization, testing).
func (s *Snapshot) Paths() []string {
	paths := make([]string, 0, len(s.Entries))
	for p := range s.Entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// MarshalJSON flattens the active variant's fields alongside a "kind"
// discriminator. Variant structs are marshaled independently and merged as
// raw JSON objects rather than via embedding, to avoid encoding/json's
// promoted-field ambiguity rules across the six variant types.
func (e Entry) MarshalJSON() ([]byte, error) {
	var variant any
	switch e.Kind {
	case KindClass:
		variant = e.Class
	case KindScriptStruct:
		variant = e.ScriptStruct
	case KindFunction:
		variant = e.Function
	case KindEnum:
		variant = e.Enum
	case KindPackage:
		variant = e.Package
	case KindObject:
		variant = e.Object
	}

	fields := map[string]json.RawMessage{}
	if variant != nil {
		raw, err := json.Marshal(variant)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
	}
	kindRaw, err := json.Marshal(e.Kind)
	if err != nil {
		return nil, err
	}
	fields["kind"] = kindRaw
	return json.Marshal(fields)
}

// MarshalJSON serializes the snapshot as an object keyed by qualified path.
// encoding/json always emits map keys in sorted order, so this is already
// reproducible without an intermediate ordered copy.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Entries)
}
