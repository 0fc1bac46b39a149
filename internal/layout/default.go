package layout

// V1 is a representative engine version used by this repo's tests and as a
// documented example of what a real Resolver-fed registry looks like. Real
// per-game offsets are supplied by the caller; nothing in this package or
// internal/reflect depends on these particular numbers.
var V1 = EngineVersion{Major: 4, Minor: 27, Patch: 2}

// NewDefaultRegistry returns a Registry pre-populated for V1 with a 64-bit,
// natural-alignment layout of the structs RequiredStructs names. Offsets
// follow the common public understanding of the engine's object model
// (UObjectBase leads with vtable+flags+index+name+class+outer, UStruct
// extends UField with super/children/properties, and so on); a production
// deployment overrides these per detected build via Registry.Override.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(V1, map[string]StructLayout{
		"UObjectBase": {Size: 0x28, Members: map[string]uint32{
			"VTable":        0x00,
			"ObjectFlags":   0x08,
			"InternalIndex": 0x0c,
			"ClassPrivate":  0x10,
			"NamePrivate":   0x18, // FName, 8 bytes (entry_index+number)
			"OuterPrivate":  0x20,
		}},
		"UField": {Size: 0x30, Members: map[string]uint32{
			"Next": 0x28,
		}},
		"UStruct": {Size: 0x50, Members: map[string]uint32{
			"SuperStruct":     0x30,
			"Children":        0x38,
			"ChildProperties": 0x40,
			"PropertiesSize":  0x48,
			"MinAlignment":    0x4c,
		}},
		"UClass": {Size: 0xd0, Members: map[string]uint32{
			"ClassFlags":         0x50,
			"ClassCastFlags":     0x54,
			"ClassDefaultObject": 0x90,
		}},
		"UScriptStruct": {Size: 0x58, Members: map[string]uint32{
			"StructFlags": 0x50,
		}},
		"UFunction": {Size: 0x90, Members: map[string]uint32{
			"FunctionFlags": 0x50,
			"Func":          0x88,
		}},
		"UEnum": {Size: 0x50, Members: map[string]uint32{
			"CppType": 0x30, // FString: 16-byte heap array header
			"Names":   0x40,
		}},
		"FField": {Size: 0x30, Members: map[string]uint32{
			"ClassPrivate": 0x00,
			"Next":         0x08,
			"NamePrivate":  0x10,
			"FlagsPrivate": 0x18,
		}},
		"FFieldClass": {Size: 0x20, Members: map[string]uint32{
			"Name":      0x00,
			"Id":        0x08,
			"CastFlags": 0x10,
		}},
		"FProperty": {Size: 0x78, Members: map[string]uint32{
			"ArrayDim":        0x30,
			"ElementSize":     0x34,
			"PropertyFlags":   0x38,
			"Offset_Internal": 0x4c,
		}},
		"FBoolProperty": {Size: 0x80, Members: map[string]uint32{
			"FieldSize":  0x78,
			"ByteOffset": 0x79,
			"ByteMask":   0x7a,
			"FieldMask":  0x7b,
		}},
		"FObjectPropertyBase": {Size: 0x80, Members: map[string]uint32{
			"PropertyClass": 0x78,
		}},
		"FArrayProperty": {Size: 0x80, Members: map[string]uint32{
			"Inner": 0x78,
		}},
		"FStructProperty": {Size: 0x80, Members: map[string]uint32{
			"Struct": 0x78,
		}},
		"FMapProperty": {Size: 0x88, Members: map[string]uint32{
			"KeyProp":   0x78,
			"ValueProp": 0x80,
		}},
		"FSetProperty": {Size: 0x80, Members: map[string]uint32{
			"ElementProp": 0x78,
		}},
		"FEnumProperty": {Size: 0x88, Members: map[string]uint32{
			"UnderlyingProp": 0x78,
			"Enum":           0x80,
		}},
		"FByteProperty": {Size: 0x80, Members: map[string]uint32{
			"Enum": 0x78,
		}},
		"FClassProperty": {Size: 0x88, Members: map[string]uint32{
			"MetaClass": 0x80,
		}},
		"GUObjectArray": {Size: 0x30, Members: map[string]uint32{
			"Objects":     0x10,
			"NumElements": 0x18,
		}},
		"FUObjectItem": {Size: 0x18, Members: map[string]uint32{
			"Object":             0x00,
			"Flags":              0x08,
			"ClusterRootOrIndex": 0x0c,
			"SerialNumber":       0x10,
		}},
	}, map[string]uint32{
		"FUObjectItem": 0x18,
	}, DefaultNameHeaderLayout)
	return r
}
