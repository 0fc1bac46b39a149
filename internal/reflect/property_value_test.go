package reflect

import (
	"testing"

	"github.com/trumank/meatloaf/internal/names"
)

// TestMapPropOrderingClassBeforeObject checks that a property class
// carrying both CastFClassProperty and CastFObjectProperty maps as Class,
// not Object.
func TestMapPropOrderingClassBeforeObject(t *testing.T) {
	f := newFixture(t)
	resolver := names.NewResolver(f.ctx)

	class := f.newFieldClassCastFlagsHolder(CastFClassProperty | CastFObjectProperty)
	prop := f.newProperty(class, f.name("Field"), 0, 1, 8, 0)

	got, err := mapProp(f.ctx, resolver, propertyNode{addr: prop, class: CastFClassProperty | CastFObjectProperty})
	if err != nil {
		t.Fatal(err)
	}
	if got.Tag != "Class" {
		t.Fatalf("got tag %q, want Class", got.Tag)
	}
}

// TestMapPropOrderingSoftClassBeforeSoftObject checks that a property
// carrying both CastFSoftClassProperty and CastFSoftObjectProperty maps as
// SoftClass, not SoftObject.
func TestMapPropOrderingSoftClassBeforeSoftObject(t *testing.T) {
	f := newFixture(t)
	resolver := names.NewResolver(f.ctx)

	class := f.newFieldClassCastFlagsHolder(CastFSoftClassProperty | CastFSoftObjectProperty)
	prop := f.newProperty(class, f.name("Field"), 0, 1, 8, 0)

	got, err := mapProp(f.ctx, resolver, propertyNode{addr: prop, class: CastFSoftClassProperty | CastFSoftObjectProperty})
	if err != nil {
		t.Fatal(err)
	}
	if got.Tag != "SoftClass" {
		t.Fatalf("got tag %q, want SoftClass", got.Tag)
	}
}

// TestReadPropertyValuesInlineInt checks a single Int32 property read
// straight out of CDO bytes.
func TestReadPropertyValuesInlineInt(t *testing.T) {
	f := newFixture(t)
	resolver := names.NewResolver(f.ctx)

	fieldClass := f.newFieldClassCastFlagsHolder(CastFIntProperty | CastFProperty)
	prop := f.newProperty(fieldClass, f.name("Health"), 8, 1, 4, 0)

	structClass := f.newClassCastFlagsHolder(0)
	class := f.newStruct(f.name("C"), structClass, 0)
	f.setChildProperties(class, prop)

	cdo := f.alloc(0x20)
	f.data[int64(cdo)+8] = 0x2a
	f.data[int64(cdo)+9] = 0x00
	f.data[int64(cdo)+10] = 0x00
	f.data[int64(cdo)+11] = 0x00

	values, err := readPropertyValues(f.ctx, resolver, class, cdo)
	if err != nil {
		t.Fatal(err)
	}
	v, ok := values["Health"]
	if !ok {
		t.Fatalf("missing Health value, got %v", values)
	}
	if v.Tag != "Int" || v.Int != 42 {
		t.Fatalf("got %+v, want Int 42", v)
	}
}

// TestReadPropertyValuesBoolBit checks a packed bool property decoded via
// ByteOffset/ByteMask against a shared byte.
func TestReadPropertyValuesBoolBit(t *testing.T) {
	f := newFixture(t)
	resolver := names.NewResolver(f.ctx)

	fieldClass := f.newFieldClassCastFlagsHolder(CastFBoolProperty | CastFProperty)
	prop := f.newProperty(fieldClass, f.name("bEnabled"), 0, 1, 1, 0)
	f.putU8(prop, "FBoolProperty", "FieldSize", 1)
	f.putU8(prop, "FBoolProperty", "ByteOffset", 3)
	f.putU8(prop, "FBoolProperty", "ByteMask", 0x04)

	structClass := f.newClassCastFlagsHolder(0)
	class := f.newStruct(f.name("C"), structClass, 0)
	f.setChildProperties(class, prop)

	cdoTrue := f.alloc(0x10)
	f.data[int64(cdoTrue)+3] = 0x06
	valuesTrue, err := readPropertyValues(f.ctx, resolver, class, cdoTrue)
	if err != nil {
		t.Fatal(err)
	}
	vTrue, ok := valuesTrue["bEnabled"]
	if !ok || vTrue.Tag != "Bool" || !vTrue.Bool {
		t.Fatalf("got %+v, want Bool true", vTrue)
	}

	cdoFalse := f.alloc(0x10)
	f.data[int64(cdoFalse)+3] = 0x03
	valuesFalse, err := readPropertyValues(f.ctx, resolver, class, cdoFalse)
	if err != nil {
		t.Fatal(err)
	}
	vFalse, ok := valuesFalse["bEnabled"]
	if !ok || vFalse.Tag != "Bool" || vFalse.Bool {
		t.Fatalf("got %+v, want Bool false", vFalse)
	}
}

// TestReadPropertyValuesEnumResolution checks that an enum-typed property
// resolves its underlying int against the enum's names table, falling back
// to the raw int when nothing matches.
func TestReadPropertyValuesEnumResolution(t *testing.T) {
	f := newFixture(t)
	resolver := names.NewResolver(f.ctx)

	enumClass := f.newClassCastFlagsHolder(CastUEnum)
	enum := f.newStruct(f.name("EColor"), enumClass, 0)

	type pair struct {
		name  string
		value int64
	}
	pairs := []pair{{"A", 0}, {"B", 1}, {"C", 5}}
	pairSize := 16
	namesData := f.alloc(len(pairs) * pairSize)
	for i, p := range pairs {
		n := f.name(p.name)
		entryAddr := namesData.Add(int64(i * pairSize))
		f.putRaw64(entryAddr, uint64(n.EntryIndex)|uint64(n.Number)<<32)
		f.data[int64(entryAddr)+8] = byte(p.value)
	}
	f.putArrayHeader(enum, "UEnum", "Names", namesData, uint32(len(pairs)), uint32(len(pairs)))

	underlyingClass := f.newFieldClassCastFlagsHolder(CastFIntProperty)
	underlyingProp := f.newProperty(underlyingClass, f.name("UnderlyingValue"), 0, 1, 4, 0)

	enumFieldClass := f.newFieldClassCastFlagsHolder(CastFEnumProperty | CastFProperty)
	enumProp := f.newProperty(enumFieldClass, f.name("Color"), 0, 1, 4, 0)
	f.putPtr(enumProp, "FEnumProperty", "UnderlyingProp", underlyingProp)
	f.putPtr(enumProp, "FEnumProperty", "Enum", enum)

	structClass := f.newClassCastFlagsHolder(0)
	class := f.newStruct(f.name("C"), structClass, 0)
	f.setChildProperties(class, enumProp)

	cdoMatch := f.alloc(0x10)
	f.data[int64(cdoMatch)] = 5
	valuesMatch, err := readPropertyValues(f.ctx, resolver, class, cdoMatch)
	if err != nil {
		t.Fatal(err)
	}
	vMatch, ok := valuesMatch["Color"]
	if !ok || vMatch.Tag != "Enum" || vMatch.Str != "C" {
		t.Fatalf("got %+v, want Enum \"C\"", vMatch)
	}

	cdoNoMatch := f.alloc(0x10)
	f.data[int64(cdoNoMatch)] = 3
	valuesNoMatch, err := readPropertyValues(f.ctx, resolver, class, cdoNoMatch)
	if err != nil {
		t.Fatal(err)
	}
	vNoMatch, ok := valuesNoMatch["Color"]
	if !ok || vNoMatch.Tag != "Enum" || vNoMatch.Int != 3 {
		t.Fatalf("got %+v, want Enum int 3", vNoMatch)
	}
}
