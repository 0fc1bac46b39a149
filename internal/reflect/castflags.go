// Package reflect implements the reflection walker and property value
// reader: enumerating the target's object array, classifying each object
// by its class' cast-flag bitfield, decoding struct/class/function/enum
// metadata, and for classes, recursively decoding the class default
// object's property values.
//
// Grounded on internal/gocore's object enumeration
// (object.go's heapTable walk over a chunked structure) for the
// chunked-array traversal shape, and on this module's internal/remote and
// internal/containers for every typed read.
package reflect

// CastFlags is the 64-bit EClassCastFlags bitfield tagging a class or
// field-class with its concrete kind and every base kind it also
// satisfies: a single value carries flags for all parent categories.
type CastFlags uint64

// Has reports whether all bits of flag are set in f.
func (f CastFlags) Has(flag CastFlags) bool {
	return f&flag == flag
}

// Cast-flag bit values for the kinds this package dispatches on, plus a few
// base-category bits (CastUField, CastUStruct, CastFNumericProperty,
// CastFMulticastDelegateProperty, CastFObjectPropertyBase) that no dispatch
// arm tests. Values match the engine's EClassCastFlags enumeration; its
// other bits are omitted.
const (
	CastUField        CastFlags = 1 << 0
	CastFInt8Property  CastFlags = 1 << 1
	CastUEnum          CastFlags = 1 << 2
	CastUStruct        CastFlags = 1 << 3
	CastUScriptStruct  CastFlags = 1 << 4
	CastUClass         CastFlags = 1 << 5
	CastFByteProperty  CastFlags = 1 << 6
	CastFIntProperty   CastFlags = 1 << 7
	CastFFloatProperty CastFlags = 1 << 8
	CastFUInt64Property CastFlags = 1 << 9
	CastFClassProperty CastFlags = 1 << 10
	CastFUInt32Property CastFlags = 1 << 11
	CastFInterfaceProperty CastFlags = 1 << 12
	CastFNameProperty  CastFlags = 1 << 13
	CastFStrProperty   CastFlags = 1 << 14
	CastFProperty      CastFlags = 1 << 15
	CastFObjectProperty CastFlags = 1 << 16
	CastFBoolProperty  CastFlags = 1 << 17
	CastFUInt16Property CastFlags = 1 << 18
	CastUFunction      CastFlags = 1 << 19
	CastFStructProperty CastFlags = 1 << 20
	CastFArrayProperty CastFlags = 1 << 21
	CastFInt64Property CastFlags = 1 << 22
	CastFDelegateProperty CastFlags = 1 << 23
	CastFNumericProperty CastFlags = 1 << 24
	CastFMulticastDelegateProperty CastFlags = 1 << 25
	CastFObjectPropertyBase CastFlags = 1 << 26
	CastFWeakObjectProperty CastFlags = 1 << 27
	CastFLazyObjectProperty CastFlags = 1 << 28
	CastFSoftObjectProperty CastFlags = 1 << 29
	CastFTextProperty  CastFlags = 1 << 30
	CastFInt16Property CastFlags = 1 << 31
	CastFDoubleProperty CastFlags = 1 << 32
	CastFSoftClassProperty CastFlags = 1 << 33
	CastUPackage       CastFlags = 1 << 34
	CastFMapProperty   CastFlags = 1 << 46
	CastFSetProperty   CastFlags = 1 << 47
	CastFEnumProperty  CastFlags = 1 << 48
	CastFMulticastInlineDelegateProperty CastFlags = 1 << 50
	CastFMulticastSparseDelegateProperty CastFlags = 1 << 51
	CastFFieldPathProperty CastFlags = 1 << 52
	CastFOptionalProperty CastFlags = 1 << 56
)
