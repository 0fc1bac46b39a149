package reflect

import (
	"testing"

	"github.com/trumank/meatloaf/internal/names"
	"github.com/trumank/meatloaf/snapshot"
)

// TestQualifiedPathSeparators checks a package, class and leaf object chain
// separated by "." after a package parent and ":" after a non-package
// parent.
func TestQualifiedPathSeparators(t *testing.T) {
	f := newFixture(t)
	resolver := names.NewResolver(f.ctx)

	pkgClass := f.newClassCastFlagsHolder(CastUPackage)
	pkg := f.newStruct(f.name("/Script/Engine"), pkgClass, 0)

	plainClass := f.newClassCastFlagsHolder(0)
	actor := f.newStruct(f.name("Actor"), plainClass, pkg)
	rootComponent := f.newStruct(f.name("RootComponent"), plainClass, actor)

	got, err := qualifiedPath(f.ctx, resolver, rootComponent)
	if err != nil {
		t.Fatal(err)
	}
	want := "/Script/Engine.Actor:RootComponent"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// TestWalkerSyntheticObjectTree checks a package with one class: both
// entries, their kinds, and outer-children wiring. Every object in it lies
// under /Script/, so the prefix filter drops nothing here.
func TestWalkerSyntheticObjectTree(t *testing.T) {
	f := newFixture(t)

	objectArray := f.alloc(0x30)
	chunksArray := f.alloc(8)
	stride := 0x18
	chunk := f.alloc(2 * stride)
	f.putRaw64(chunksArray, uint64(chunk))
	f.putPtr(objectArray, "GUObjectArray", "Objects", chunksArray)
	f.putU32(objectArray, "GUObjectArray", "NumElements", 2)

	pkgClass := f.newClassCastFlagsHolder(CastUPackage)
	pkg := f.newStruct(f.name("/Script/X"), pkgClass, 0)

	classClass := f.newClassCastFlagsHolder(CastUClass)
	class := f.newStruct(f.name("C"), classClass, pkg)

	itemOff := int64(f.off("FUObjectItem", "Object"))
	f.putRaw64(chunk.Add(itemOff), uint64(pkg))
	f.putRaw64(chunk.Add(int64(stride)+itemOff), uint64(class))

	w := NewWalker(f.ctx, objectArray)
	snap, err := w.Dump()
	if err != nil {
		t.Fatal(err)
	}

	if len(snap.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %v", len(snap.Entries), snap.Paths())
	}
	pkgEntry, ok := snap.Entries["/Script/X"]
	if !ok {
		t.Fatalf("missing /Script/X entry: %v", snap.Paths())
	}
	if pkgEntry.Kind != snapshot.KindPackage {
		t.Fatalf("expected Package kind, got %s", pkgEntry.Kind)
	}
	if len(pkgEntry.Package.Children) != 1 || pkgEntry.Package.Children[0] != "/Script/X.C" {
		t.Fatalf("expected children [/Script/X.C], got %v", pkgEntry.Package.Children)
	}
	classEntry, ok := snap.Entries["/Script/X.C"]
	if !ok {
		t.Fatalf("missing /Script/X.C entry: %v", snap.Paths())
	}
	if classEntry.Kind != snapshot.KindClass {
		t.Fatalf("expected Class kind, got %s", classEntry.Kind)
	}
}
