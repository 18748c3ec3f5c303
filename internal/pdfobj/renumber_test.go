package pdfobj

import "testing"

func TestRenumberObjects_ShiftsIdsAndInternalReferences(t *testing.T) {
	doc := NewDocument()
	doc.Set(ObjectID{Num: 5}, Dict{
		Name("Type"): Name("Catalog"),
		Name("Pages"): Reference{Num: 6},
	})
	doc.Set(ObjectID{Num: 6}, Dict{
		Name("Type"): Name("Pages"),
		Name("Kids"): Array{Reference{Num: 7}},
	})
	doc.Set(ObjectID{Num: 7}, Dict{
		Name("Type"):   Name("Page"),
		Name("Parent"): Reference{Num: 6},
	})
	doc.Trailer[Name("Root")] = Reference{Num: 5}

	offset := RenumberObjects(doc, 1)
	if offset != -4 {
		t.Fatalf("expected offset -4 (min id 5 -> base 1), got %d", offset)
	}

	catDict, ok := doc.DereferenceDict(Reference(doc.Trailer[Name("Root")].(Reference)))
	if !ok {
		t.Fatalf("catalog not reachable via renumbered trailer Root")
	}
	if name, _ := AsName(catDict[Name("Type")]); name != "Catalog" {
		t.Fatalf("expected renumbered catalog, got %#v", catDict)
	}

	pagesRef, ok := catDict[Name("Pages")].(Reference)
	if !ok || pagesRef.Num != 2 {
		t.Fatalf("expected Pages reference shifted to 2, got %#v", catDict[Name("Pages")])
	}

	pagesDict, _ := doc.DereferenceDict(pagesRef)
	kids := AsArrayOrSingle(pagesDict[Name("Kids")])
	if len(kids) != 1 {
		t.Fatalf("expected 1 kid, got %d", len(kids))
	}
	kidRef, ok := kids[0].(Reference)
	if !ok || kidRef.Num != 3 {
		t.Fatalf("expected page kid shifted to 3, got %#v", kids[0])
	}

	pageDict, _ := doc.DereferenceDict(kidRef)
	parentRef, ok := pageDict[Name("Parent")].(Reference)
	if !ok || parentRef.Num != 2 {
		t.Fatalf("expected page Parent shifted to 2, got %#v", pageDict[Name("Parent")])
	}

	if doc.MaxID != 3 {
		t.Errorf("expected MaxID 3 after renumber, got %d", doc.MaxID)
	}
}

func TestRenumberObjects_NoopWhenAlreadyAtBase(t *testing.T) {
	doc := NewDocument()
	doc.Set(ObjectID{Num: 1}, Dict{Name("Type"): Name("Catalog")})
	doc.Trailer[Name("Root")] = Reference{Num: 1}

	offset := RenumberObjects(doc, 1)
	if offset != 0 {
		t.Fatalf("expected offset 0 when already at base, got %d", offset)
	}
	if _, ok := doc.Get(ObjectID{Num: 1}); !ok {
		t.Errorf("object at id 1 should be untouched")
	}
}

func TestRenumberObjects_EmptyDocument(t *testing.T) {
	doc := NewDocument()
	if offset := RenumberObjects(doc, 5); offset != 0 {
		t.Errorf("expected offset 0 for an empty document, got %d", offset)
	}
}
