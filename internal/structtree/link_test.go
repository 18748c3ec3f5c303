package structtree

import (
	"testing"

	"github.com/sumbad/web2pdf/internal/pdfobj"
)

func TestRemoveOBJRFromLink_WithTextualContent(t *testing.T) {
	doc := pdfobj.NewDocument()

	annotID := doc.Add(pdfobj.Dict{pdfobj.Name("Subtype"): pdfobj.Name("Link")})
	objrID := doc.Add(pdfobj.Dict{
		pdfobj.Name("Type"): pdfobj.Name("OBJR"),
		pdfobj.Name("Obj"):  pdfobj.Reference(annotID),
	})
	linkID := doc.Add(pdfobj.Dict{
		pdfobj.Name("Type"): pdfobj.Name("StructElem"),
		pdfobj.Name("S"):    pdfobj.Name("Link"),
		pdfobj.Name("K"):    pdfobj.Array{pdfobj.Integer(5), pdfobj.Reference(objrID)},
	})

	changed := RemoveOBJRFromLink(doc, linkID)
	if !changed {
		t.Fatalf("expected RemoveOBJRFromLink to report a change")
	}

	dict, _ := doc.DereferenceDict(pdfobj.Reference(linkID))
	kids := pdfobj.AsArrayOrSingle(dict[pdfobj.Name("K")])
	for _, k := range kids {
		if isOBJR(doc, k) {
			t.Errorf("OBJR child survived sanitize: %#v", k)
		}
	}
	if len(kids) != 1 {
		t.Fatalf("expected exactly the MCID to remain, got %#v", kids)
	}
}

func TestRemoveOBJRFromLink_OBJROnlyLeftIntact(t *testing.T) {
	doc := pdfobj.NewDocument()

	annotID := doc.Add(pdfobj.Dict{pdfobj.Name("Subtype"): pdfobj.Name("Link")})
	objrID := doc.Add(pdfobj.Dict{
		pdfobj.Name("Type"): pdfobj.Name("OBJR"),
		pdfobj.Name("Obj"):  pdfobj.Reference(annotID),
	})
	linkID := doc.Add(pdfobj.Dict{
		pdfobj.Name("Type"): pdfobj.Name("StructElem"),
		pdfobj.Name("S"):    pdfobj.Name("Link"),
		pdfobj.Name("K"):    pdfobj.Reference(objrID),
	})

	changed := RemoveOBJRFromLink(doc, linkID)
	if changed {
		t.Fatalf("OBJR-only link should be left untouched")
	}

	dict, _ := doc.DereferenceDict(pdfobj.Reference(linkID))
	if _, ok := dict[pdfobj.Name("K")]; !ok {
		t.Fatalf("K should not have been removed from an untouched link")
	}
}

func TestHasTextualContent_RecursesThroughDescendants(t *testing.T) {
	doc := pdfobj.NewDocument()

	leafID := doc.Add(pdfobj.Dict{
		pdfobj.Name("Type"): pdfobj.Name("StructElem"),
		pdfobj.Name("S"):    pdfobj.Name("Span"),
	}) // no K at all: implicit MCID leaf

	parentID := doc.Add(pdfobj.Dict{
		pdfobj.Name("Type"): pdfobj.Name("StructElem"),
		pdfobj.Name("S"):    pdfobj.Name("Link"),
		pdfobj.Name("K"):    pdfobj.Reference(leafID),
	})

	if !HasTextualContent(doc, parentID) {
		t.Errorf("expected textual content via a no-K descendant")
	}
}
