package structtree

import (
	"testing"

	"github.com/sumbad/web2pdf/internal/pdfobj"
)

// buildPWithNonStruct builds the seed scenario from spec.md §8.4:
// P[ NonStruct[ MCID=3, Span->ref ] ] on page X.
func buildPWithNonStruct(t *testing.T) (doc *pdfobj.Document, pID, spanID, pageID pdfobj.ObjectID) {
	t.Helper()
	doc = pdfobj.NewDocument()

	pageID = doc.Add(pdfobj.Dict{pdfobj.Name("Type"): pdfobj.Name("Page")})

	spanID = doc.Add(pdfobj.Dict{
		pdfobj.Name("Type"): pdfobj.Name("StructElem"),
		pdfobj.Name("S"):    pdfobj.Name("Span"),
	})

	nonStructID := doc.Add(pdfobj.Dict{
		pdfobj.Name("Type"): pdfobj.Name("StructElem"),
		pdfobj.Name("S"):    pdfobj.Name("NonStruct"),
		pdfobj.Name("Pg"):   pdfobj.Reference(pageID),
		pdfobj.Name("K"):    pdfobj.Array{pdfobj.Integer(3), pdfobj.Reference(spanID)},
	})

	pID = doc.Add(pdfobj.Dict{
		pdfobj.Name("Type"): pdfobj.Name("StructElem"),
		pdfobj.Name("S"):    pdfobj.Name("P"),
		pdfobj.Name("K"):    pdfobj.Reference(nonStructID),
	})

	return doc, pID, spanID, pageID
}

func TestDissolveNonStruct_WrapsMCIDAndReparentsChild(t *testing.T) {
	doc, pID, spanID, pageID := buildPWithNonStruct(t)

	changed := DissolveNonStruct(doc, pID)
	if !changed {
		t.Fatalf("expected DissolveNonStruct to report a change")
	}

	pDict, ok := doc.DereferenceDict(pdfobj.Reference(pID))
	if !ok {
		t.Fatalf("P element missing after dissolve")
	}
	kids := pdfobj.AsArrayOrSingle(pDict[pdfobj.Name("K")])
	if len(kids) != 2 {
		t.Fatalf("expected 2 kids after dissolve, got %d: %#v", len(kids), kids)
	}

	mcr, ok := kids[0].(pdfobj.Dict)
	if !ok {
		t.Fatalf("expected first kid to be an MCR dict, got %T", kids[0])
	}
	if name, _ := pdfobj.AsName(mcr[pdfobj.Name("Type")]); name != "MCR" {
		t.Errorf("expected MCR type, got %q", name)
	}
	if mcid, _ := pdfobj.AsInt(mcr[pdfobj.Name("MCID")]); mcid != 3 {
		t.Errorf("expected MCID 3, got %d", mcid)
	}
	if pg, ok := mcr[pdfobj.Name("Pg")].(pdfobj.Reference); !ok || pdfobj.ObjectID(pg) != pageID {
		t.Errorf("expected MCR.Pg to reference page %v, got %#v", pageID, mcr[pdfobj.Name("Pg")])
	}

	spanRef, ok := kids[1].(pdfobj.Reference)
	if !ok || pdfobj.ObjectID(spanRef) != spanID {
		t.Fatalf("expected second kid to be a reference to the Span element")
	}

	spanDict, _ := doc.DereferenceDict(pdfobj.Reference(spanID))
	parentRef, ok := spanDict[pdfobj.Name("P")].(pdfobj.Reference)
	if !ok || pdfobj.ObjectID(parentRef) != pID {
		t.Errorf("expected Span's P to be reparented to %v, got %#v", pID, spanDict[pdfobj.Name("P")])
	}
}

func TestSanitize_IsIdempotent(t *testing.T) {
	doc, pID, _, _ := buildPWithNonStruct(t)

	catID := doc.Add(pdfobj.Dict{
		pdfobj.Name("Type"):           pdfobj.Name("Catalog"),
		pdfobj.Name("StructTreeRoot"): nil,
	})
	rootID := doc.Add(pdfobj.Dict{
		pdfobj.Name("Type"): pdfobj.Name("StructTreeRoot"),
		pdfobj.Name("K"):    pdfobj.Reference(pID),
	})
	catDict, _ := doc.DereferenceDict(pdfobj.Reference(catID))
	catDict[pdfobj.Name("StructTreeRoot")] = pdfobj.Reference(rootID)
	doc.Trailer[pdfobj.Name("Root")] = pdfobj.Reference(catID)

	Sanitize(doc)
	first := snapshotK(doc, pID)

	Sanitize(doc)
	second := snapshotK(doc, pID)

	if first != second {
		t.Errorf("sanitize is not idempotent: first=%q second=%q", first, second)
	}
}

func snapshotK(doc *pdfobj.Document, id pdfobj.ObjectID) string {
	dict, ok := doc.DereferenceDict(pdfobj.Reference(id))
	if !ok {
		return ""
	}
	kids := pdfobj.AsArrayOrSingle(dict[pdfobj.Name("K")])
	out := ""
	for _, k := range kids {
		out += objectLabel(k) + ";"
	}
	return out
}

func objectLabel(o pdfobj.Object) string {
	switch v := o.(type) {
	case pdfobj.Reference:
		return pdfobj.ObjectID(v).String()
	case pdfobj.Integer:
		return "int"
	case pdfobj.Dict:
		name, _ := pdfobj.AsName(v[pdfobj.Name("Type")])
		return "dict:" + string(name)
	default:
		return "other"
	}
}
