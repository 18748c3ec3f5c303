package merge

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sumbad/web2pdf/internal/pdfobj"
)

// assemble turns the accumulated skeleton (absorbed objects, chosen
// catalog/pages ids, collected structure contributions, ordered pages,
// and bookmarks) into a complete, self-consistent document. Ported from
// assemble_merged_document in original_source's merge_pdfs.rs, folding in
// the trailer/renumber/outline finishing steps merge_pdfs itself performs
// after calling it (spec.md §4.7 steps 6-9).
func (p *Pipeline) assemble() (*pdfobj.Document, error) {
	if p.catalogID == nil {
		return nil, fmt.Errorf("merge: no Catalog object found among inputs")
	}
	if p.pagesID == nil {
		return nil, fmt.Errorf("merge: no Pages root object found among inputs")
	}
	catalogID, pagesID := *p.catalogID, *p.pagesID

	// 1. Reparent every absorbed page to the new pages root.
	for _, id := range p.pageOrder {
		dict, ok := pdfobj.AsDict(p.pageObjects[id])
		if !ok {
			continue
		}
		updated := pdfobj.Clone(dict).(pdfobj.Dict)
		updated[pdfobj.Name("Parent")] = pdfobj.Reference(pagesID)
		p.doc.Set(id, updated)
	}

	// 2. Unified ParentTree.
	parentTreeID := p.doc.Add(pdfobj.Dict{
		pdfobj.Name("Nums"): pdfobj.Array(p.globalNums),
	})

	// 3. Unified root Document structure element.
	rootDocumentID := p.doc.Add(pdfobj.Dict{
		pdfobj.Name("Type"): pdfobj.Name("StructElem"),
		pdfobj.Name("S"):    pdfobj.Name("Document"),
		pdfobj.Name("K"):    pdfobj.Array(p.globalKids),
	})

	// 4. Parent wiring: every top-level child points back at the new root.
	for _, child := range p.globalKids {
		ref, ok := child.(pdfobj.Reference)
		if !ok {
			continue
		}
		childID := pdfobj.ObjectID(ref)
		dict, ok := dictAt(p.doc, childID)
		if !ok {
			continue
		}
		updated := pdfobj.Clone(dict).(pdfobj.Dict)
		updated[pdfobj.Name("P")] = pdfobj.Reference(rootDocumentID)
		p.doc.Set(childID, updated)
	}

	// 5. Final StructTreeRoot, only when there is any structure to unify —
	// an all-untagged input set should not fabricate one (spec.md §4.4's
	// "no StructTreeRoot" failure mode: an empty contribution, not an error).
	haveStructure := len(p.globalKids) > 0 || len(p.globalNums) > 0
	if haveStructure {
		structTreeRootID := p.doc.Add(pdfobj.Dict{
			pdfobj.Name("Type"):              pdfobj.Name("StructTreeRoot"),
			pdfobj.Name("K"):                 pdfobj.Reference(rootDocumentID),
			pdfobj.Name("ParentTree"):        pdfobj.Reference(parentTreeID),
			pdfobj.Name("ParentTreeNextKey"): pdfobj.Integer(p.currentOffset),
			pdfobj.Name("RoleMap"):           p.globalRoleMap,
		})

		catDict, _ := dictAt(p.doc, catalogID)
		catUpdated := pdfobj.Clone(catDict).(pdfobj.Dict)
		catUpdated[pdfobj.Name("StructTreeRoot")] = pdfobj.Reference(structTreeRootID)
		catUpdated[pdfobj.Name("MarkInfo")] = pdfobj.Dict{pdfobj.Name("Marked"): pdfobj.Boolean(true)}
		catUpdated[pdfobj.Name("Pages")] = pdfobj.Reference(pagesID)
		p.doc.Set(catalogID, catUpdated)
	} else {
		catDict, _ := dictAt(p.doc, catalogID)
		catUpdated := pdfobj.Clone(catDict).(pdfobj.Dict)
		catUpdated[pdfobj.Name("Pages")] = pdfobj.Reference(pagesID)
		p.doc.Set(catalogID, catUpdated)
	}

	// 7. Pages root: Count + ordered Kids.
	pagesDict, _ := dictAt(p.doc, pagesID)
	pagesUpdated := pdfobj.Clone(pagesDict).(pdfobj.Dict)
	kidsRefs := make(pdfobj.Array, len(p.pageOrder))
	for i, id := range p.pageOrder {
		kidsRefs[i] = pdfobj.Reference(id)
	}
	pagesUpdated[pdfobj.Name("Count")] = pdfobj.Integer(len(p.pageOrder))
	pagesUpdated[pdfobj.Name("Kids")] = kidsRefs
	p.doc.Set(pagesID, pagesUpdated)

	// 8. Outline, if any bookmarks were recorded.
	if !p.outline.Empty() {
		outlineID, ok := p.outline.Build(p.doc)
		if ok {
			catDict, _ := dictAt(p.doc, catalogID)
			catUpdated := pdfobj.Clone(catDict).(pdfobj.Dict)
			catUpdated[pdfobj.Name("Outlines")] = pdfobj.Reference(outlineID)
			p.doc.Set(catalogID, catUpdated)
		}
	}

	p.doc.Trailer = pdfobj.Dict{
		pdfobj.Name("Root"): pdfobj.Reference(catalogID),
		pdfobj.Name("Size"): pdfobj.Integer(len(p.doc.Objects) + 1),
	}

	// 9. Renumber so object numbers start at 1. This shifts every id by one
	// constant offset; numbers left unused by skipped input objects stay
	// unused and are written as free cross-reference entries.
	pdfobj.RenumberObjects(p.doc, 1)

	return p.doc, nil
}

func dictAt(doc *pdfobj.Document, id pdfobj.ObjectID) (pdfobj.Dict, bool) {
	return doc.DereferenceDict(pdfobj.Reference(id))
}

// titleFromPath derives a bookmark title from a file path when the TOC
// entry carries none, stripping the extension the way a page stem would
// read (e.g. "chapter-3.pdf" -> "chapter-3").
func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
