// Package structtree operates on the tagged-PDF structure tree rooted at
// StructTreeRoot: walking it, dissolving NonStruct wrapper elements, and
// sanitizing Link elements whose K array carries redundant OBJR children.
//
// Grounded on original_source/src/_pdf_utils/{sanitize_pdf.rs,helpers.rs}.
package structtree

import (
	"github.com/sumbad/web2pdf/internal/pdfobj"
)

// StructTreeRoot returns the id and dictionary of doc's StructTreeRoot, via
// the catalog's /StructTreeRoot entry. A document with no structure tree
// (untagged PDF) is not an error — ok is simply false.
func StructTreeRoot(doc *pdfobj.Document) (pdfobj.Dict, pdfobj.ObjectID, bool) {
	cat, _, ok := doc.Catalog()
	if !ok {
		return nil, pdfobj.ObjectID{}, false
	}
	ref, ok := cat[pdfobj.Name("StructTreeRoot")].(pdfobj.Reference)
	if !ok {
		return nil, pdfobj.ObjectID{}, false
	}
	dict, ok := doc.DereferenceDict(ref)
	return dict, pdfobj.ObjectID(ref), ok
}

// kids returns the child ids referenced from a dictionary's /K entry,
// ignoring bare MCID integers and MCR/OBJR dictionaries — anything that
// isn't itself an indirect reference to another structure element.
func kids(dict pdfobj.Dict) []pdfobj.ObjectID {
	k, ok := dict[pdfobj.Name("K")]
	if !ok {
		return nil
	}
	var out []pdfobj.ObjectID
	for _, item := range pdfobj.AsArrayOrSingle(k) {
		if ref, ok := item.(pdfobj.Reference); ok {
			out = append(out, pdfobj.ObjectID(ref))
		}
	}
	return out
}

// CollectNodeIDs returns every structure-element id reachable from root,
// root included, in pre-order (parent before children), each id appearing
// exactly once even when the tree shares or cycles through a node —
// spec.md §9's "cyclic / shared references" requirement. Mirrors
// collect_all_node_ids's recursive descent.
func CollectNodeIDs(doc *pdfobj.Document, root pdfobj.ObjectID) []pdfobj.ObjectID {
	var out []pdfobj.ObjectID
	visited := map[pdfobj.ObjectID]bool{}
	var walk func(id pdfobj.ObjectID)
	walk = func(id pdfobj.ObjectID) {
		if visited[id] {
			return
		}
		visited[id] = true
		out = append(out, id)

		dict, ok := doc.DereferenceDict(pdfobj.Reference(id))
		if !ok {
			return
		}
		for _, kid := range kids(dict) {
			walk(kid)
		}
	}
	walk(root)
	return out
}

// LeavesFirst returns ids in the reverse of CollectNodeIDs's pre-order,
// so that a single linear pass over the result processes every node's
// children before the node itself — the order sanitize_pdf.rs relies on
// to dissolve nested NonStruct wrappers in one pass instead of needing to
// repeat the walk until nothing changes.
func LeavesFirst(doc *pdfobj.Document, root pdfobj.ObjectID) []pdfobj.ObjectID {
	ids := CollectNodeIDs(doc, root)
	reversed := make([]pdfobj.ObjectID, len(ids))
	for i, id := range ids {
		reversed[len(ids)-1-i] = id
	}
	return reversed
}

// Role returns the /S role name of the structure element at id, or ""
// if the object can't be resolved as a dictionary or has no /S entry.
func Role(doc *pdfobj.Document, id pdfobj.ObjectID) pdfobj.Name {
	dict, ok := doc.DereferenceDict(pdfobj.Reference(id))
	if !ok {
		return ""
	}
	name, _ := pdfobj.AsName(dict[pdfobj.Name("S")])
	return name
}
