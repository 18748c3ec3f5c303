package structtree

import (
	"github.com/sumbad/web2pdf/internal/logging"
	"github.com/sumbad/web2pdf/internal/pdfobj"
)

// IsLink reports whether dict's /S role is Link.
func IsLink(dict pdfobj.Dict) bool {
	name, _ := pdfobj.AsName(dict[pdfobj.Name("S")])
	return name == "Link"
}

// isOBJR reports whether item is an OBJR object-reference child: either a
// direct dictionary with /Type /OBJR, or a reference to one. Matches
// spec.md §4.3's "OBJR detection" rule.
func isOBJR(doc *pdfobj.Document, item pdfobj.Object) bool {
	switch v := item.(type) {
	case pdfobj.Dict:
		name, _ := pdfobj.AsName(v[pdfobj.Name("Type")])
		return name == "OBJR"
	case pdfobj.Reference:
		dict, ok := doc.DereferenceDict(v)
		if !ok {
			return false
		}
		name, _ := pdfobj.AsName(dict[pdfobj.Name("Type")])
		return name == "OBJR"
	default:
		return false
	}
}

// HasTextualContent implements spec.md §4.3's recursive textual-content
// predicate for a structure element: a direct MCID integer, a direct MCR
// dictionary (marked content bound via MCID, the same textual signal as a
// bare integer), a descendant structure element with no /K at all (a
// degenerate but still-textual leaf), or a descendant for which the same
// predicate holds.
func HasTextualContent(doc *pdfobj.Document, id pdfobj.ObjectID) bool {
	return hasTextualContent(doc, id, map[pdfobj.ObjectID]bool{})
}

func hasTextualContent(doc *pdfobj.Document, id pdfobj.ObjectID, visited map[pdfobj.ObjectID]bool) bool {
	if visited[id] {
		return false
	}
	visited[id] = true

	dict, ok := doc.DereferenceDict(pdfobj.Reference(id))
	if !ok {
		return false
	}

	k, has := dict[pdfobj.Name("K")]
	if !has {
		return true
	}

	for _, item := range pdfobj.AsArrayOrSingle(k) {
		switch v := item.(type) {
		case pdfobj.Integer:
			return true
		case pdfobj.Dict:
			if name, _ := pdfobj.AsName(v[pdfobj.Name("Type")]); name == "MCR" {
				return true
			}
		case pdfobj.Reference:
			if isOBJR(doc, v) {
				continue
			}
			if hasTextualContent(doc, pdfobj.ObjectID(v), visited) {
				return true
			}
		}
	}
	return false
}

// RemoveOBJRFromLink strips every OBJR child from linkID's immediate /K
// when the element also carries textual content, per spec.md §4.3. A
// link whose only content is an OBJR is left untouched and logged.
// Reports whether the dictionary was rewritten.
func RemoveOBJRFromLink(doc *pdfobj.Document, linkID pdfobj.ObjectID) bool {
	dict, ok := doc.DereferenceDict(pdfobj.Reference(linkID))
	if !ok {
		return false
	}
	k, has := dict[pdfobj.Name("K")]
	if !has {
		return false
	}
	children := pdfobj.AsArrayOrSingle(k)

	hasTextual := HasTextualContent(doc, linkID)
	hasOBJR := false
	var kept []pdfobj.Object
	for _, item := range children {
		if isOBJR(doc, item) {
			hasOBJR = true
			continue
		}
		kept = append(kept, item)
	}

	if !hasOBJR {
		return false
	}

	if !hasTextual {
		logging.Warnf("structtree: link %s has OBJR without textual content, leaving untouched", linkID)
		return false
	}

	updated := pdfobj.Clone(dict).(pdfobj.Dict)
	updated[pdfobj.Name("K")] = pdfobj.SingleOrArray(kept)
	doc.Set(linkID, updated)
	return true
}
