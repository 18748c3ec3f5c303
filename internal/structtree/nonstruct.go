package structtree

import "github.com/sumbad/web2pdf/internal/pdfobj"

// IsNonStruct reports whether dict's /S role is NonStruct — a structure
// element that exists only to group content and carries no semantic
// meaning of its own, the element spec.md's NonStruct Dissolver removes.
func IsNonStruct(dict pdfobj.Dict) bool {
	name, _ := pdfobj.AsName(dict[pdfobj.Name("S")])
	return name == "NonStruct"
}

// DissolveNonStruct inspects parentID's direct /K children and, for each
// one that is itself a NonStruct element, splices that child's own
// grandchildren directly into parentID's child list in its place. It
// reports whether parentID's dictionary was rewritten.
//
// Ported from dissolve_nonstruct_in_node in sanitize_pdf.rs: a bare MCID
// surfaced from the dissolved NonStruct is re-wrapped in an MCR dictionary
// so its /Pg binding isn't lost, and a structure-element child has its /P
// rewritten to parentID and inherits the NonStruct's /Pg if it didn't
// already have one of its own.
func DissolveNonStruct(doc *pdfobj.Document, parentID pdfobj.ObjectID) bool {
	dict, ok := doc.DereferenceDict(pdfobj.Reference(parentID))
	if !ok {
		return false
	}
	k, has := dict[pdfobj.Name("K")]
	if !has {
		return false
	}
	children := pdfobj.AsArrayOrSingle(k)

	var newKids []pdfobj.Object
	changed := false

	for _, item := range children {
		ref, isRef := item.(pdfobj.Reference)
		if !isRef {
			newKids = append(newKids, item)
			continue
		}
		kidDict, ok := doc.DereferenceDict(ref)
		if !ok || !IsNonStruct(kidDict) {
			newKids = append(newKids, item)
			continue
		}

		changed = true
		kidPg, kidHasPg := kidDict[pdfobj.Name("Pg")]
		var grandchildren pdfobj.Array
		if kidK, ok := kidDict[pdfobj.Name("K")]; ok {
			grandchildren = pdfobj.AsArrayOrSingle(kidK)
		}

		for _, gc := range grandchildren {
			switch v := gc.(type) {
			case pdfobj.Integer:
				if kidHasPg {
					mcr := pdfobj.Dict{
						pdfobj.Name("Type"): pdfobj.Name("MCR"),
						pdfobj.Name("Pg"):   kidPg,
						pdfobj.Name("MCID"): v,
					}
					newKids = append(newKids, mcr)
				} else {
					newKids = append(newKids, v)
				}
			case pdfobj.Reference:
				reparent(doc, pdfobj.ObjectID(v), parentID)
				if kidHasPg {
					inheritPg(doc, pdfobj.ObjectID(v), kidPg)
				}
				newKids = append(newKids, v)
			default:
				newKids = append(newKids, gc)
			}
		}
	}

	if !changed {
		return false
	}

	updated := pdfobj.Clone(dict).(pdfobj.Dict)
	updated.Set(pdfobj.Name("K"), pdfobj.SingleOrArray(newKids))
	doc.Set(parentID, updated)
	return true
}

// reparent rewrites childID's /P to point at parentID.
func reparent(doc *pdfobj.Document, childID, parentID pdfobj.ObjectID) {
	dict, ok := doc.DereferenceDict(pdfobj.Reference(childID))
	if !ok {
		return
	}
	updated := pdfobj.Clone(dict).(pdfobj.Dict)
	updated[pdfobj.Name("P")] = pdfobj.Reference(parentID)
	doc.Set(childID, updated)
}

// inheritPg sets childID's /Pg to pg only if it doesn't already have one.
func inheritPg(doc *pdfobj.Document, childID pdfobj.ObjectID, pg pdfobj.Object) {
	dict, ok := doc.DereferenceDict(pdfobj.Reference(childID))
	if !ok {
		return
	}
	if _, has := dict[pdfobj.Name("Pg")]; has {
		return
	}
	updated := pdfobj.Clone(dict).(pdfobj.Dict)
	updated[pdfobj.Name("Pg")] = pg
	doc.Set(childID, updated)
}
