package merge

import (
	"github.com/sumbad/web2pdf/internal/pdfobj"
	"github.com/sumbad/web2pdf/internal/structtree"
)

// StructureContribution is one input document's contribution to the
// unified structure tree, the record the Structure Extractor & Shifter
// (spec.md §4.4) produces for a single input.
type StructureContribution struct {
	ShiftedNums         []pdfobj.Object
	RootKids            []pdfobj.Object
	RoleMap             pdfobj.Dict
	NextOffsetIncrement int64
}

// ExtractAndShift prepares doc's structure tree for absorption into the
// merged document's StructTreeRoot, and as a side effect shifts every
// page's /StructParents by currentOffset. Ported from
// extract_and_shift_structure in original_source's merge_pdfs.rs.
func ExtractAndShift(doc *pdfobj.Document, currentOffset int64) StructureContribution {
	var contrib StructureContribution
	var nextKey int64

	if rootDict, _, ok := structtree.StructTreeRoot(doc); ok {
		nextKey, _ = pdfobj.AsInt(rootDict[pdfobj.Name("ParentTreeNextKey")])

		if ptRef, ok := rootDict[pdfobj.Name("ParentTree")].(pdfobj.Reference); ok {
			if ptDict, ok := doc.DereferenceDict(ptRef); ok {
				nums := pdfobj.AsArrayOrSingle(ptDict[pdfobj.Name("Nums")])
				for i := 0; i+1 < len(nums); i += 2 {
					key, ok := pdfobj.AsInt(nums[i])
					if !ok {
						continue
					}
					contrib.ShiftedNums = append(contrib.ShiftedNums,
						pdfobj.Integer(key+currentOffset), nums[i+1])
				}
			}
		}

		contrib.RootKids = extractRootKids(doc, rootDict)

		if rm, ok := pdfobj.AsDict(rootDict[pdfobj.Name("RoleMap")]); ok {
			contrib.RoleMap = rm
		}
	}

	for _, pageID := range doc.PageIDs() {
		pageDict, ok := doc.DereferenceDict(pdfobj.Reference(pageID))
		if !ok {
			continue
		}
		oldSP, hasSP := pdfobj.AsInt(pageDict[pdfobj.Name("StructParents")])
		if !hasSP {
			continue
		}
		updated := pdfobj.Clone(pageDict).(pdfobj.Dict)
		updated[pdfobj.Name("StructParents")] = pdfobj.Integer(oldSP + currentOffset)
		doc.Set(pageID, updated)
	}

	pageCount := int64(len(doc.PageIDs()))
	contrib.NextOffsetIncrement = maxInt64(nextKey, pageCount, 1)

	return contrib
}

// extractRootKids implements the "unwrap a single Document node" rule:
// if StructTreeRoot.K is an array, its elements are the contribution's
// top-level kids; if it is a single reference to a Document-role element,
// that element's own K is taken instead, so the merged tree never nests
// one Document element inside another.
func extractRootKids(doc *pdfobj.Document, rootDict pdfobj.Dict) []pdfobj.Object {
	k, ok := rootDict[pdfobj.Name("K")]
	if !ok {
		return nil
	}

	if arr, ok := pdfobj.AsArray(k); ok {
		return append([]pdfobj.Object{}, arr...)
	}

	ref, ok := k.(pdfobj.Reference)
	if !ok {
		return []pdfobj.Object{k}
	}

	if dict, ok := doc.DereferenceDict(ref); ok {
		if role, _ := pdfobj.AsName(dict[pdfobj.Name("S")]); role == "Document" {
			return append([]pdfobj.Object{}, pdfobj.AsArrayOrSingle(dict[pdfobj.Name("K")])...)
		}
	}

	return []pdfobj.Object{k}
}

func maxInt64(vals ...int64) int64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
