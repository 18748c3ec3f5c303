package structtree

import (
	"github.com/sumbad/web2pdf/internal/logging"
	"github.com/sumbad/web2pdf/internal/pdfobj"
)

// Sanitize runs the NonStruct Dissolver and Link Sanitizer over doc's
// structure tree in a single leaves-first pass, so that nested NonStruct
// wrappers collapse fully without needing to repeat the walk until
// nothing changes. A document with no structure tree is left untouched —
// this is not an error, just nothing to do.
//
// Ported from sanitize_pdf in original_source/src/_pdf_utils/sanitize_pdf.rs.
func Sanitize(doc *pdfobj.Document) {
	_, rootID, ok := StructTreeRoot(doc)
	if !ok {
		logging.Debugf("structtree: no StructTreeRoot, skipping sanitize")
		return
	}

	for _, id := range LeavesFirst(doc, rootID) {
		role := Role(doc, id)

		DissolveNonStruct(doc, id)

		if role == "Link" {
			RemoveOBJRFromLink(doc, id)
		}
	}
}
