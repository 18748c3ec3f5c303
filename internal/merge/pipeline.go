// Package merge implements the merge side of the pipeline: extracting and
// shifting each input's structure tree, accumulating bookmarks, and
// assembling everything into one tagged PDF. Ported from
// original_source/src/_pdf_utils/merge_pdfs.rs.
package merge

import (
	"os"

	"github.com/sumbad/web2pdf/internal/logging"
	"github.com/sumbad/web2pdf/internal/pdfobj"
	"github.com/sumbad/web2pdf/internal/structtree"
)

// TocEntry is one entry of the ordered, leveled table of contents driving
// the merge: spec.md §6's TocEntry{title, level, file_path}.
type TocEntry struct {
	Title    string
	Level    int
	FilePath string
}

// Pipeline is the Pipeline Driver of spec.md §4.8: it owns the output
// document skeleton and the accumulators every input document's extracted
// structure and pages are folded into, in strict TOC order.
type Pipeline struct {
	doc   *pdfobj.Document
	maxID int

	pageOrder   []pdfobj.ObjectID
	pageObjects map[pdfobj.ObjectID]pdfobj.Object

	globalKids    []pdfobj.Object
	globalNums    []pdfobj.Object
	globalRoleMap pdfobj.Dict
	currentOffset int64

	catalogID *pdfobj.ObjectID
	pagesID   *pdfobj.ObjectID

	outline *OutlineBuilder
}

// NewPipeline returns a driver ready to process a TOC.
func NewPipeline() *Pipeline {
	return &Pipeline{
		doc:           pdfobj.NewDocument(),
		maxID:         1,
		pageObjects:   map[pdfobj.ObjectID]pdfobj.Object{},
		globalRoleMap: pdfobj.Dict{},
		outline:       NewOutlineBuilder(),
	}
}

// Merge runs the full pipeline over entries and returns the assembled
// document, ready to be serialized with pdfobj.Save. A TocEntry whose
// file cannot be read or parsed is logged and skipped — the merger is
// lossy-tolerant at the input boundary, per spec.md §7.
func Merge(entries []TocEntry) (*pdfobj.Document, error) {
	p := NewPipeline()
	for _, entry := range entries {
		p.processEntry(entry)
	}
	return p.assemble()
}

func (p *Pipeline) processEntry(entry TocEntry) {
	data, err := os.ReadFile(entry.FilePath)
	if err != nil {
		logging.Warnf("merge: skipping %q: %v", entry.FilePath, err)
		return
	}

	doc, err := pdfobj.Load(data)
	if err != nil {
		logging.Warnf("merge: skipping %q: failed to parse: %v", entry.FilePath, err)
		return
	}

	structtree.Sanitize(doc)

	startID := p.maxID
	pdfobj.RenumberObjects(doc, p.maxID)
	p.maxID = doc.MaxID + 1

	title := entry.Title
	if title == "" {
		title = titleFromPath(entry.FilePath)
	}

	pageIDs := doc.PageIDs()
	if len(pageIDs) > 0 {
		p.outline.Add(title, pageIDs[0], entry.Level)
	}

	contrib := ExtractAndShift(doc, p.currentOffset)

	p.globalNums = append(p.globalNums, contrib.ShiftedNums...)
	p.globalKids = append(p.globalKids, contrib.RootKids...)
	for k, v := range contrib.RoleMap {
		p.globalRoleMap[k] = v
	}
	p.currentOffset += contrib.NextOffsetIncrement

	for _, id := range pageIDs {
		if obj, ok := doc.Get(id); ok {
			p.pageObjects[id] = obj
			p.pageOrder = append(p.pageOrder, id)
		}
	}

	for id, obj := range doc.Objects {
		dict, isDict := pdfobj.AsDict(obj)
		typeName, _ := pdfobj.AsName(dict[pdfobj.Name("Type")])

		switch {
		case isDict && typeName == "Catalog":
			if p.catalogID == nil {
				p.catalogID = &id
				p.doc.Set(id, obj)
			}
		case isDict && typeName == "Pages":
			if p.pagesID == nil {
				p.pagesID = &id
				p.doc.Set(id, obj)
			}
		case isDict && (typeName == "Page" || typeName == "Outlines" || typeName == "Outline" || typeName == "StructTreeRoot"):
			// reconstructed manually
		default:
			p.doc.Set(id, obj)
		}
	}

	logging.Debugf("merge: processed %q (ids %d-%d, %d pages)", entry.FilePath, startID, doc.MaxID, len(pageIDs))
}
