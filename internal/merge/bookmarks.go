package merge

import "github.com/sumbad/web2pdf/internal/pdfobj"

// OutlineBuilder accumulates TOC-ordered (title, level, page) bookmarks and
// turns them into a PDF outline dictionary tree. Ported from the
// "previous bookmark at each level" bookkeeping merge_pdfs.rs keeps in
// previous_lever_bookmark plus lopdf's Bookmark/add_bookmark/build_outline.
type OutlineBuilder struct {
	roots    []*bookmarkNode
	previous map[int]*bookmarkNode
}

type bookmarkNode struct {
	title    string
	pageID   pdfobj.ObjectID
	children []*bookmarkNode
}

// NewOutlineBuilder returns an empty builder.
func NewOutlineBuilder() *OutlineBuilder {
	return &OutlineBuilder{previous: map[int]*bookmarkNode{}}
}

// Add records a bookmark for pageID at the given level. Per spec.md §4.6:
// level 0 starts a new top-level bookmark and clears the "previous at each
// level" memory; any other level attaches under the most recently added
// bookmark at level-1 (or becomes a root if none exists yet).
func (b *OutlineBuilder) Add(title string, pageID pdfobj.ObjectID, level int) {
	if level == 0 {
		b.previous = map[int]*bookmarkNode{}
	}

	node := &bookmarkNode{title: title, pageID: pageID}

	parentLevel := level - 1
	if parentLevel < 0 {
		parentLevel = 0
	}
	if parent, ok := b.previous[parentLevel]; ok && level > 0 {
		parent.children = append(parent.children, node)
	} else {
		b.roots = append(b.roots, node)
	}

	b.previous[level] = node
}

// Empty reports whether no bookmark has been recorded.
func (b *OutlineBuilder) Empty() bool {
	return len(b.roots) == 0
}

// Build materializes the accumulated bookmark tree as PDF Outline
// dictionaries in doc and returns the id of the top-level Outlines
// dictionary. Each destination is the page id plus the fixed [x,y,zoom]
// spec.md §4.6 specifies: (0.0, 0.0, 1.0).
func (b *OutlineBuilder) Build(doc *pdfobj.Document) (pdfobj.ObjectID, bool) {
	if b.Empty() {
		return pdfobj.ObjectID{}, false
	}

	outlinesID := doc.Add(pdfobj.Null{})
	firstID, lastID, _ := buildSiblings(doc, b.roots, outlinesID)

	outlines := pdfobj.Dict{
		pdfobj.Name("Type"):  pdfobj.Name("Outlines"),
		pdfobj.Name("First"): pdfobj.Reference(firstID),
		pdfobj.Name("Last"):  pdfobj.Reference(lastID),
		pdfobj.Name("Count"): pdfobj.Integer(len(b.roots)),
	}
	doc.Set(outlinesID, outlines)
	return outlinesID, true
}

// buildSiblings allocates and links one level of the tree, returning the
// first and last sibling ids and the total descendant count (used by the
// parent's own /Count).
func buildSiblings(doc *pdfobj.Document, nodes []*bookmarkNode, parentID pdfobj.ObjectID) (pdfobj.ObjectID, pdfobj.ObjectID, int) {
	ids := make([]pdfobj.ObjectID, len(nodes))
	for i, n := range nodes {
		ids[i] = doc.Add(pdfobj.Null{})
		_ = n
	}

	total := 0
	for i, n := range nodes {
		id := ids[i]
		dict := pdfobj.Dict{
			pdfobj.Name("Title"):  pdfobj.String(n.title),
			pdfobj.Name("Parent"): pdfobj.Reference(parentID),
			pdfobj.Name("Dest"): pdfobj.Array{
				pdfobj.Reference(n.pageID),
				pdfobj.Name("XYZ"),
				pdfobj.Real(0.0),
				pdfobj.Real(0.0),
				pdfobj.Real(1.0),
			},
		}
		if i > 0 {
			dict[pdfobj.Name("Prev")] = pdfobj.Reference(ids[i-1])
		}
		if i < len(ids)-1 {
			dict[pdfobj.Name("Next")] = pdfobj.Reference(ids[i+1])
		}
		if len(n.children) > 0 {
			childFirst, childLast, childCount := buildSiblings(doc, n.children, id)
			dict[pdfobj.Name("First")] = pdfobj.Reference(childFirst)
			dict[pdfobj.Name("Last")] = pdfobj.Reference(childLast)
			dict[pdfobj.Name("Count")] = pdfobj.Integer(childCount)
			total += childCount
		}
		total++
		doc.Set(id, dict)
	}

	return ids[0], ids[len(ids)-1], total
}
