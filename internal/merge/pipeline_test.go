package merge

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumbad/web2pdf/internal/pdfobj"
)

// buildTaggedPDF builds a minimal single-document tagged PDF with numPages
// pages, each with a /P structure element child of a single Document
// element, matching the shape spec.md §8's seed scenario 3 describes.
func buildTaggedPDF(t *testing.T, numPages int) []byte {
	t.Helper()
	doc := pdfobj.NewDocument()

	catalogID := doc.Add(pdfobj.Dict{pdfobj.Name("Type"): pdfobj.Name("Catalog")})
	pagesID := doc.Add(pdfobj.Dict{pdfobj.Name("Type"): pdfobj.Name("Pages")})

	pageIDs := make([]pdfobj.ObjectID, numPages)
	var pKids []pdfobj.Object
	var nums []pdfobj.Object
	for i := 0; i < numPages; i++ {
		pageID := doc.Add(pdfobj.Dict{
			pdfobj.Name("Type"):          pdfobj.Name("Page"),
			pdfobj.Name("Parent"):        pdfobj.Reference(pagesID),
			pdfobj.Name("MediaBox"):      pdfobj.Array{pdfobj.Integer(0), pdfobj.Integer(0), pdfobj.Integer(612), pdfobj.Integer(792)},
			pdfobj.Name("StructParents"): pdfobj.Integer(i),
		})
		pageIDs[i] = pageID

		pID := doc.Add(pdfobj.Dict{
			pdfobj.Name("Type"): pdfobj.Name("StructElem"),
			pdfobj.Name("S"):    pdfobj.Name("P"),
			pdfobj.Name("Pg"):   pdfobj.Reference(pageID),
			pdfobj.Name("K"):    pdfobj.Integer(0),
		})
		pKids = append(pKids, pdfobj.Reference(pID))
		nums = append(nums, pdfobj.Integer(i), pdfobj.Reference(pID))
	}

	kidsRefs := make(pdfobj.Array, numPages)
	for i, id := range pageIDs {
		kidsRefs[i] = pdfobj.Reference(id)
	}

	docElemID := doc.Add(pdfobj.Dict{
		pdfobj.Name("Type"): pdfobj.Name("StructElem"),
		pdfobj.Name("S"):    pdfobj.Name("Document"),
		pdfobj.Name("K"):    pdfobj.Array(pKids),
	})
	parentTreeID := doc.Add(pdfobj.Dict{pdfobj.Name("Nums"): pdfobj.Array(nums)})
	structRootID := doc.Add(pdfobj.Dict{
		pdfobj.Name("Type"):              pdfobj.Name("StructTreeRoot"),
		pdfobj.Name("K"):                 pdfobj.Reference(docElemID),
		pdfobj.Name("ParentTree"):        pdfobj.Reference(parentTreeID),
		pdfobj.Name("ParentTreeNextKey"): pdfobj.Integer(numPages),
	})

	doc.Set(pagesID, pdfobj.Dict{
		pdfobj.Name("Type"):  pdfobj.Name("Pages"),
		pdfobj.Name("Kids"):  kidsRefs,
		pdfobj.Name("Count"): pdfobj.Integer(numPages),
	})
	doc.Set(catalogID, pdfobj.Dict{
		pdfobj.Name("Type"):           pdfobj.Name("Catalog"),
		pdfobj.Name("Pages"):          pdfobj.Reference(pagesID),
		pdfobj.Name("StructTreeRoot"): pdfobj.Reference(structRootID),
	})
	doc.Trailer = pdfobj.Dict{
		pdfobj.Name("Root"): pdfobj.Reference(catalogID),
		pdfobj.Name("Size"): pdfobj.Integer(doc.MaxID + 1),
	}

	var buf bytes.Buffer
	require.NoError(t, pdfobj.Save(doc, &buf))
	return buf.Bytes()
}

func writeTempPDF(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestMerge_PagePreservationAndParentWiring(t *testing.T) {
	dir := t.TempDir()
	pathA := writeTempPDF(t, dir, "a.pdf", buildTaggedPDF(t, 3))
	pathB := writeTempPDF(t, dir, "b.pdf", buildTaggedPDF(t, 2))

	out, err := Merge([]TocEntry{
		{Title: "Chapter A", Level: 0, FilePath: pathA},
		{Title: "Chapter B", Level: 0, FilePath: pathB},
	})
	require.NoError(t, err)

	pages := out.PageIDs()
	require.Len(t, pages, 5)

	seen := map[pdfobj.ObjectID]bool{}
	for id := range out.Objects {
		require.False(t, seen[id], "duplicate object id %v", id)
		seen[id] = true
	}

	catDict, _, ok := out.Catalog()
	require.True(t, ok, "no catalog in merged output")
	rootRef, ok := catDict[pdfobj.Name("StructTreeRoot")].(pdfobj.Reference)
	require.True(t, ok, "merged catalog has no StructTreeRoot")
	rootDict, ok := out.DereferenceDict(rootRef)
	require.True(t, ok, "could not resolve merged StructTreeRoot")
	docRef, ok := rootDict[pdfobj.Name("K")].(pdfobj.Reference)
	require.True(t, ok, "merged StructTreeRoot.K is not a single Document reference")
	docDict, ok := out.DereferenceDict(docRef)
	require.True(t, ok, "could not resolve merged root Document element")
	topKids := pdfobj.AsArrayOrSingle(docDict[pdfobj.Name("K")])
	require.Len(t, topKids, 5, "expected one top-level structure child per page")

	for _, kid := range topKids {
		ref, ok := kid.(pdfobj.Reference)
		require.True(t, ok, "expected a reference child, got %#v", kid)
		kidDict, ok := out.DereferenceDict(ref)
		require.True(t, ok, "dangling structure child %v", ref)
		parentRef, ok := kidDict[pdfobj.Name("P")].(pdfobj.Reference)
		assert.True(t, ok && pdfobj.ObjectID(parentRef) == pdfobj.ObjectID(docRef),
			"child %v does not point P back at the merged Document element", ref)
	}
}

func TestMerge_StructParentsUnique(t *testing.T) {
	dir := t.TempDir()
	pathA := writeTempPDF(t, dir, "a.pdf", buildTaggedPDF(t, 2))
	pathB := writeTempPDF(t, dir, "b.pdf", buildTaggedPDF(t, 2))

	out, err := Merge([]TocEntry{
		{Title: "A", Level: 0, FilePath: pathA},
		{Title: "B", Level: 0, FilePath: pathB},
	})
	require.NoError(t, err)

	seen := map[int64]bool{}
	for _, id := range out.PageIDs() {
		dict, ok := out.DereferenceDict(pdfobj.Reference(id))
		if !ok {
			continue
		}
		sp, ok := pdfobj.AsInt(dict[pdfobj.Name("StructParents")])
		if !ok {
			continue
		}
		assert.False(t, seen[sp], "duplicate StructParents value %d", sp)
		seen[sp] = true
	}
	assert.Len(t, seen, 4)
}

func TestMerge_NestedTOCBookmarks(t *testing.T) {
	dir := t.TempDir()
	pathA := writeTempPDF(t, dir, "a.pdf", buildTaggedPDF(t, 1))
	pathB := writeTempPDF(t, dir, "b.pdf", buildTaggedPDF(t, 1))
	pathC := writeTempPDF(t, dir, "c.pdf", buildTaggedPDF(t, 1))
	pathD := writeTempPDF(t, dir, "d.pdf", buildTaggedPDF(t, 1))

	out, err := Merge([]TocEntry{
		{Title: "A", Level: 0, FilePath: pathA},
		{Title: "B", Level: 1, FilePath: pathB},
		{Title: "C", Level: 1, FilePath: pathC},
		{Title: "D", Level: 0, FilePath: pathD},
	})
	require.NoError(t, err)

	cat, _, ok := out.Catalog()
	require.True(t, ok, "no catalog")
	outlinesRef, ok := cat[pdfobj.Name("Outlines")].(pdfobj.Reference)
	require.True(t, ok, "merged catalog has no Outlines")
	outlines, ok := out.DereferenceDict(outlinesRef)
	require.True(t, ok, "could not resolve Outlines")

	count, _ := pdfobj.AsInt(outlines[pdfobj.Name("Count")])
	assert.Equal(t, int64(2), count, "expected 2 top-level bookmarks (A, D)")

	firstRef, ok := outlines[pdfobj.Name("First")].(pdfobj.Reference)
	require.True(t, ok, "Outlines has no First")
	first, ok := out.DereferenceDict(firstRef)
	require.True(t, ok, "could not resolve first top-level bookmark")

	title, _ := first[pdfobj.Name("Title")].(pdfobj.String)
	assert.Equal(t, "A", string(title), "expected first top-level bookmark titled A")

	childCount, _ := pdfobj.AsInt(first[pdfobj.Name("Count")])
	assert.Equal(t, int64(2), childCount, "expected A to have 2 children (B, C)")
}

func TestMerge_EmptyTOCIsFatal(t *testing.T) {
	out, err := Merge(nil)
	require.Error(t, err, "expected a fatal error for an empty TOC (no Catalog/Pages to build from)")
	assert.Nil(t, out)
}
