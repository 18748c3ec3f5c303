// Command diag inspects a PDF's tagged structure tree: the StructTreeRoot
// hierarchy, marked-content references, and any OBJR-only links left behind
// by sanitization, for troubleshooting a merge without re-running it.
package main

import (
	"fmt"
	"os"

	"github.com/sumbad/web2pdf/internal/pdfobj"
	"github.com/sumbad/web2pdf/internal/structtree"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: diag <pdf-file>")
		os.Exit(1)
	}

	path := os.Args[1]
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println("read error:", err)
		os.Exit(1)
	}

	doc, err := pdfobj.Load(data)
	if err != nil {
		fmt.Println("parse error:", err)
		os.Exit(1)
	}

	fmt.Printf("Analyzing %s: %d object(s), %d page(s)\n\n", path, len(doc.Objects), len(doc.PageIDs()))

	rootDict, rootID, ok := structtree.StructTreeRoot(doc)
	if !ok {
		fmt.Println("No StructTreeRoot found — this PDF is untagged.")
		return
	}
	fmt.Printf("StructTreeRoot: object %d\n", rootID.Num)
	if roleMap, ok := rootDict[pdfobj.Name("RoleMap")].(pdfobj.Dict); ok {
		fmt.Printf("RoleMap entries: %d\n", len(roleMap))
	}

	nodeIDs := structtree.CollectNodeIDs(doc, rootID)
	fmt.Printf("Structure elements reachable from root: %d\n\n", len(nodeIDs))

	var objrOnlyLinks int
	for _, id := range nodeIDs {
		role := structtree.Role(doc, id)
		dict, ok := doc.DereferenceDict(pdfobj.Reference(id))
		if !ok {
			continue
		}
		kids := pdfobj.AsArrayOrSingle(dict[pdfobj.Name("K")])
		fmt.Printf("  obj %d  /S %-12s  %d child(ren)\n", id.Num, role, len(kids))

		if role == "Link" && !structtree.HasTextualContent(doc, id) {
			objrOnlyLinks++
		}
	}

	if objrOnlyLinks > 0 {
		fmt.Printf("\n%d Link element(s) carry only an OBJR annotation reference (no text) and were left untouched by sanitization.\n", objrOnlyLinks)
	}
}
