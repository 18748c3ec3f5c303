// Command tagbook renders every page of a multi-page web publication to a
// tagged PDF and merges them into one accessible book.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sumbad/web2pdf/internal/logging"
	"github.com/sumbad/web2pdf/internal/merge"
	"github.com/sumbad/web2pdf/internal/pdfobj"
	"github.com/sumbad/web2pdf/internal/render"
	"github.com/sumbad/web2pdf/internal/toc"
)

func main() {
	debug := flag.Bool("debug", false, "enable verbose structure-tree and TOC discovery logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: tagbook [--debug] <baseURL> <outputPath>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}
	baseURL, outputPath := flag.Arg(0), flag.Arg(1)
	logging.SetDebug(*debug)

	out, err := os.Create(outputPath)
	if err != nil {
		logging.Errorf("tagbook: cannot create output file: %v", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := run(baseURL, out); err != nil {
		logging.Errorf("tagbook: %v", err)
		os.Exit(1)
	}
}

func run(baseURL string, out *os.File) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	entries, err := toc.Generate(ctx, baseURL)
	if err != nil {
		return fmt.Errorf("discovering table of contents: %w", err)
	}
	logging.Infof("tagbook: %d page(s) to render", len(entries))

	renderer := render.NewRenderer()
	tmpDir, err := os.MkdirTemp("", "tagbook-")
	if err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	var tocEntries []merge.TocEntry
	for i, e := range entries {
		pdfBytes, err := renderer.RenderPage(ctx, e.URL)
		if err != nil {
			logging.Warnf("tagbook: skipping %s: %v", e.URL, err)
			continue
		}
		path := fmt.Sprintf("%s/page-%04d.pdf", tmpDir, i)
		if err := os.WriteFile(path, pdfBytes, 0o644); err != nil {
			logging.Warnf("tagbook: skipping %s: could not stage rendered page: %v", e.URL, err)
			continue
		}
		tocEntries = append(tocEntries, merge.TocEntry{
			Title:    e.Title,
			Level:    e.Level,
			FilePath: path,
		})
	}

	merged, err := merge.Merge(tocEntries)
	if err != nil {
		return fmt.Errorf("merging rendered pages: %w", err)
	}

	if err := pdfobj.Save(merged, out); err != nil {
		return fmt.Errorf("writing merged PDF: %w", err)
	}
	logging.Infof("tagbook: wrote %d page(s) to output", len(merged.PageIDs()))
	return nil
}
