// Package toc discovers the ordered, leveled table of contents that
// drives the merge, per spec.md §6: first by sitemap, then by a
// site-specific navbar DOM, finally falling back to a single entry
// pointing at the base URL. Ported from original_source/src/toc.rs.
package toc

import (
	"context"
	"net/http"
	"time"

	"github.com/sumbad/web2pdf/internal/logging"
)

// Entry is one discovered table-of-contents node: a page to render, its
// nesting level, and the title to use for its bookmark.
type Entry struct {
	Title string
	URL   string
	Level int
}

var httpClient = &http.Client{Timeout: 15 * time.Second}

// Generate discovers the TOC for baseURL, trying the sitemap first, then
// the navbar DOM, and finally a single-entry fallback.
func Generate(ctx context.Context, baseURL string) ([]Entry, error) {
	if entries, err := fromSitemap(ctx, baseURL); err == nil && len(entries) > 0 {
		logging.Infof("toc: using sitemap, %d entries", len(entries))
		return entries, nil
	} else if err != nil {
		logging.Debugf("toc: sitemap discovery failed: %v", err)
	}

	if entries, err := fromNavbar(ctx, baseURL); err == nil && len(entries) > 0 {
		logging.Infof("toc: using navbar, %d entries", len(entries))
		return entries, nil
	} else if err != nil {
		logging.Debugf("toc: navbar discovery failed: %v", err)
	}

	logging.Debugf("toc: falling back to single entry for %s", baseURL)
	return []Entry{{URL: baseURL, Level: 0}}, nil
}
