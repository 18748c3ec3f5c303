package toc

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// fromNavbar fetches baseURL's HTML and parses the mdBook sidebar
// convention: an ordered list of chapters under nav#sidebar, each <li>
// either a link at the current nesting level or a nested <ol> that
// recurses at level+1. Ported from parse_mdbook_toc/parse_ol/parse_li in
// original_source/src/toc.rs using golang.org/x/net/html instead of the
// scraper crate's CSS selectors, the same DOM-walking style
// wudi-pdfkit's layout package uses for its own HTML rendering.
func fromNavbar(ctx context.Context, baseURL string) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("toc: navbar fetch returned %s", resp.Status)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	ol := findSidebarChapterList(doc)
	if ol == nil {
		return nil, fmt.Errorf("toc: mdBook TOC not found (nav#sidebar ol.chapter)")
	}

	var entries []Entry
	parseOl(&entries, ol, base, 0)
	if len(entries) == 0 {
		return nil, fmt.Errorf("toc: navbar sidebar found but no chapter links in it")
	}
	return entries, nil
}

// findSidebarChapterList finds the first <ol class="chapter"> that is a
// descendant of a <nav id="sidebar">.
func findSidebarChapterList(n *html.Node) *html.Node {
	nav := findElement(n, func(e *html.Node) bool {
		return e.DataAtom == atom.Nav && attr(e, "id") == "sidebar"
	})
	if nav == nil {
		return nil
	}
	return findElement(nav, func(e *html.Node) bool {
		return e.DataAtom == atom.Ol && hasClass(e, "chapter")
	})
}

func parseOl(entries *[]Entry, ol *html.Node, base *url.URL, level int) {
	for li := ol.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		parseLi(entries, li, base, level)
	}
}

func parseLi(entries *[]Entry, li *html.Node, base *url.URL, level int) {
	var a, nestedOl *html.Node
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Ol:
			nestedOl = c
		case atom.A:
			if a == nil {
				a = c
			}
		}
	}

	if nestedOl != nil {
		parseOl(entries, nestedOl, base, level+1)
		return
	}

	if a == nil {
		return
	}

	href := attr(a, "href")
	if href == "" {
		return
	}
	resolved := href
	if ref, err := url.Parse(href); err == nil {
		resolved = base.ResolveReference(ref).String()
	}

	*entries = append(*entries, Entry{
		Title: strings.TrimSpace(textContent(a)),
		URL:   resolved,
		Level: level,
	})
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
