package adapters

import (
	"context"
	"strings"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// forceLightThemeJS mirrors adapters::mdbook::adapter::FORCE_LIGHT_THEME_JS:
// mdBook persists its theme in localStorage and re-applies it on load, so
// forcing the light theme has to happen before the page's own scripts run.
const forceLightThemeJS = `
try {
  localStorage.setItem('mdbook-theme', 'light');
  document.documentElement.setAttribute('data-theme', 'light');
} catch (e) {
  console.error(e);
}
`

// MdBookDetector recognizes mdBook-generated sites, ported from
// _adapters/_mdbook/detector.rs's scoring heuristic: a <meta name=generator>
// mentioning mdBook is conclusive on its own; otherwise points accumulate
// from TOC/content markup and known script names, and 5 or more wins.
type MdBookDetector struct{}

func NewMdBookDetector() MdBookDetector { return MdBookDetector{} }

func (MdBookDetector) DetectFast(rawHTML string) bool {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return false
	}

	if meta := findElementMatching(doc, isGeneratorMeta); meta != nil {
		if content, ok := attrOk(meta, "content"); ok {
			return strings.Contains(strings.ToLower(content), "mdbook")
		}
	}

	score := 0
	if findElementMatching(doc, hasClassPredicate("ul", "chapter")) != nil {
		score += 2
	}
	if findElementMatching(doc, hasClassPredicate("li", "chapter-item")) != nil {
		score += 2
	}
	if findElementMatching(doc, isMainContent) != nil {
		score++
	}
	if strings.Contains(rawHTML, "book.js") {
		score += 3
	}
	if strings.Contains(rawHTML, "elasticlunr") {
		score += 2
	}
	if strings.Contains(rawHTML, "mdBook") {
		score++
	}
	return score >= 5
}

func (MdBookDetector) DetectSlow(ctx context.Context, url string) (bool, error) {
	return false, nil
}

func isGeneratorMeta(n *html.Node) bool {
	return n.DataAtom == atom.Meta && attrValue(n, "name") == "generator"
}

// isMainContent matches the CSS selector "main#content, #content": the
// element must carry id="content", regardless of tag — a bare <main> with
// no id does not count.
func isMainContent(n *html.Node) bool {
	return attrValue(n, "id") == "content"
}

func hasClassPredicate(tag, class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Data == tag && hasClass(n, class)
	}
}

func attrValue(n *html.Node, key string) string {
	v, _ := attrOk(n, key)
	return v
}

// attrOk returns n's attribute value for key and whether the attribute was
// present at all, distinguishing a missing attribute from one set to "".
func attrOk(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attrValue(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// findElementMatching does a depth-first search of n's tree for the first
// node for which match returns true.
func findElementMatching(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElementMatching(c, match); found != nil {
			return found
		}
	}
	return nil
}

// MdBookAdapter forces the light theme before mdBook's own scripts load, so
// the print output never picks up a dark-mode stylesheet.
type MdBookAdapter struct{}

func NewMdBookAdapter() MdBookAdapter { return MdBookAdapter{} }

func (MdBookAdapter) BeforeRender(ctx context.Context) error {
	return chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(forceLightThemeJS).Do(ctx)
		return err
	}))
}

func (MdBookAdapter) AfterRender(ctx context.Context) error { return nil }
