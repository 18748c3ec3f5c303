// Package adapters implements the detector/adapter capability set that
// lets the renderer apply per-resource-type DOM cleanup before printing:
// {DetectFast(html), DetectSlow(ctx, url), BeforeRender(ctx), AfterRender(ctx)}.
// Ported from original_source/src/adapters/{traits.rs,registry.rs}, with
// chromedp.Run(ctx, actions...) standing in for chromiumoxide's Page.
package adapters

import "context"

// Detector decides whether an Adapter applies to a rendered resource.
// DetectFast runs against the raw HTML before any browser work; DetectSlow
// may drive the browser (e.g. to probe for a script or DOM marker) and is
// only tried if every fast detector misses.
type Detector interface {
	DetectFast(html string) bool
	DetectSlow(ctx context.Context, url string) (bool, error)
}

// Adapter runs DOM cleanup around a page print. BeforeRender is typically
// installed via page.AddScriptToEvaluateOnNewDocument so it takes effect
// before the page's own scripts run; AfterRender runs once the page has
// settled, just before PrintToPDF.
type Adapter interface {
	BeforeRender(ctx context.Context) error
	AfterRender(ctx context.Context) error
}

// Entry pairs a detector with the adapter it selects.
type Entry struct {
	Detector Detector
	Adapter  Adapter
}
