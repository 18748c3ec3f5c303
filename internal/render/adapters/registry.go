package adapters

import "context"

// Registry holds the open set of detector/adapter pairs and resolves one
// per rendered page: fast detectors are probed first (cheap, HTML-only),
// then slow ones (may touch the browser), falling back to Default when
// nothing claims the page. Ported from adapters::registry::AdapterRegistry,
// minus the bail-on-no-match behavior: a passthrough default keeps the
// renderer usable against arbitrary sites rather than refusing them.
type Registry struct {
	entries []Entry
}

// NewRegistry returns a registry pre-populated with the built-in adapters.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(NewMdBookDetector(), NewMdBookAdapter())
	return r
}

func (r *Registry) Register(d Detector, a Adapter) {
	r.entries = append(r.entries, Entry{Detector: d, Adapter: a})
}

// Resolve picks the Adapter for a page, given its raw HTML and URL.
func (r *Registry) Resolve(ctx context.Context, html, url string) Adapter {
	for _, e := range r.entries {
		if e.Detector.DetectFast(html) {
			return e.Adapter
		}
	}
	for _, e := range r.entries {
		ok, err := e.Detector.DetectSlow(ctx, url)
		if err == nil && ok {
			return e.Adapter
		}
	}
	return Default{}
}
