package adapters

import "context"

// Default is the passthrough adapter used when no detector claims a page.
type Default struct{}

func (Default) BeforeRender(ctx context.Context) error { return nil }
func (Default) AfterRender(ctx context.Context) error  { return nil }
