// Package logging provides the thin, debug-gated wrapper the CLI's
// --debug flag controls. The corpus has no structured-logging dependency
// anywhere (confirmed across every example repo), so this stays on the
// standard library's log package, matching how cmd/gopdfsuit's own main.go
// already logs, rather than reaching for an unwired third-party logger.
package logging

import "log"

var debug = false

// SetDebug toggles whether Debugf actually emits output.
func SetDebug(enabled bool) {
	debug = enabled
}

// Debugf logs only when debug mode is enabled, the Go-idiomatic analogue
// of original_source's tracing::debug! calls.
func Debugf(format string, args ...any) {
	if !debug {
		return
	}
	log.Printf(format, args...)
}

// Infof always logs, corresponding to tracing::info!.
func Infof(format string, args ...any) {
	log.Printf(format, args...)
}

// Warnf always logs, corresponding to tracing::warn!.
func Warnf(format string, args ...any) {
	log.Printf("warning: "+format, args...)
}

// Errorf always logs, corresponding to tracing::error!.
func Errorf(format string, args ...any) {
	log.Printf("error: "+format, args...)
}
