// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
)

// Browser abstracts the headless rendering surface used for frame capture.
// One Browser instance is launched per output format (formats differ in
// viewport size); scene captures within a format each open their own Tab.
type Browser interface {
	// Launch starts the browser with the given options.
	Launch(ctx context.Context, opts BrowserOptions) error

	// NewTab opens an independent page for one scene's capture session.
	// Tabs may be used concurrently from different goroutines.
	NewTab(ctx context.Context) (Tab, error)

	// Close shuts down the browser and all remaining tabs.
	Close() error
}

// Tab is a single capture session: load markup, push animation state,
// screenshot. A Tab must not be shared between scenes.
type Tab interface {
	// SetContent replaces the page document with the given HTML.
	SetContent(ctx context.Context, html string) error

	// SetAnimationState pushes the per-frame animation signals into the
	// live page so frame-indexed styles can react to them.
	SetAnimationState(ctx context.Context, state AnimationState) error

	// Screenshot captures the current viewport as PNG bytes.
	Screenshot(ctx context.Context) ([]byte, error)

	// Close closes the tab. Safe to call after a failed capture.
	Close() error
}

// BrowserOptions configures browser launch settings.
type BrowserOptions struct {
	Width      int    // Viewport width in CSS pixels
	Height     int    // Viewport height in CSS pixels
	ChromePath string // Explicit Chrome executable (falls back to CHROME_PATH env, then system default)
	Headless   bool
}

// AnimationState carries the three animation signals injected before each
// screenshot. Progress is frame/totalFrames; ContentProgress tracks position
// between narration start and end so voice-synced animations follow audio
// timing instead of raw frame count.
type AnimationState struct {
	Frame           int
	TotalFrames     int
	Progress        float64
	ContentProgress float64
}
