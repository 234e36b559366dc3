package pipeline

import (
	"fmt"
)

// ErrorKind classifies render failures so callers can attach actionable
// hints without parsing error strings.
type ErrorKind int

const (
	// KindConfig is bad project or scene data, detected before rendering.
	KindConfig ErrorKind = iota
	// KindCapture is a rendering-surface failure.
	KindCapture
	// KindEncoding is an encoder subprocess failure.
	KindEncoding
	// KindNarration is a narration synthesis failure (non-fatal).
	KindNarration
	// KindSubtitle is a subtitle generation failure (non-fatal).
	KindSubtitle
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindCapture:
		return "capture"
	case KindEncoding:
		return "encoding"
	case KindNarration:
		return "narration"
	case KindSubtitle:
		return "subtitle"
	default:
		return "unknown"
	}
}

// RenderError carries enough structure to localize a failure: the kind, the
// scene it happened in (-1 when not scene-specific), and the output format
// being rendered ("" when format-independent).
type RenderError struct {
	Kind       ErrorKind
	SceneIndex int
	Format     string
	Err        error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	switch {
	case e.SceneIndex >= 0 && e.Format != "":
		return fmt.Sprintf("%s error (scene %d, format %q): %v", e.Kind, e.SceneIndex+1, e.Format, e.Err)
	case e.SceneIndex >= 0:
		return fmt.Sprintf("%s error (scene %d): %v", e.Kind, e.SceneIndex+1, e.Err)
	case e.Format != "":
		return fmt.Sprintf("%s error (format %q): %v", e.Kind, e.Format, e.Err)
	default:
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
}

// Unwrap returns the underlying error.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// NewRenderError wraps err with failure context.
func NewRenderError(kind ErrorKind, sceneIndex int, format string, err error) *RenderError {
	return &RenderError{Kind: kind, SceneIndex: sceneIndex, Format: format, Err: err}
}
