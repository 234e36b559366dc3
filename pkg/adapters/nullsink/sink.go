// Package nullsink provides a no-op debug sink implementation.
package nullsink

import "github.com/RaaSaaR-org/vidgen/pkg/ports"

// Sink discards all debug output.
type Sink struct{}

// New creates a new Sink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false as this sink discards all output.
func (s *Sink) Enabled() bool {
	return false
}

// SaveFrame does nothing.
func (s *Sink) SaveFrame(sceneIndex, frameIndex int, png []byte) error {
	return nil
}

// SaveSceneMarkup does nothing.
func (s *Sink) SaveSceneMarkup(sceneIndex int, html string) error {
	return nil
}

// SaveRenderJSON does nothing.
func (s *Sink) SaveRenderJSON(data []byte) error {
	return nil
}

var _ ports.DebugSink = (*Sink)(nil)
