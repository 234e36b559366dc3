// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"path/filepath"

	"github.com/RaaSaaR-org/vidgen/pkg/ports"
)

// Sink saves debug output under a base directory, usually
// <output>/debug/.
type Sink struct {
	baseDir string
	fs      ports.FileSystem
}

// New creates a new Sink.
func New(baseDir string, fs ports.FileSystem) *Sink {
	return &Sink{
		baseDir: baseDir,
		fs:      fs,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveFrame saves one captured frame under frames/scene-NNN/.
func (s *Sink) SaveFrame(sceneIndex, frameIndex int, png []byte) error {
	dir := filepath.Join(s.baseDir, "frames", fmt.Sprintf("scene-%03d", sceneIndex))
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("frame-%04d.png", frameIndex))
	return s.fs.WriteFile(path, png)
}

// SaveSceneMarkup saves the rendered HTML for a scene's first frame.
func (s *Sink) SaveSceneMarkup(sceneIndex int, html string) error {
	path := filepath.Join(s.baseDir, fmt.Sprintf("scene-%03d.html", sceneIndex))
	return s.fs.WriteFile(path, []byte(html))
}

// SaveRenderJSON saves the resolved timing plan as JSON.
func (s *Sink) SaveRenderJSON(data []byte) error {
	path := filepath.Join(s.baseDir, "render.json")
	return s.fs.WriteFile(path, data)
}

var _ ports.DebugSink = (*Sink)(nil)
