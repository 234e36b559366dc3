package ports

// DebugSink abstracts debug output for intermediate capture results.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveFrame saves one captured frame image for a scene.
	SaveFrame(sceneIndex, frameIndex int, png []byte) error

	// SaveSceneMarkup saves the rendered HTML for a scene's first frame.
	SaveSceneMarkup(sceneIndex int, html string) error

	// SaveRenderJSON saves render metadata (durations, transitions) as JSON.
	SaveRenderJSON(data []byte) error
}
