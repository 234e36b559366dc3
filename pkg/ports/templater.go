package ports

// SceneDocument is the templating input: everything that determines a
// scene's rendered markup for one frame. Templater implementations must be
// pure functions of this value so per-frame re-rendering is deterministic.
type SceneDocument struct {
	Template    string                 // Template identifier
	Props       map[string]interface{} // Scene property bag
	Script      string                 // Narration script body (for caption-style templates)
	Background  *Background            // Optional background override
	Width       int
	Height      int
	Frame       int
	TotalFrames int
}

// Background overrides the theme background for one scene.
type Background struct {
	Color string
	Image string
}

// Theme carries project-wide styling handed to every template render.
type Theme struct {
	Primary     string
	Secondary   string
	Background  string
	Text        string
	FontHeading string
	FontBody    string
}

// Templater turns a scene document into an HTML page string.
type Templater interface {
	Render(doc SceneDocument, theme Theme) (string, error)
}
