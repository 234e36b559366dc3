// Package progress provides render progress reporters.
package progress

import (
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/RaaSaaR-org/vidgen/pkg/ports"
)

// barResolution is the internal step count of the terminal bar. Reported
// (done, total) pairs are scaled onto it so fractional progress renders.
const barResolution = 1000

// Bar reports progress on a terminal progress bar.
type Bar struct {
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

// NewBar creates a terminal progress bar reporter.
func NewBar() *Bar {
	return &Bar{}
}

// Report updates the bar. The first report sizes it; reports are safe from
// concurrent capture goroutines.
func (b *Bar) Report(done, total float64, message string) {
	if total <= 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar == nil {
		b.bar = progressbar.NewOptions(barResolution,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionClearOnFinish(),
		)
	}

	b.bar.Describe(message)
	b.bar.Set(int(done / total * barResolution))
}

var _ ports.Progress = (*Bar)(nil)
