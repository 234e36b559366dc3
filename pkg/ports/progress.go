package ports

// Progress receives render progress updates. Reported (done, total) pairs
// are monotonically non-decreasing and done == total is reported exactly
// once, at the end of a successful render.
type Progress interface {
	Report(done, total float64, message string)
}

// NoopProgress discards all progress reports.
type NoopProgress struct{}

// Report does nothing.
func (NoopProgress) Report(done, total float64, message string) {}

var _ Progress = NoopProgress{}
