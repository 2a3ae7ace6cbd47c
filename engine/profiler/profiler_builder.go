package profiler

import "time"

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often statistics are reported. Non-positive values keep the default.
//
// Parameters:
//   - d: the reporting interval
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithLogging enables or disables the periodic log line.
//
// Parameters:
//   - enabled: false to keep the profiler silent
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithLogging(enabled bool) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.logging = enabled
	}
}

// WithReportCallback sets a function receiving every report.
//
// Parameters:
//   - fn: called with the statistics of each completed interval
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithReportCallback(fn func(Stats)) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.onReport = fn
	}
}

// WithClock replaces the time source.
//
// Parameters:
//   - now: returns the current time
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}
