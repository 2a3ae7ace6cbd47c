package profiler

import (
	"log"
	"runtime"
	"time"
)

// Stats is one reporting window of frame and memory statistics.
type Stats struct {
	FPS          float64
	FrameTimeMs  float64
	HeapMB       float64
	AllocRateMBs float64
	GCCount      uint32
	LastPauseUs  uint64
	MaxPauseUs   uint64
	SysMB        float64
}

// Profiler is the frame-rate counter. It counts ticks and, once per interval, computes
// frames per second and memory statistics, logging them and passing them to an optional
// report callback.
type Profiler struct {
	frameCount     int
	totalFrames    uint64
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats

	now      func() time.Time
	logging  bool
	onReport func(Stats)
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second and logging is enabled.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
		logging:        true,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame.
// Reports statistics when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were reported this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	p.totalFrames++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval || elapsed <= 0 {
		return false
	}

	stats := Stats{
		FPS:         float64(p.frameCount) / elapsed.Seconds(),
		FrameTimeMs: float64(elapsed.Milliseconds()) / float64(p.frameCount),
	}

	runtime.ReadMemStats(&p.memStats)
	stats.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	stats.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	stats.AllocRateMBs = float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()
	stats.GCCount = p.memStats.NumGC
	stats.LastPauseUs, stats.MaxPauseUs = p.pauses()

	if p.logging {
		log.Printf("[Profiler] FPS: %.2f | Frame: %.2f ms | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
			stats.FPS, stats.FrameTimeMs, stats.HeapMB, stats.AllocRateMBs, stats.GCCount, stats.LastPauseUs, stats.MaxPauseUs, stats.SysMB)
	}
	if p.onReport != nil {
		p.onReport(stats)
	}

	p.last = stats
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = stats.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recently reported statistics, zero before the first report.
func (p *Profiler) Last() Stats {
	return p.last
}

// TotalFrames returns the number of ticks since creation.
func (p *Profiler) TotalFrames() uint64 {
	return p.totalFrames
}

// pauses returns the most recent GC pause and the longest pause since the last report.
// PauseNs is a circular buffer of the last 256 pauses.
func (p *Profiler) pauses() (lastUs, maxUs uint64) {
	gcCount := p.memStats.NumGC
	if gcCount == 0 {
		return 0, 0
	}
	lastUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

	startIdx := p.lastGCCount
	if gcCount-startIdx > 256 {
		startIdx = gcCount - 256
	}
	for i := startIdx; i < gcCount; i++ {
		if pause := p.memStats.PauseNs[i%256] / 1000; pause > maxUs {
			maxUs = pause
		}
	}
	return lastUs, maxUs
}
