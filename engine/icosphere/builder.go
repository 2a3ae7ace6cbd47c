package icosphere

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-fireball/engine/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrBuilderClosed is returned by Build after Close has been called.
var ErrBuilderClosed = errors.New("icosphere: builder is closed")

// cacheKey identifies one generated mesh. Generation is pure, so equal keys always yield equal meshes.
type cacheKey struct {
	center mgl32.Vec3
	radius float32
	level  int
}

// buildResult carries a finished generation back to the waiting caller.
type buildResult struct {
	mesh *mesh.Mesh
	err  error
}

// builder is the implementation of the Builder interface.
type builder struct {
	mu *sync.Mutex

	pool        worker.DynamicWorkerPool
	workers     int
	queueSize   int
	idleTimeout time.Duration

	cacheEnabled bool
	cache        map[cacheKey]*mesh.Mesh

	nextTaskID int
	closed     bool

	// pending holds the result channel of every submitted task that has not delivered yet.
	// It has its own lock because workers touch it while a submitter may hold mu.
	pendingMu *sync.Mutex
	pending   map[int]chan buildResult
}

// Builder generates icospheres on a reusable worker pool. Every call blocks until its mesh is
// complete, so callers never observe a partially generated mesh.
type Builder interface {
	// Build generates a single icosphere on the pool and waits for it.
	//
	// Parameters:
	//   - center: sphere center in model space
	//   - radius: sphere radius, must be > 0
	//   - level: subdivision level in [MinLevel, MaxLevel]
	//
	// Returns:
	//   - *mesh.Mesh: the generated mesh
	//   - error: an error wrapping common.ErrGeometryInput for invalid input, or ErrBuilderClosed
	Build(center mgl32.Vec3, radius float32, level int) (*mesh.Mesh, error)

	// BuildLevels generates several levels in parallel and waits for all of them.
	// When caching is enabled the results are kept so later Build calls return immediately.
	//
	// Parameters:
	//   - center: sphere center in model space
	//   - radius: sphere radius, must be > 0
	//   - levels: the subdivision levels to generate
	//
	// Returns:
	//   - map[int]*mesh.Mesh: generated meshes keyed by level
	//   - error: the first error encountered, by ascending level
	BuildLevels(center mgl32.Vec3, radius float32, levels ...int) (map[int]*mesh.Mesh, error)

	// Close stops the worker pool. Builds still waiting on the pool and any later builds
	// fail with ErrBuilderClosed; Close returns once the running generation has finished.
	Close()
}

var _ Builder = &builder{}

// NewBuilder creates a Builder with its worker pool started.
// Defaults to 2 workers, a queue of 16 tasks, a 1 second idle timeout, and caching disabled.
//
// Parameters:
//   - options: functional options for pool sizing and caching
//
// Returns:
//   - Builder: the ready-to-use builder
func NewBuilder(options ...BuilderOption) Builder {
	b := &builder{
		mu:          &sync.Mutex{},
		workers:     2,
		queueSize:   16,
		idleTimeout: time.Second,
		cache:       make(map[cacheKey]*mesh.Mesh),
		pendingMu:   &sync.Mutex{},
		pending:     make(map[int]chan buildResult),
	}
	for _, opt := range options {
		opt(b)
	}
	b.pool = worker.NewDynamicWorkerPool(b.workers, b.queueSize, b.idleTimeout)
	return b
}

func (b *builder) Build(center mgl32.Vec3, radius float32, level int) (*mesh.Mesh, error) {
	key := cacheKey{center: center, radius: radius, level: level}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBuilderClosed
	}
	if m, ok := b.cache[key]; ok {
		b.mu.Unlock()
		return m, nil
	}
	done := b.submit(key)
	b.mu.Unlock()

	res := <-done
	if res.err != nil {
		return nil, res.err
	}

	b.store(key, res.mesh)
	return res.mesh, nil
}

func (b *builder) BuildLevels(center mgl32.Vec3, radius float32, levels ...int) (map[int]*mesh.Mesh, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBuilderClosed
	}

	// A WaitGroup gives a per-batch barrier; pool.Wait() would also wait on unrelated tasks.
	var wg sync.WaitGroup
	results := make(map[int]buildResult, len(levels))
	var resultsMu sync.Mutex
	for _, level := range levels {
		key := cacheKey{center: center, radius: radius, level: level}
		if m, ok := b.cache[key]; ok {
			results[level] = buildResult{mesh: m}
			continue
		}
		wg.Add(1)
		done := b.submit(key)
		go func(level int, key cacheKey) {
			defer wg.Done()
			res := <-done
			if res.err == nil {
				b.store(key, res.mesh)
			}
			resultsMu.Lock()
			results[level] = res
			resultsMu.Unlock()
		}(level, key)
	}
	b.mu.Unlock()
	wg.Wait()

	sorted := make([]int, 0, len(results))
	for level := range results {
		sorted = append(sorted, level)
	}
	sort.Ints(sorted)

	out := make(map[int]*mesh.Mesh, len(results))
	for _, level := range sorted {
		res := results[level]
		if res.err != nil {
			return nil, fmt.Errorf("icosphere: level %d: %w", level, res.err)
		}
		out[level] = res.mesh
	}
	return out, nil
}

func (b *builder) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.pool.ClearTaskQueue()

	b.pendingMu.Lock()
	pending := b.pending
	b.pending = make(map[int]chan buildResult)
	b.pendingMu.Unlock()
	for _, done := range pending {
		deliver(done, buildResult{err: ErrBuilderClosed})
	}

	// Stop waits for a running task to finish; its caller has already been released.
	b.pool.Stop()
}

// submit queues one generation on the pool. Callers must hold b.mu.
func (b *builder) submit(key cacheKey) <-chan buildResult {
	done := make(chan buildResult, 1)
	id := b.nextTaskID
	b.nextTaskID++

	b.pendingMu.Lock()
	b.pending[id] = done
	b.pendingMu.Unlock()

	b.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			m, err := Generate(key.center, key.radius, key.level)
			b.pendingMu.Lock()
			delete(b.pending, id)
			b.pendingMu.Unlock()
			deliver(done, buildResult{mesh: m, err: err})
			return m, err
		},
	})
	return done
}

// deliver hands res to a waiting caller unless a result is already there.
func deliver(done chan buildResult, res buildResult) {
	select {
	case done <- res:
	default:
	}
}

// store caches a finished mesh when caching is enabled.
func (b *builder) store(key cacheKey, m *mesh.Mesh) {
	if !b.cacheEnabled {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache[key] = m
}
