package scene

import "github.com/Carmen-Shannon/oxy-fireball/engine/renderer/pipeline"

// SceneBuilderOption is a functional option for configuring a Scene.
type SceneBuilderOption func(s *scene)

// WithPipeline replaces the default fireball pipeline. The pipeline must declare its
// uniform buffer in bind group 0.
//
// Parameters:
//   - p: the pipeline to draw with
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithPipeline(p pipeline.Pipeline) SceneBuilderOption {
	return func(s *scene) {
		s.pipeline = p
	}
}
