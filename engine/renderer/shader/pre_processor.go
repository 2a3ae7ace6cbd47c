package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-fireball/engine/mesh"
	"github.com/Carmen-Shannon/oxy-fireball/engine/shading"
)

// registryEntry pairs an embedded WGSL snippet with the struct name it declares.
// Type is empty for snippets that only declare functions and constants.
type registryEntry struct {
	Source string
	Type   string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	registry             map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string

	// declarations collects group annotations during Process. Reset on every call.
	declarations []Annotation
}

// PreProcessor expands @oxy: annotations in WGSL source.
type PreProcessor interface {
	// Process replaces every annotation with its WGSL output. Each snippet is included at most
	// once; repeated includes of the same snippet are dropped.
	//
	// Parameters:
	//   - source: WGSL source containing annotations
	//
	// Returns:
	//   - string: the expanded WGSL source
	//   - error: an error if an annotation is malformed or unknown
	Process(source string) (string, error)

	// Declarations returns the group annotations found by the last Process call, in source order.
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the fireball snippets registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		registry: map[AnnotationArg]registryEntry{
			AnnotationArgVertex:           {Source: mesh.GPUVertexSource, Type: "VertexInput"},
			AnnotationArgFireballUniforms: {Source: shading.GPUFireballUniformsSource, Type: "FireballUniforms"},
			AnnotationArgNoise:            {Source: shading.NoiseSource},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform:   "var<uniform>",
			annotationArgStorageTypeRead:      "var<storage, read>",
			annotationArgStorageTypeReadWrite: "var<storage, read_write>",
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]
	included := make(map[AnnotationArg]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			key := a.Args[0]
			entry, ok := p.registry[key]
			if !ok {
				return "", fmt.Errorf("line %d: snippet %q is not registered", a.Line, key)
			}
			if included[key] {
				continue
			}
			included[key] = true
			out = append(out, entry.Source)
		case AnnotationTypeBindingGroup:
			entry, ok := p.registry[a.Args[2]]
			if !ok || entry.Type == "" {
				return "", fmt.Errorf("line %d: %q does not declare a struct", a.Line, a.Args[2])
			}
			if !included[a.Args[2]] {
				return "", fmt.Errorf("line %d: struct %q must be included before it is bound", a.Line, a.Args[2])
			}
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;",
				*a.Group, *a.Binding, p.addressSpaceRegistry[a.Args[0]], a.Args[1], entry.Type))
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
