// annotations.go defines the @oxy: annotation syntax understood by the shader pre-processor.
// Annotations are single-line WGSL comments. An include splices a registered WGSL snippet
// into the shader; a group emits a @group/@binding declaration for a registered struct and
// is recorded so the renderer knows which uniform block lives where.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix marks an annotation inside a WGSL line comment.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects a registered WGSL snippet at the annotation site.
	//
	// Syntax: //@oxy:include <snippet>
	//
	// Example: //@oxy:include noise
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a @group/@binding variable declaration for a
	// registered struct and is appended to the pre-processor's declarations.
	//
	// Syntax: //@oxy:group <group> <binding> <address_space> <var_name> <struct>
	//
	// Example: //@oxy:group 0 0 storage_uniform uniforms fireball_uniforms
	AnnotationTypeBindingGroup AnnotationType = "group"
)

// Annotation is a single parsed @oxy: annotation.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments:
	//   - include: [0] = snippet key
	//   - group:   [0] = address space, [1] = var name, [2] = struct key
	Args []AnnotationArg

	// Line is the 1-based source line, used for error reporting.
	Line int

	// Group and Binding are set for group annotations only.
	Group   *int
	Binding *int
}

// AnnotationArg is a typed annotation argument.
type AnnotationArg string

// Snippet arguments. Each maps to an embedded .wgsl asset owned by a Go package.
const (
	// AnnotationArgVertex identifies the VertexInput struct (engine/mesh/assets/vertex.wgsl).
	AnnotationArgVertex AnnotationArg = "vertex"

	// AnnotationArgFireballUniforms identifies the FireballUniforms struct
	// (engine/shading/assets/fireball_uniforms.wgsl).
	AnnotationArgFireballUniforms AnnotationArg = "fireball_uniforms"

	// AnnotationArgNoise identifies the noise and banding functions (engine/shading/assets/noise.wgsl).
	// It declares no struct and cannot be bound.
	AnnotationArgNoise AnnotationArg = "noise"
)

// Address space arguments for group annotations.
const (
	annotationArgStorageTypeUniform   AnnotationArg = "storage_uniform"
	annotationArgStorageTypeRead      AnnotationArg = "storage_read"
	annotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

// validSnippets lists every argument accepted by include annotations.
var validSnippets = []AnnotationArg{
	AnnotationArgVertex,
	AnnotationArgFireballUniforms,
	AnnotationArgNoise,
}

// validStructTypes lists the snippets that declare a bindable struct.
var validStructTypes = []AnnotationArg{
	AnnotationArgVertex,
	AnnotationArgFireballUniforms,
}

var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
	annotationArgStorageTypeReadWrite,
}

// parseAnnotation parses one WGSL line. Lines without the prefix yield (nil, nil).
//
// Parameters:
//   - line: the raw WGSL source line
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	_, after, ok := strings.Cut(strings.TrimSpace(line), annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case annotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy include takes exactly one argument", lineNum)
		}
		if !slices.Contains(validSnippets, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown snippet %q in @oxy include", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case AnnotationTypeBindingGroup:
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @oxy group takes five arguments (group, binding, address space, name, struct)", lineNum)
		}
		group, err := strconv.Atoi(args[1])
		if err != nil || group < 0 {
			return nil, fmt.Errorf("line %d: invalid group number %q in @oxy group", lineNum, args[1])
		}
		binding, err := strconv.Atoi(args[2])
		if err != nil || binding < 0 {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @oxy group", lineNum, args[2])
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @oxy group", lineNum, args[3])
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[5])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy group", lineNum, args[5])
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}
