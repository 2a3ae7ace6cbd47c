package shader

import "github.com/cogentcore/webgpu/wgpu"

// vertexFormatInfo is a vertex attribute format with its byte size.
type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
}

// wgslTypeLayout is the byte size and alignment of a WGSL type in host-shareable memory.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField is one member of a WGSL struct.
type parsedField struct {
	name      string
	typeName  string
	location  int // -1 when the field has no @location
	isBuiltin bool
}

// parsedStruct is a WGSL struct block.
type parsedStruct struct {
	name   string
	fields []parsedField
}
