package bind_group_provider

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithIndexCount presets the index count, for providers whose buffers are filled later.
//
// Parameters:
//   - count: the number of indices
//
// Returns:
//   - BindGroupProviderOption: option function to apply
func WithIndexCount(count int) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.indexCount = count
	}
}
