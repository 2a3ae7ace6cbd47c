package params

// StateBuilderOption is a functional option for configuring a State.
type StateBuilderOption func(*stateImpl)

// WithObserver registers an observer at construction time. It cannot be unsubscribed.
//
// Parameters:
//   - fn: called with the new snapshot after every change
//
// Returns:
//   - StateBuilderOption: option function to apply
func WithObserver(fn Observer) StateBuilderOption {
	return func(s *stateImpl) {
		if fn == nil {
			return
		}
		s.observers = append(s.observers, observerEntry{id: s.nextID, fn: fn})
		s.nextID++
	}
}
