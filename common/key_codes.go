package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyA            = 65  // A key (ASCII)
	KeyC            = 67  // C key (ASCII)
	KeyQ            = 81  // Q key (ASCII)
	KeyR            = 82  // R key (ASCII)
	KeyS            = 83  // S key (ASCII)
	KeyW            = 87  // W key (ASCII)
	KeyLeftBracket  = 91  // [ key (ASCII)
	KeyRightBracket = 93  // ] key (ASCII)
	KeyEsc          = 256 // Escape key (GLFW)
)
