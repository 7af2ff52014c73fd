package renderer

import (
	"errors"
	"strings"
)

var (
	// ErrSurfaceLost reports that the surface must be reconfigured before it can render again.
	ErrSurfaceLost = errors.New("surface lost")
	// ErrSurfaceOutdated reports that the surface no longer matches the window, usually after a resize.
	ErrSurfaceOutdated = errors.New("surface outdated")
	// ErrOutOfMemory reports that the GPU ran out of memory. Rendering cannot continue.
	ErrOutOfMemory = errors.New("gpu out of memory")
	// ErrBatchTooLarge reports that a batch does not fit in the fixed-size vertex or index buffer.
	ErrBatchTooLarge = errors.New("batch exceeds gpu buffer size")
)

// IsRecoverable reports whether err is cured by reconfiguring the surface with the current window size.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrSurfaceLost) || errors.Is(err, ErrSurfaceOutdated)
}

// IsFatal reports whether err means the renderer cannot continue.
func IsFatal(err error) bool {
	return errors.Is(err, ErrOutOfMemory)
}

// classifySurfaceError maps a wgpu surface acquisition error onto the sentinels. The wgpu bindings
// report surface status through the error message only.
//
// Parameters:
//   - err: the error from acquiring the surface texture
//
// Returns:
//   - error: the matching sentinel wrapping err's message, ErrSurfaceOutdated when unclassified, or nil
func classifySurfaceError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "lost"):
		return &surfaceError{kind: ErrSurfaceLost, cause: err}
	case strings.Contains(msg, "memory"):
		return &surfaceError{kind: ErrOutOfMemory, cause: err}
	case strings.Contains(msg, "outdated"), strings.Contains(msg, "timeout"):
		return &surfaceError{kind: ErrSurfaceOutdated, cause: err}
	default:
		// an unknown acquire failure is retried through a reconfigure
		return &surfaceError{kind: ErrSurfaceOutdated, cause: err}
	}
}

// surfaceError carries a sentinel kind alongside the original wgpu error.
type surfaceError struct {
	kind  error
	cause error
}

func (e *surfaceError) Error() string {
	return e.kind.Error() + ": " + e.cause.Error()
}

func (e *surfaceError) Unwrap() []error {
	return []error{e.kind, e.cause}
}
