package postfx

import "fmt"

// AllocationError reports a render target that could not be created or
// resized. It is fatal: the pipeline never retries at a lower resolution.
type AllocationError struct {
	Target string
	Width  int
	Height int
	Err    error
}

func (e *AllocationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("postfx: allocate %s (%dx%d): %v", e.Target, e.Width, e.Height, e.Err)
	}
	return fmt.Sprintf("postfx: allocate %s (%dx%d) failed", e.Target, e.Width, e.Height)
}

func (e *AllocationError) Unwrap() error { return e.Err }

// ShaderCompileError reports a pass program that failed to build.
type ShaderCompileError struct {
	Program string
	Err     error
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("postfx: compile %s: %v", e.Program, e.Err)
}

func (e *ShaderCompileError) Unwrap() error { return e.Err }

// BindingError reports a pass executed with a missing or unknown uniform.
// It always indicates a programming defect.
type BindingError struct {
	Pass    string
	Uniform string
	Reason  string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("postfx: pass %s: uniform %q %s", e.Pass, e.Uniform, e.Reason)
}
