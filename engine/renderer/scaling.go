package renderer

// MinScale is the smallest scale the scaling uniform accepts.
const MinScale = 0.1

// ScalingState is the CPU side of the scaling uniform. Every mutator marks it dirty; the renderer
// uploads it on the next Update or frame.
type ScalingState struct {
	uniform GPUScalingUniform
	dirty   bool
}

// NewScalingState creates a dirty scaling state.
//
// Parameters:
//   - scale: the initial skeleton scale, clamped to MinScale
//   - bottomOffset: the initial distance in pixels between the skeleton origin and the window bottom
//
// Returns:
//   - *ScalingState: the scaling state
func NewScalingState(scale, bottomOffset float32) *ScalingState {
	return &ScalingState{
		uniform: GPUScalingUniform{Scale: max(scale, MinScale), BottomOffset: bottomOffset},
		dirty:   true,
	}
}

// Resize stores the logical window size, dividing the framebuffer size by the content scale.
//
// Parameters:
//   - width, height: the framebuffer size in pixels
//   - contentScale: the monitor content scale; values <= 0 are treated as 1
func (s *ScalingState) Resize(width, height int, contentScale float32) {
	if contentScale <= 0 {
		contentScale = 1
	}
	s.uniform.WindowWidth = float32(width) / contentScale
	s.uniform.WindowHeight = float32(height) / contentScale
	s.dirty = true
}

// Scale returns the skeleton scale.
func (s *ScalingState) Scale() float32 {
	return s.uniform.Scale
}

// SetScale sets the skeleton scale, clamped to MinScale.
func (s *ScalingState) SetScale(scale float32) {
	s.uniform.Scale = max(scale, MinScale)
	s.dirty = true
}

// AdjustScale adds delta to the scale, clamped to MinScale.
//
// Returns:
//   - float32: the resulting scale
func (s *ScalingState) AdjustScale(delta float32) float32 {
	s.SetScale(s.uniform.Scale + delta)
	return s.uniform.Scale
}

// BottomOffset returns the distance in pixels from the window bottom to the skeleton origin.
func (s *ScalingState) BottomOffset() float32 {
	return s.uniform.BottomOffset
}

// SetBottomOffset sets the distance in pixels from the window bottom to the skeleton origin.
func (s *ScalingState) SetBottomOffset(offset float32) {
	s.uniform.BottomOffset = offset
	s.dirty = true
}

// Uniform returns a copy of the uniform values.
func (s *ScalingState) Uniform() GPUScalingUniform {
	return s.uniform
}

// Dirty reports whether the uniform changed since the last Flush.
func (s *ScalingState) Dirty() bool {
	return s.dirty
}

// Flush hands the encoded uniform to write when dirty and clears the flag.
//
// Parameters:
//   - write: receives the encoded uniform bytes
//
// Returns:
//   - bool: true if write was called
func (s *ScalingState) Flush(write func(data []byte)) bool {
	if !s.dirty {
		return false
	}
	write(s.uniform.Marshal())
	s.dirty = false
	return true
}
