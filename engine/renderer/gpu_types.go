package renderer

import (
	"encoding/binary"
	"math"
)

// GPUScalingUniformSize is the byte size of GPUScalingUniform.
const GPUScalingUniformSize = 16

// GPUScalingUniform is the vertex stage uniform at group 1, binding 0 of the sprite shader.
// It matches the WGSL struct:
//
//	struct Scaling {
//	    window_size: vec2f,
//	    scale: f32,
//	    bottom_offset: f32,
//	};
type GPUScalingUniform struct {
	WindowWidth  float32
	WindowHeight float32
	Scale        float32
	BottomOffset float32
}

// Marshal encodes the uniform in the little-endian layout the shader expects.
//
// Returns:
//   - []byte: GPUScalingUniformSize bytes
func (u GPUScalingUniform) Marshal() []byte {
	buf := make([]byte, GPUScalingUniformSize)
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(u.WindowWidth))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(u.WindowHeight))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(u.Scale))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(u.BottomOffset))
	return buf
}
