package texture

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-widget/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// TextureID identifies a texture for its whole lifetime. IDs are never reused within a process.
type TextureID uint64

var nextTextureID atomic.Uint64

// NewTextureID returns a fresh process-unique TextureID. Safe for concurrent use.
func NewTextureID() TextureID {
	return TextureID(nextTextureID.Add(1))
}

// Filter is the texture filter named by an atlas page.
type Filter int

const (
	FilterUnknown Filter = iota
	FilterNearest
	FilterLinear
	FilterMipMap
	FilterMipMapNearestNearest
	FilterMipMapLinearNearest
	FilterMipMapNearestLinear
	FilterMipMapLinearLinear
)

// Wrap is the texture wrap mode named by an atlas page.
type Wrap int

const (
	WrapMirroredRepeat Wrap = iota
	WrapClampToEdge
	WrapRepeat
)

// TextureConfig holds the sampling parameters of a texture as declared by its source.
type TextureConfig struct {
	MagFilter, MinFilter Filter
	WrapU, WrapV         Wrap
}

// DefaultTextureConfig is linear filtering with clamped edges.
var DefaultTextureConfig = TextureConfig{
	MagFilter: FilterLinear,
	MinFilter: FilterLinear,
	WrapU:     WrapClampToEdge,
	WrapV:     WrapClampToEdge,
}

// SamplerStagingData derives the GPU sampler configuration for this texture config.
// Every filter other than Nearest maps to linear filtering. The W address mode is always clamped.
//
// Returns:
//   - common.SamplerStagingData: the sampler parameters ready for GPU creation
func (c TextureConfig) SamplerStagingData() common.SamplerStagingData {
	return common.SamplerStagingData{
		AddressModeU:  addressMode(c.WrapU),
		AddressModeV:  addressMode(c.WrapV),
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     filterMode(c.MagFilter),
		MinFilter:     filterMode(c.MinFilter),
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}

func addressMode(w Wrap) wgpu.AddressMode {
	switch w {
	case WrapMirroredRepeat:
		return wgpu.AddressModeMirrorRepeat
	case WrapRepeat:
		return wgpu.AddressModeRepeat
	default:
		return wgpu.AddressModeClampToEdge
	}
}

func filterMode(f Filter) wgpu.FilterMode {
	if f == FilterNearest {
		return wgpu.FilterModeNearest
	}
	return wgpu.FilterModeLinear
}

// Image is decoded RGBA8 pixel data. The Texture that created it is its only long-lived strong owner.
type Image struct {
	Pixels []byte
	Width  uint32
	Height uint32
}

// StagingData returns the image as texture staging data for GPU upload.
func (img *Image) StagingData() common.TextureStagingData {
	return common.TextureStagingData{
		Pixels: img.Pixels,
		Width:  img.Width,
		Height: img.Height,
	}
}

// Texture is a renderable image paired with its sampling configuration and a stable identity.
type Texture struct {
	id     TextureID
	label  string
	image  *Image
	config TextureConfig
}

// NewTexture creates a texture with a fresh TextureID that owns the given image.
//
// Parameters:
//   - label: debug label used for GPU resources
//   - img: the decoded image; the texture becomes its owner
//   - config: the sampling configuration
//
// Returns:
//   - *Texture: the new texture
func NewTexture(label string, img *Image, config TextureConfig) *Texture {
	return &Texture{
		id:     NewTextureID(),
		label:  label,
		image:  img,
		config: config,
	}
}

func (t *Texture) ID() TextureID {
	return t.id
}

func (t *Texture) Label() string {
	return t.label
}

// Image returns the owned image, or nil once released.
func (t *Texture) Image() *Image {
	return t.image
}

func (t *Texture) Config() TextureConfig {
	return t.config
}

// Release drops the texture's reference to its image. Once nothing else holds the image,
// the cache reports the texture as evictable.
func (t *Texture) Release() {
	t.image = nil
}
