package renderer

import (
	_ "embed"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-widget/common"
	"github.com/Carmen-Shannon/oxy-widget/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-widget/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-widget/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-widget/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/sprite.wgsl
var spriteShaderSource string

const (
	textureGroup = 0
	scalingGroup = 1
)

type wgpuRendererBackend struct {
	mu       *sync.Mutex
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	alphaMode     wgpu.CompositeAlphaMode
	presentMode   wgpu.PresentMode // defaults to PresentModeFifo (VSync)
	bufferSize    uint64

	sprite   pipeline.Pipeline
	geometry bind_group_provider.BindGroupProvider
	scaling  bind_group_provider.BindGroupProvider

	// surface texture acquired by BeginFrame, released by Present or DiscardFrame
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ RendererBackend = &wgpuRendererBackend{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, bufferSize uint64) (*wgpuRendererBackend, error) {
	runtime.LockOSThread()
	b := &wgpuRendererBackend{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		bufferSize:  bufferSize,
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	b.adapter = adapter

	limits := wgpu.DefaultLimits()
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Widget Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	b.device = device
	b.queue = device.GetQueue()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		b.Release()
		return nil, errors.New("surface reports no supported formats")
	}
	b.surfaceFormat = capabilities.Formats[0]
	b.alphaMode = pickAlphaMode(capabilities.AlphaModes)

	if err := b.createSpritePipeline(); err != nil {
		b.Release()
		return nil, err
	}
	if err := b.createFrameBuffers(); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

// pickAlphaMode prefers compositing modes that keep the window background see-through.
func pickAlphaMode(modes []wgpu.CompositeAlphaMode) wgpu.CompositeAlphaMode {
	for _, want := range []wgpu.CompositeAlphaMode{wgpu.CompositeAlphaModePremultiplied, wgpu.CompositeAlphaModeUnpremultiplied} {
		if slices.Contains(modes, want) {
			return want
		}
	}
	if len(modes) > 0 {
		return modes[0]
	}
	return wgpu.CompositeAlphaModeAuto
}

func isSrgb(format wgpu.TextureFormat) bool {
	return format == wgpu.TextureFormatBGRA8UnormSrgb || format == wgpu.TextureFormatRGBA8UnormSrgb
}

func (b *wgpuRendererBackend) createSpritePipeline() error {
	vs, err := shader.NewShader("sprite", shader.ShaderTypeVertex, spriteShaderSource)
	if err != nil {
		return err
	}
	fs, err := shader.NewShader("sprite", shader.ShaderTypeFragment, spriteShaderSource)
	if err != nil {
		return err
	}
	p := pipeline.NewPipeline("sprite", pipeline.WithVertexShader(vs), pipeline.WithFragmentShader(fs))

	merged := p.BindGroupLayoutDescriptors()
	maxGroup := -1
	for g := range merged {
		maxGroup = max(maxGroup, g)
	}
	layouts := make([]*wgpu.BindGroupLayout, maxGroup+1)
	for g, desc := range merged {
		desc.Label = fmt.Sprintf("%s group %d", p.PipelineKey(), g)
		layout, layoutErr := b.device.CreateBindGroupLayout(&desc)
		if layoutErr != nil {
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, layoutErr)
		}
		layouts[g] = layout
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	vsModule, err := b.device.CreateShaderModule(vs.Module())
	if err != nil {
		return fmt.Errorf("failed to compile vertex shader: %w", err)
	}
	defer vsModule.Release()
	fsModule, err := b.device.CreateShaderModule(fs.Module())
	if err != nil {
		return fmt.Errorf("failed to compile fragment shader: %w", err)
	}
	defer fsModule.Release()

	target := wgpu.ColorTargetState{
		Format:    b.surfaceFormat,
		WriteMask: p.WriteMask(),
	}
	if p.BlendEnabled() {
		target.Blend = p.BlendState()
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vsModule,
			EntryPoint: vs.EntryPoint(),
			Buffers:    vs.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fsModule,
			EntryPoint: fs.EntryPoint(),
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: p.SampleCount(),
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create sprite pipeline: %w", err)
	}
	p.SetRenderPipeline(created, layouts)
	b.sprite = p
	return nil
}

// createFrameBuffers allocates the fixed vertex and index buffers shared by every batch and the
// scaling uniform with its bind group.
func (b *wgpuRendererBackend) createFrameBuffers() error {
	vertex, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Frame Vertex Buffer",
		Size:  b.bufferSize,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	index, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Frame Index Buffer",
		Size:  b.bufferSize,
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vertex.Release()
		return err
	}
	b.geometry = bind_group_provider.NewBindGroupProvider("Frame", bind_group_provider.WithGeometryBuffers(vertex, index))

	uniform, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Scaling Uniform",
		Size:  GPUScalingUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	b.scaling = bind_group_provider.NewBindGroupProvider("Scaling", bind_group_provider.WithBuffer(0, uniform))
	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Scaling Bind Group",
		Layout: b.sprite.BindGroupLayout(scalingGroup),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: uniform, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return err
	}
	b.scaling.SetBindGroup(bindGroup)
	return nil
}

func (b *wgpuRendererBackend) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   b.alphaMode,
	})
}

func (b *wgpuRendererBackend) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackend) CreateTexture(label string, staging common.TextureStagingData, sampler common.SamplerStagingData) (texture.Resource, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	format := wgpu.TextureFormatRGBA8Unorm
	if isSrgb(b.surfaceFormat) {
		format = wgpu.TextureFormatRGBA8UnormSrgb
	}
	size := wgpu.Extent3D{Width: staging.Width, Height: staging.Height, DepthOrArrayLayers: 1}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}
	provider := bind_group_provider.NewBindGroupProvider(label)

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		staging.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  staging.Width * 4,
			RowsPerImage: staging.Height,
		},
		&size,
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}
	provider.SetTexture(0, tex, view)

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label + " Sampler",
		AddressModeU:  common.Coalesce(sampler.AddressModeU, wgpu.AddressModeClampToEdge),
		AddressModeV:  common.Coalesce(sampler.AddressModeV, wgpu.AddressModeClampToEdge),
		AddressModeW:  common.Coalesce(sampler.AddressModeW, wgpu.AddressModeClampToEdge),
		MagFilter:     common.Coalesce(sampler.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(sampler.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(sampler.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   sampler.LodMinClamp,
		LodMaxClamp:   common.Coalesce(sampler.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(sampler.MaxAnisotropy, 1),
	})
	if err != nil {
		provider.Release()
		return nil, err
	}
	provider.SetSampler(1, samp)

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label + " Bind Group",
		Layout: b.sprite.BindGroupLayout(textureGroup),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view},
			{Binding: 1, Sampler: samp},
		},
	})
	if err != nil {
		provider.Release()
		return nil, err
	}
	provider.SetBindGroup(bindGroup)
	return provider, nil
}

func (b *wgpuRendererBackend) WriteUniform(data []byte) {
	b.writeBuffers([]bind_group_provider.BufferWrite{{Provider: b.scaling, Binding: 0, Data: data}})
}

func (b *wgpuRendererBackend) writeBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackend) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// acquiring twice fails in wgpu-native with "Surface image is already acquired"
	if b.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return classifySurfaceError(err)
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackend) ClearFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.submitPass(true, nil)
}

func (b *wgpuRendererBackend) DrawBatch(vertexData, indexData []byte, indexCount uint32, tex texture.Resource, clear bool) error {
	provider, ok := tex.(bind_group_provider.BindGroupProvider)
	if !ok || provider.BindGroup() == nil {
		return fmt.Errorf("batch texture %T has no bind group", tex)
	}
	if uint64(len(vertexData)) > b.bufferSize || uint64(len(indexData)) > b.bufferSize {
		return fmt.Errorf("%w: %d vertex bytes and %d index bytes, limit %d", ErrBatchTooLarge, len(vertexData), len(indexData), b.bufferSize)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	vertexBuffer := b.geometry.VertexBuffer()
	indexBuffer := b.geometry.IndexBuffer()
	b.queue.WriteBuffer(vertexBuffer, 0, vertexData)
	b.queue.WriteBuffer(indexBuffer, 0, indexData)

	return b.submitPass(clear, func(pass *wgpu.RenderPassEncoder) {
		pass.SetPipeline(b.sprite.RenderPipeline())
		pass.SetBindGroup(textureGroup, provider.BindGroup(), nil)
		pass.SetBindGroup(scalingGroup, b.scaling.BindGroup(), nil)
		pass.SetVertexBuffer(0, vertexBuffer, 0, uint64(len(vertexData)))
		pass.SetIndexBuffer(indexBuffer, wgpu.IndexFormatUint16, 0, uint64(len(indexData)))
		pass.DrawIndexed(indexCount, 1, 0, 0, 0)
	})
}

// submitPass encodes one render pass over the acquired frame view and submits it.
// The caller holds b.mu.
func (b *wgpuRendererBackend) submitPass(clear bool, draw func(pass *wgpu.RenderPassEncoder)) error {
	if b.frameView == nil {
		return errors.New("no frame acquired")
	}

	loadOp := wgpu.LoadOpLoad
	if clear {
		loadOp = wgpu.LoadOpClear
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       b.frameView,
				LoadOp:     loadOp,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 0},
			},
		},
	})
	if draw != nil {
		draw(pass)
	}
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer commandBuffer.Release()
	b.queue.Submit(commandBuffer)
	return nil
}

func (b *wgpuRendererBackend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.releaseFrame()
}

func (b *wgpuRendererBackend) DiscardFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseFrame()
}

func (b *wgpuRendererBackend) releaseFrame() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseFrame()
	if b.geometry != nil {
		b.geometry.Release()
		b.geometry = nil
	}
	if b.scaling != nil {
		b.scaling.Release()
		b.scaling = nil
	}
	if b.sprite != nil {
		b.sprite.Release()
		b.sprite = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
