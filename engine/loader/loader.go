// Package loader reads character packs: atlas pages, their optional alpha masks and rig documents,
// from plain files or from inside zip archives.
package loader

import (
	"bytes"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-widget/common"
	"github.com/Carmen-Shannon/oxy-widget/engine/pose"
	"github.com/Carmen-Shannon/oxy-widget/engine/renderer/texture"
)

const (
	// AtlasFile and RigFile are the names of the atlas and rig documents inside a pack.
	AtlasFile = "char.atlas"
	RigFile   = "char.rig"

	// IdleAnimation is started on track 0 when the rig has it.
	IdleAnimation = "Idle"
)

// loader is the implementation of the Loader interface.
type loader struct {
	workers  int
	pool     worker.DynamicWorkerPool
	readFile func(path string) ([]byte, error)
}

// Loader decodes character assets. Atlas pages are decoded concurrently on a worker pool.
type Loader interface {
	// LoadTexture reads and decodes an image and its optional "[alpha]" mask.
	//
	// Parameters:
	//   - path: a plain or packed image path
	//   - config: the sampling configuration of the texture
	//
	// Returns:
	//   - *texture.Texture: the texture owning the decoded pixels
	//   - error: an error if the image cannot be read or decoded
	LoadTexture(path string, config texture.TextureConfig) (*texture.Texture, error)

	// LoadAtlas parses an atlas and loads all of its pages.
	//
	// Parameters:
	//   - path: a plain or packed atlas path; page names resolve relative to it
	//
	// Returns:
	//   - *common.Shared[*pose.Atlas]: a handle whose last release drops the page textures
	//   - error: the first page or parse error
	LoadAtlas(path string) (*common.Shared[*pose.Atlas], error)

	// LoadRig loads the atlas and rig of a character pack and starts the idle animation when the
	// rig has one.
	//
	// Parameters:
	//   - pack: the pack archive path
	//
	// Returns:
	//   - *pose.Rig: the rig, holding its own atlas handle
	//   - *common.Shared[*pose.Atlas]: the caller's atlas handle
	//   - error: an error if any asset fails to load
	LoadRig(pack string) (*pose.Rig, *common.Shared[*pose.Atlas], error)
}

var _ Loader = &loader{}

// NewLoader creates a Loader.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: the configured loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		workers:  4,
		readFile: ReadFile,
	}
	for _, option := range options {
		option(l)
	}
	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	return l
}

func (l *loader) LoadTexture(path string, config texture.TextureConfig) (*texture.Texture, error) {
	img, err := l.decode(path)
	if err != nil {
		return nil, err
	}
	return texture.NewTexture(path, textureImage(img), config), nil
}

func (l *loader) decode(path string) (*image.NRGBA, error) {
	data, err := l.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	img, err := DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	maskData, err := l.readFile(MaskPath(path))
	if err != nil {
		// the mask is optional
		return img, nil
	}
	mask, err := DecodeImage(maskData)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", MaskPath(path), err)
	}
	MergeAlphaMask(img, mask)
	return img, nil
}

func (l *loader) LoadAtlas(path string) (*common.Shared[*pose.Atlas], error) {
	data, err := l.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read atlas: %w", err)
	}
	atlas, err := pose.ParseAtlas(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse atlas %s: %w", path, err)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i, page := range atlas.Pages() {
		wg.Add(1)
		pageCap := page
		l.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()

				tex, err := l.loadPage(JoinPacked(path, pageCap.Name), pageCap)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					return nil, err
				}
				pageCap.SetTexture(tex)
				return nil, nil
			},
		})
	}
	wg.Wait()

	if firstErr != nil {
		atlas.Release()
		return nil, fmt.Errorf("failed to load atlas %s: %w", path, firstErr)
	}
	return common.NewShared(atlas, func(a *pose.Atlas) { a.Release() }), nil
}

func (l *loader) loadPage(path string, page *pose.Page) (*texture.Texture, error) {
	img, err := l.decode(path)
	if err != nil {
		return nil, err
	}
	if page.PMA {
		Unpremultiply(img)
	}
	if page.Width > 0 && page.Height > 0 && (img.Rect.Dx() != page.Width || img.Rect.Dy() != page.Height) {
		log.Printf("atlas page %s is %dx%d, atlas declares %dx%d", path, img.Rect.Dx(), img.Rect.Dy(), page.Width, page.Height)
	}
	return texture.NewTexture(path, textureImage(img), page.Config), nil
}

func (l *loader) LoadRig(pack string) (*pose.Rig, *common.Shared[*pose.Atlas], error) {
	atlas, err := l.LoadAtlas(pack + PackSeparator + AtlasFile)
	if err != nil {
		return nil, nil, err
	}

	data, err := l.readFile(pack + PackSeparator + RigFile)
	if err != nil {
		atlas.Release()
		return nil, nil, fmt.Errorf("failed to read rig: %w", err)
	}
	doc, err := pose.ParseRigData(bytes.NewReader(data))
	if err != nil {
		atlas.Release()
		return nil, nil, err
	}
	rigAtlas := atlas.Clone()
	rig, err := pose.NewRig(doc, rigAtlas)
	if err != nil {
		rigAtlas.Release()
		atlas.Release()
		return nil, nil, fmt.Errorf("failed to build rig: %w", err)
	}
	if rig.HasAnimation(IdleAnimation) {
		rig.SetTrack(0, IdleAnimation, true)
	}
	return rig, atlas, nil
}
