package pose

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-widget/engine/renderer/texture"
)

// Page is one texture page of an atlas.
type Page struct {
	Name   string
	Width  int
	Height int
	Config texture.TextureConfig
	// PMA reports whether the page pixels are stored with premultiplied alpha.
	PMA bool

	tex *texture.Texture
}

// Texture returns the loaded page texture, or nil before SetTexture.
func (p *Page) Texture() *texture.Texture {
	return p.tex
}

// SetTexture attaches the loaded page texture.
func (p *Page) SetTexture(t *texture.Texture) {
	p.tex = t
}

// Region is a named rectangle of a page. U, V, U2 and V2 are normalized page coordinates with V
// growing downward, as packed.
type Region struct {
	Name   string
	Page   *Page
	X, Y   int
	Width  int
	Height int
	// Rotate reports whether the region was packed rotated by 90 degrees.
	Rotate bool

	U, V, U2, V2 float32
}

// QuadUVs returns the texture coordinates of the region corners in bottom-left, upper-left,
// upper-right, bottom-right order.
func (r *Region) QuadUVs() [8]float32 {
	if r.Rotate {
		return [8]float32{r.U, r.V, r.U2, r.V, r.U2, r.V2, r.U, r.V2}
	}
	return [8]float32{r.U, r.V2, r.U, r.V, r.U2, r.V, r.U2, r.V2}
}

// MapUV converts a region-relative coordinate in [0,1] to a page coordinate.
func (r *Region) MapUV(u, v float32) (float32, float32) {
	w := r.U2 - r.U
	h := r.V2 - r.V
	if r.Rotate {
		return r.U + v*w, r.V + (1-u)*h
	}
	return r.U + u*w, r.V + v*h
}

// Atlas is a parsed texture atlas in the libGDX text format.
type Atlas struct {
	pages   []*Page
	regions map[string]*Region
}

// Pages returns the atlas pages in file order.
func (a *Atlas) Pages() []*Page {
	return a.pages
}

// Region finds a region by name.
func (a *Atlas) Region(name string) (*Region, bool) {
	r, ok := a.regions[name]
	return r, ok
}

// Release drops every page texture so the texture cache can reclaim their GPU resources.
func (a *Atlas) Release() {
	for _, p := range a.pages {
		if p.tex != nil {
			p.tex.Release()
		}
	}
}

var filterNames = map[string]texture.Filter{
	"nearest":              texture.FilterNearest,
	"linear":               texture.FilterLinear,
	"mipmap":               texture.FilterMipMap,
	"mipmapnearestnearest": texture.FilterMipMapNearestNearest,
	"mipmaplinearnearest":  texture.FilterMipMapLinearNearest,
	"mipmapnearestlinear":  texture.FilterMipMapNearestLinear,
	"mipmaplinearlinear":   texture.FilterMipMapLinearLinear,
}

// ParseAtlas reads an atlas in the libGDX text format. Both the legacy layout (xy/size region
// fields, indented) and the newer layout (bounds field) are accepted.
//
// Parameters:
//   - r: the atlas text
//
// Returns:
//   - *Atlas: the parsed atlas; page textures are not loaded
//   - error: an error on malformed input
func ParseAtlas(r io.Reader) (*Atlas, error) {
	a := &Atlas{regions: make(map[string]*Region)}
	sc := bufio.NewScanner(r)

	var page *Page
	var region *Region
	expectPage := true
	lineNum := 0

	finishRegion := func() error {
		if region == nil {
			return nil
		}
		if err := region.computeUVs(); err != nil {
			return err
		}
		a.regions[region.Name] = region
		region = nil
		return nil
	}

	for sc.Scan() {
		lineNum++
		line := strings.TrimRight(sc.Text(), " \t\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if err := finishRegion(); err != nil {
				return nil, err
			}
			expectPage = true
			continue
		}

		key, value, isField := strings.Cut(trimmed, ":")
		if !isField {
			if err := finishRegion(); err != nil {
				return nil, err
			}
			if expectPage || page == nil {
				page = &Page{Name: trimmed, Config: texture.DefaultTextureConfig}
				a.pages = append(a.pages, page)
				expectPage = false
				continue
			}
			region = &Region{Name: trimmed, Page: page}
			continue
		}
		if page == nil {
			return nil, fmt.Errorf("atlas line %d: field %q before first page", lineNum, key)
		}

		key = strings.TrimSpace(key)
		values := splitValues(value)
		var err error
		if region == nil {
			err = page.setField(key, values)
		} else {
			err = region.setField(key, values)
		}
		if err != nil {
			return nil, fmt.Errorf("atlas line %d: %w", lineNum, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read atlas: %w", err)
	}
	if err := finishRegion(); err != nil {
		return nil, err
	}
	if len(a.pages) == 0 {
		return nil, fmt.Errorf("atlas has no pages")
	}
	return a, nil
}

func splitValues(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseInts(key string, values []string, n int) ([]int, error) {
	if len(values) < n {
		return nil, fmt.Errorf("%s: want %d values, got %d", key, n, len(values))
	}
	out := make([]int, n)
	for i := range n {
		v, err := strconv.Atoi(values[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out[i] = v
	}
	return out, nil
}

func (p *Page) setField(key string, values []string) error {
	switch key {
	case "size":
		v, err := parseInts(key, values, 2)
		if err != nil {
			return err
		}
		p.Width, p.Height = v[0], v[1]
	case "filter":
		if len(values) < 2 {
			return fmt.Errorf("filter: want min and mag values")
		}
		minF, ok := filterNames[strings.ToLower(values[0])]
		if !ok {
			return fmt.Errorf("filter: unknown value %q", values[0])
		}
		magF, ok := filterNames[strings.ToLower(values[1])]
		if !ok {
			return fmt.Errorf("filter: unknown value %q", values[1])
		}
		p.Config.MinFilter, p.Config.MagFilter = minF, magF
	case "repeat":
		mode := strings.ToLower(values[0])
		p.Config.WrapU, p.Config.WrapV = texture.WrapClampToEdge, texture.WrapClampToEdge
		if strings.Contains(mode, "x") {
			p.Config.WrapU = texture.WrapRepeat
		}
		if strings.Contains(mode, "y") {
			p.Config.WrapV = texture.WrapRepeat
		}
	case "pma":
		p.PMA = strings.EqualFold(values[0], "true")
	}
	// format and unknown page fields carry nothing the renderer needs
	return nil
}

func (r *Region) setField(key string, values []string) error {
	switch key {
	case "xy":
		v, err := parseInts(key, values, 2)
		if err != nil {
			return err
		}
		r.X, r.Y = v[0], v[1]
	case "size":
		v, err := parseInts(key, values, 2)
		if err != nil {
			return err
		}
		r.Width, r.Height = v[0], v[1]
	case "bounds":
		v, err := parseInts(key, values, 4)
		if err != nil {
			return err
		}
		r.X, r.Y, r.Width, r.Height = v[0], v[1], v[2], v[3]
	case "rotate":
		switch strings.ToLower(values[0]) {
		case "true", "90":
			r.Rotate = true
		case "false", "0":
			r.Rotate = false
		default:
			return fmt.Errorf("rotate: unsupported value %q", values[0])
		}
	}
	return nil
}

func (r *Region) computeUVs() error {
	pw, ph := float32(r.Page.Width), float32(r.Page.Height)
	if pw <= 0 || ph <= 0 {
		return fmt.Errorf("region %q: page %q has no size", r.Name, r.Page.Name)
	}
	w, h := r.Width, r.Height
	if r.Rotate {
		w, h = h, w
	}
	r.U = float32(r.X) / pw
	r.V = float32(r.Y) / ph
	r.U2 = float32(r.X+w) / pw
	r.V2 = float32(r.Y+h) / ph
	return nil
}
