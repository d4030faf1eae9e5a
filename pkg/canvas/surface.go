// Package canvas is an offscreen drawing surface with a filter chain,
// modeled on the 2D canvas: set a filter expression, draw images through
// it, export the pixels.
package canvas

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/scene"
	"golang.org/x/image/draw"
)

// MaxDimension caps each side of a surface.
const MaxDimension = 16384

var ErrBadSize = errors.New("invalid surface size")

// Surface is an in-memory RGBA pixel buffer (unpremultiplied) with an
// active filter chain applied to everything drawn onto it.
type Surface struct {
	pm     *gg.Pixmap
	filter string
	chain  *scene.FilterChain
}

// NewSurface allocates a transparent surface.
func NewSurface(width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadSize, width, height)
	}
	return &Surface{
		pm:     gg.NewPixmap(width, height),
		filter: "none",
		chain:  scene.NewFilterChain(),
	}, nil
}

func (s *Surface) Width() int  { return s.pm.Width() }
func (s *Surface) Height() int { return s.pm.Height() }

// Filter returns the active filter expression.
func (s *Surface) Filter() string {
	return s.filter
}

// SetFilter replaces the active filter chain. An expression that does not
// parse leaves the current chain in place and returns the parse error.
func (s *Surface) SetFilter(expr string) error {
	fs, err := ParseFilter(expr)
	if err != nil {
		return err
	}
	s.chain = scene.NewFilterChain(fs...)
	s.filter = expr
	return nil
}

// DrawImage draws img with its top-left corner at (x, y), at native size,
// through the active filter chain, compositing source-over.
func (s *Surface) DrawImage(img image.Image, x, y int) {
	w, h := s.Width(), s.Height()
	bounds := image.Rect(0, 0, w, h)

	layer := image.NewNRGBA(bounds)
	sb := img.Bounds()
	draw.Draw(layer, sb.Sub(sb.Min).Add(image.Pt(x, y)), img, sb.Min, draw.Src)

	src := gg.NewPixmap(w, h)
	copy(src.Data(), layer.Pix)

	filtered := src
	if !s.chain.IsEmpty() {
		filtered = gg.NewPixmap(w, h)
		s.chain.Apply(src, filtered, scene.Rect{MaxX: float32(w), MaxY: float32(h)})
	}
	composite(filtered, s.pm)
}

// Pixmap exposes the backing pixel buffer.
func (s *Surface) Pixmap() *gg.Pixmap {
	return s.pm
}

// Image returns the surface pixels as an NRGBA image sharing the buffer.
func (s *Surface) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    s.pm.Data(),
		Stride: s.Width() * 4,
		Rect:   image.Rect(0, 0, s.Width(), s.Height()),
	}
}

// composite blends src over dst (same size, unpremultiplied RGBA).
func composite(src, dst *gg.Pixmap) {
	sd, dd := src.Data(), dst.Data()
	for i := 0; i < len(sd); i += 4 {
		sa := sd[i+3]
		da := dd[i+3]
		switch {
		case sa == 0:
			continue
		case sa == 255 || da == 0:
			copy(dd[i:i+4], sd[i:i+4])
			continue
		}
		as := float64(sa) / 255
		ad := float64(da) / 255
		ao := as + ad*(1-as)
		for c := 0; c < 3; c++ {
			v := (float64(sd[i+c])*as + float64(dd[i+c])*ad*(1-as)) / ao
			dd[i+c] = to8(v)
		}
		dd[i+3] = to8(ao * 255)
	}
}
