// Package render produces the filtered preview of a loaded image.
package render

import (
	"context"
	"fmt"
	"time"

	"thirdcoast.systems/twpics/pkg/canvas"
	"thirdcoast.systems/twpics/pkg/filters"
	"thirdcoast.systems/twpics/pkg/imageload"
)

// Preview is the rendered, re-encoded result of applying a filter set to
// a loaded image.
type Preview struct {
	DataURL     string
	ContentType string
	Bytes       []byte
	Filter      string
	Width       int
	Height      int
	Elapsed     time.Duration
}

// Renderer draws images through a filter chain on an offscreen surface.
type Renderer struct {
	Encoding canvas.Encoding
}

// New returns a renderer that exports with enc.
func New(enc canvas.Encoding) *Renderer {
	return &Renderer{Encoding: enc}
}

// Render allocates a surface matching the image, sets its filter chain to
// the composed filter set, draws the image once at (0,0) and exports the
// result. The source image is only read.
func (r *Renderer) Render(ctx context.Context, img *imageload.LoadedImage, set filters.FilterSet) (*Preview, error) {
	if img == nil || img.Image == nil {
		return nil, fmt.Errorf("render: no image loaded")
	}
	start := time.Now()

	surface, err := canvas.NewSurface(img.Width, img.Height)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	expr := filters.Compose(set)
	if err := surface.SetFilter(expr); err != nil {
		return nil, fmt.Errorf("render: set filter: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	surface.DrawImage(img.Image, 0, 0)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := surface.Bytes(r.Encoding)
	if err != nil {
		return nil, fmt.Errorf("render: encode: %w", err)
	}

	return &Preview{
		DataURL:     canvas.EncodeDataURL(r.Encoding.ContentType(), b),
		ContentType: r.Encoding.ContentType(),
		Bytes:       b,
		Filter:      expr,
		Width:       img.Width,
		Height:      img.Height,
		Elapsed:     time.Since(start),
	}, nil
}
