package canvas

import (
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/scene"
)

// ColorMatrix applies a 4x5 color transformation to unpremultiplied RGBA.
// The matrix is row-major, one row per output channel:
//
//	R' = M[0]*R + M[1]*G + M[2]*B + M[3]*A + M[4]
//	G' = M[5]*R + ...
//
// Channel values are in [0, 255]; the fifth column is an offset in the
// same range. Results are rounded and clamped.
type ColorMatrix struct {
	Name   string
	Matrix [20]float64
}

var _ scene.Filter = (*ColorMatrix)(nil)

func identityMatrix() [20]float64 {
	return [20]float64{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

func rgbMatrix(name string, m [9]float64, offset float64) *ColorMatrix {
	return &ColorMatrix{
		Name: name,
		Matrix: [20]float64{
			m[0], m[1], m[2], 0, offset,
			m[3], m[4], m[5], 0, offset,
			m[6], m[7], m[8], 0, offset,
			0, 0, 0, 1, 0,
		},
	}
}

// Brightness multiplies RGB by amount. 1 leaves the input unchanged.
func Brightness(amount float64) *ColorMatrix {
	return rgbMatrix("brightness", [9]float64{amount, 0, 0, 0, amount, 0, 0, 0, amount}, 0)
}

// Contrast scales RGB around mid-gray. 1 leaves the input unchanged.
func Contrast(amount float64) *ColorMatrix {
	return rgbMatrix("contrast", [9]float64{amount, 0, 0, 0, amount, 0, 0, 0, amount}, (0.5-0.5*amount)*255)
}

// Saturate scales saturation using Rec. 709 luma weights. 0 is grayscale.
func Saturate(s float64) *ColorMatrix {
	return rgbMatrix("saturate", [9]float64{
		0.213 + 0.787*s, 0.715 - 0.715*s, 0.072 - 0.072*s,
		0.213 - 0.213*s, 0.715 + 0.285*s, 0.072 - 0.072*s,
		0.213 - 0.213*s, 0.715 - 0.715*s, 0.072 + 0.928*s,
	}, 0)
}

// Grayscale desaturates by amount in [0, 1].
func Grayscale(amount float64) *ColorMatrix {
	a := 1 - amount
	return rgbMatrix("grayscale", [9]float64{
		0.2126 + 0.7874*a, 0.7152 - 0.7152*a, 0.0722 - 0.0722*a,
		0.2126 - 0.2126*a, 0.7152 + 0.2848*a, 0.0722 - 0.0722*a,
		0.2126 - 0.2126*a, 0.7152 - 0.7152*a, 0.0722 + 0.9278*a,
	}, 0)
}

// Sepia tones the input by amount in [0, 1].
func Sepia(amount float64) *ColorMatrix {
	a := 1 - amount
	return rgbMatrix("sepia", [9]float64{
		0.393 + 0.607*a, 0.769 - 0.769*a, 0.189 - 0.189*a,
		0.349 - 0.349*a, 0.686 + 0.314*a, 0.168 - 0.168*a,
		0.272 - 0.272*a, 0.534 - 0.534*a, 0.131 + 0.869*a,
	}, 0)
}

// HueRotate rotates hue by deg degrees.
func HueRotate(deg float64) *ColorMatrix {
	if math.Mod(deg, 360) == 0 {
		return &ColorMatrix{Name: "hue-rotate", Matrix: identityMatrix()}
	}
	rad := deg * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	return rgbMatrix("hue-rotate", [9]float64{
		0.213 + c*0.787 - s*0.213, 0.715 - c*0.715 - s*0.715, 0.072 - c*0.072 + s*0.928,
		0.213 - c*0.213 + s*0.143, 0.715 + c*0.285 + s*0.140, 0.072 - c*0.072 - s*0.283,
		0.213 - c*0.213 - s*0.787, 0.715 - c*0.715 + s*0.715, 0.072 + c*0.928 + s*0.072,
	}, 0)
}

// Invert inverts RGB by amount in [0, 1].
func Invert(amount float64) *ColorMatrix {
	k := 1 - 2*amount
	return rgbMatrix("invert", [9]float64{k, 0, 0, 0, k, 0, 0, 0, k}, amount*255)
}

// Opacity multiplies alpha by amount in [0, 1].
func Opacity(amount float64) *ColorMatrix {
	m := identityMatrix()
	m[18] = amount
	return &ColorMatrix{Name: "opacity", Matrix: m}
}

// IsIdentity reports whether the matrix leaves every pixel unchanged.
func (f *ColorMatrix) IsIdentity() bool {
	return f.Matrix == identityMatrix()
}

// Apply implements scene.Filter.
func (f *ColorMatrix) Apply(src, dst *gg.Pixmap, bounds scene.Rect) {
	x0, y0, x1, y1 := region(src, dst, bounds)
	if f.IsIdentity() {
		copyRegion(src, dst, x0, y0, x1, y1)
		return
	}

	m := &f.Matrix
	sd, dd := src.Data(), dst.Data()
	sw, dw := src.Width(), dst.Width()
	for y := y0; y < y1; y++ {
		si := (y*sw + x0) * 4
		di := (y*dw + x0) * 4
		for x := x0; x < x1; x++ {
			r := float64(sd[si])
			g := float64(sd[si+1])
			b := float64(sd[si+2])
			a := float64(sd[si+3])
			dd[di] = to8(m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4])
			dd[di+1] = to8(m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9])
			dd[di+2] = to8(m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14])
			dd[di+3] = to8(m[15]*r + m[16]*g + m[17]*b + m[18]*a + m[19])
			si += 4
			di += 4
		}
	}
}

// ExpandBounds implements scene.Filter. Color matrices never grow output.
func (f *ColorMatrix) ExpandBounds(input scene.Rect) scene.Rect {
	return input
}

func to8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// region clamps bounds to the pixels present in both src and dst.
func region(src, dst *gg.Pixmap, bounds scene.Rect) (x0, y0, x1, y1 int) {
	x0 = max(int(bounds.MinX), 0)
	y0 = max(int(bounds.MinY), 0)
	x1 = min(int(bounds.MaxX), src.Width(), dst.Width())
	y1 = min(int(bounds.MaxY), src.Height(), dst.Height())
	return x0, y0, x1, y1
}

func copyRegion(src, dst *gg.Pixmap, x0, y0, x1, y1 int) {
	if x1 <= x0 || src == dst {
		return
	}
	sd, dd := src.Data(), dst.Data()
	sw, dw := src.Width(), dst.Width()
	for y := y0; y < y1; y++ {
		copy(dd[(y*dw+x0)*4:(y*dw+x1)*4], sd[(y*sw+x0)*4:(y*sw+x1)*4])
	}
}
