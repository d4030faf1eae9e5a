package canvas

import (
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/scene"
)

// GaussianBlur blurs with standard deviation Sigma pixels. Pixels outside
// the bounds count as transparent black, so edges fade. Convolution runs
// on premultiplied color so transparent pixels do not bleed their RGB.
type GaussianBlur struct {
	Sigma float64
}

var _ scene.Filter = (*GaussianBlur)(nil)

// Apply implements scene.Filter.
func (f *GaussianBlur) Apply(src, dst *gg.Pixmap, bounds scene.Rect) {
	x0, y0, x1, y1 := region(src, dst, bounds)
	w, h := x1-x0, y1-y0
	if w <= 0 || h <= 0 {
		return
	}
	if f.Sigma <= 0 {
		copyRegion(src, dst, x0, y0, x1, y1)
		return
	}

	kernel := gaussianKernel(f.Sigma)
	r := len(kernel) / 2

	sd, sw := src.Data(), src.Width()
	buf := make([]float64, w*h*4)
	for y := 0; y < h; y++ {
		si := ((y0+y)*sw + x0) * 4
		bi := y * w * 4
		for x := 0; x < w; x++ {
			a := float64(sd[si+3])
			buf[bi] = float64(sd[si]) * a / 255
			buf[bi+1] = float64(sd[si+1]) * a / 255
			buf[bi+2] = float64(sd[si+2]) * a / 255
			buf[bi+3] = a
			si += 4
			bi += 4
		}
	}

	tmp := make([]float64, w*h*4)
	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			var acc [4]float64
			for k := -r; k <= r; k++ {
				xx := x + k
				if xx < 0 || xx >= w {
					continue
				}
				wt := kernel[k+r]
				i := (row + xx) * 4
				acc[0] += buf[i] * wt
				acc[1] += buf[i+1] * wt
				acc[2] += buf[i+2] * wt
				acc[3] += buf[i+3] * wt
			}
			o := (row + x) * 4
			tmp[o], tmp[o+1], tmp[o+2], tmp[o+3] = acc[0], acc[1], acc[2], acc[3]
		}
	}

	dd, dw := dst.Data(), dst.Width()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc [4]float64
			for k := -r; k <= r; k++ {
				yy := y + k
				if yy < 0 || yy >= h {
					continue
				}
				wt := kernel[k+r]
				i := (yy*w + x) * 4
				acc[0] += tmp[i] * wt
				acc[1] += tmp[i+1] * wt
				acc[2] += tmp[i+2] * wt
				acc[3] += tmp[i+3] * wt
			}
			di := ((y0+y)*dw + x0 + x) * 4
			a := acc[3]
			if a < 0.5 {
				dd[di], dd[di+1], dd[di+2], dd[di+3] = 0, 0, 0, 0
				continue
			}
			dd[di] = to8(acc[0] * 255 / a)
			dd[di+1] = to8(acc[1] * 255 / a)
			dd[di+2] = to8(acc[2] * 255 / a)
			dd[di+3] = to8(a)
		}
	}
}

// ExpandBounds implements scene.Filter. The surface clips blur output to
// its own size, so bounds do not grow.
func (f *GaussianBlur) ExpandBounds(input scene.Rect) scene.Rect {
	return input
}

// gaussianKernel returns normalized weights covering three standard
// deviations on each side.
func gaussianKernel(sigma float64) []float64 {
	r := int(math.Ceil(sigma * 3))
	if r < 1 {
		r = 1
	}
	k := make([]float64, 2*r+1)
	var sum float64
	for i := -r; i <= r; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		k[i+r] = v
		sum += v
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}
