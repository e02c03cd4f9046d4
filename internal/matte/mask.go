package matte

import "math"

// Mask is a single-channel foreground probability grid in [0,1] with the
// same spatial dimensions as its source frame. It is consumed once by
// Compose and then discarded.
type Mask struct {
	Width  int
	Height int
	Pix    []float64
}

// NewMask allocates a zeroed mask.
func NewMask(w, h int) *Mask {
	return &Mask{Width: w, Height: h, Pix: make([]float64, w*h)}
}

// At returns the mask value at (x, y).
func (m *Mask) At(x, y int) float64 {
	return m.Pix[y*m.Width+x]
}

// Set stores a mask value at (x, y).
func (m *Mask) Set(x, y int, v float64) {
	m.Pix[y*m.Width+x] = v
}

// resizeBilinear scales a mask to the given dimensions with linear
// interpolation. Used to map the model-resolution mask back onto the
// original frame.
func resizeBilinear(m *Mask, w, h int) *Mask {
	if m.Width == w && m.Height == h {
		return m
	}
	out := NewMask(w, h)
	xScale := float64(m.Width) / float64(w)
	yScale := float64(m.Height) / float64(h)

	for y := 0; y < h; y++ {
		srcY := (float64(y)+0.5)*yScale - 0.5
		y0 := int(math.Floor(srcY))
		fy := srcY - float64(y0)
		y1 := y0 + 1
		if y0 < 0 {
			y0 = 0
		}
		if y1 >= m.Height {
			y1 = m.Height - 1
		}
		for x := 0; x < w; x++ {
			srcX := (float64(x)+0.5)*xScale - 0.5
			x0 := int(math.Floor(srcX))
			fx := srcX - float64(x0)
			x1 := x0 + 1
			if x0 < 0 {
				x0 = 0
			}
			if x1 >= m.Width {
				x1 = m.Width - 1
			}

			top := m.At(x0, y0)*(1-fx) + m.At(x1, y0)*fx
			bot := m.At(x0, y1)*(1-fx) + m.At(x1, y1)*fx
			out.Set(x, y, top*(1-fy)+bot*fy)
		}
	}
	return out
}

// binarize thresholds the mask in place: values above the threshold become 1,
// everything else 0.
func binarize(m *Mask, threshold float64) {
	for i, v := range m.Pix {
		if v > threshold {
			m.Pix[i] = 1
		} else {
			m.Pix[i] = 0
		}
	}
}

// erode3 applies one erosion pass with a 3x3 structuring element: a pixel
// stays foreground only if its full neighborhood is foreground.
func erode3(m *Mask) *Mask {
	out := NewMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			v := 1.0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= m.Width || ny >= m.Height {
						continue
					}
					if n := m.At(nx, ny); n < v {
						v = n
					}
				}
			}
			out.Set(x, y, v)
		}
	}
	return out
}

// dilate3 applies one dilation pass with a 3x3 structuring element: a pixel
// becomes foreground if any neighbor is foreground.
func dilate3(m *Mask) *Mask {
	out := NewMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			v := 0.0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= m.Width || ny >= m.Height {
						continue
					}
					if n := m.At(nx, ny); n > v {
						v = n
					}
				}
			}
			out.Set(x, y, v)
		}
	}
	return out
}

// gaussianKernel5 holds the separable 5-tap Gaussian weights (sigma 1.1,
// the value OpenCV derives for a 5x5 kernel), normalized to sum 1.
var gaussianKernel5 = func() [5]float64 {
	const sigma = 1.1
	var k [5]float64
	sum := 0.0
	for i := -2; i <= 2; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		k[i+2] = v
		sum += v
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}()

// blur5 applies a 5x5 Gaussian blur as two separable passes, softening the
// binary edge into a smooth alpha ramp. Edges are clamped.
func blur5(m *Mask) *Mask {
	tmp := NewMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			v := 0.0
			for i := -2; i <= 2; i++ {
				sx := x + i
				if sx < 0 {
					sx = 0
				} else if sx >= m.Width {
					sx = m.Width - 1
				}
				v += m.At(sx, y) * gaussianKernel5[i+2]
			}
			tmp.Set(x, y, v)
		}
	}

	out := NewMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			v := 0.0
			for i := -2; i <= 2; i++ {
				sy := y + i
				if sy < 0 {
					sy = 0
				} else if sy >= m.Height {
					sy = m.Height - 1
				}
				v += tmp.At(x, sy) * gaussianKernel5[i+2]
			}
			out.Set(x, y, v)
		}
	}
	return out
}
