package lane

import (
	"image"
	"image/color"
)

// GrayMask adapts an *image.Gray to the Mask interface. Row and column are
// relative to the image bounds.
type GrayMask struct {
	*image.Gray
}

// NewGrayMask allocates an all-zero mask.
func NewGrayMask(cols, rows int) GrayMask {
	return GrayMask{Gray: image.NewGray(image.Rect(0, 0, cols, rows))}
}

// ToGrayMask converts any image to a mask by its luminance.
func ToGrayMask(img image.Image) GrayMask {
	if g, ok := img.(*image.Gray); ok {
		return GrayMask{Gray: g}
	}
	b := img.Bounds()
	g := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return GrayMask{Gray: g}
}

func (m GrayMask) Rows() int { return m.Rect.Dy() }

func (m GrayMask) Cols() int { return m.Rect.Dx() }

func (m GrayMask) GetUCharAt(row, col int) uint8 {
	return m.GrayAt(m.Rect.Min.X+col, m.Rect.Min.Y+row).Y
}

// Row returns the pixels of one row, aliasing the image buffer.
func (m GrayMask) Row(row int) []uint8 {
	start := m.PixOffset(m.Rect.Min.X, m.Rect.Min.Y+row)
	return m.Pix[start : start+m.Rect.Dx()]
}

// Fill sets every pixel in r to 255.
func (m GrayMask) Fill(r image.Rectangle) {
	r = r.Add(m.Rect.Min).Intersect(m.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.SetGray(x, y, color.Gray{Y: 255})
		}
	}
}
