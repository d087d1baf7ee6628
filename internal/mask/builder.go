// Package mask isolates lane-marking pixels in a rectified frame.
package mask

import (
	"image"

	"github.com/gilbertgonz/lane-detection/internal/config"

	"gocv.io/x/gocv"
)

// Builder turns rectified color frames into 0/255 lane masks. The stage order
// and kernel sizes determine how well the tracer follows dashed markings.
type Builder struct {
	params config.Params
	kernel gocv.Mat
}

// NewBuilder allocates the structuring element once for all frames.
func NewBuilder(p config.Params) *Builder {
	return &Builder{
		params: p,
		kernel: gocv.GetStructuringElement(gocv.MorphRect, image.Pt(p.MorphKernel, p.MorphKernel)),
	}
}

// Close releases the structuring element.
func (b *Builder) Close() error {
	return b.kernel.Close()
}

// Build runs the threshold and morphology pipeline. The returned Mat has the
// size of rectified, one channel, and only 0 or 255 values. The caller owns it.
func (b *Builder) Build(rectified gocv.Mat) gocv.Mat {
	gray := b.grayscale(rectified)
	defer gray.Close()

	yellow := gocv.NewMat()
	defer yellow.Close()
	gocv.InRangeWithScalar(gray, lower(b.params.Yellow), upper(b.params.Yellow), &yellow)

	white := gocv.NewMat()
	defer white.Close()
	gocv.InRangeWithScalar(gray, lower(b.params.White), upper(b.params.White), &white)

	colorMask := gocv.NewMat()
	defer colorMask.Close()
	gocv.BitwiseOr(yellow, white, &colorMask)

	processed := gocv.NewMat()
	gocv.BitwiseAnd(gray, colorMask, &processed)

	// Smooth first so small gaps in dashed paint merge before morphology.
	k := b.params.GaussianKernel
	gocv.GaussianBlur(processed, &processed, image.Pt(k, k), 0, 0, gocv.BorderDefault)

	gocv.Dilate(processed, &processed, b.kernel)
	gocv.Erode(processed, &processed, b.kernel)
	gocv.MorphologyEx(processed, &processed, gocv.MorphClose, b.kernel)

	gocv.Threshold(processed, &processed, float32(b.params.BinaryThreshold), 255, gocv.ThresholdBinary)
	return processed
}

// grayscale converts with the RGB-order code on BGR frames, as the
// calibrated thresholds were tuned against that conversion.
func (b *Builder) grayscale(src gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	if src.Channels() == 1 {
		src.CopyTo(&gray)
		return gray
	}
	gocv.CvtColor(src, &gray, gocv.ColorRGBToGray)
	return gray
}

func lower(r config.ColorRange) gocv.Scalar {
	return gocv.NewScalar(r.Lower[0], r.Lower[1], r.Lower[2], 0)
}

func upper(r config.ColorRange) gocv.Scalar {
	return gocv.NewScalar(r.Upper[0], r.Upper[1], r.Upper[2], 0)
}

// Coverage returns the fraction of non-zero pixels in a mask.
func Coverage(m gocv.Mat) float64 {
	total := m.Rows() * m.Cols()
	if total == 0 {
		return 0
	}
	return float64(gocv.CountNonZero(m)) / float64(total)
}
