// Package birdseye rectifies camera frames to a top-down view and maps
// rectified points back to the camera.
package birdseye

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/gilbertgonz/lane-detection/internal/config"
	"github.com/gilbertgonz/lane-detection/pkg/geometry"

	"gocv.io/x/gocv"
)

// ErrDegenerate is returned when the calibration quads do not define a
// usable perspective transform.
var ErrDegenerate = errors.New("degenerate perspective calibration")

// maxRoundTripDeviation bounds how far Forward*Inverse may stray from the
// identity before the calibration is treated as ill-conditioned.
const maxRoundTripDeviation = 1e-6

// Transform holds the fixed forward and inverse homographies for one camera
// calibration. It is safe to share between frames once built.
type Transform struct {
	Forward geometry.Homography // camera -> rectified
	Inverse geometry.Homography // rectified -> camera
	Size    geometry.Size       // rectified frame size

	forwardMat gocv.Mat
}

// New computes both matrices from the calibration in p.
func New(p config.Params) (*Transform, error) {
	t, err := newHomographies(p)
	if err != nil {
		return nil, err
	}
	t.forwardMat = toMat(t.Forward)
	return t, nil
}

// newHomographies builds the pure-Go half of a Transform, without the
// OpenCV matrix.
func newHomographies(p config.Params) (*Transform, error) {
	fwd, err := geometry.ComputeHomography(p.SourceQuad, p.DestQuad)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}
	inv, err := fwd.Inverse()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}
	if d := RoundTripDeviation(fwd, inv); d > maxRoundTripDeviation {
		return nil, fmt.Errorf("%w: forward*inverse is %.2e off identity", ErrDegenerate, d)
	}
	return &Transform{Forward: fwd, Inverse: inv, Size: p.RectifiedSize}, nil
}

// RoundTripDeviation reports how far fwd composed with inv is from the
// identity.
func RoundTripDeviation(fwd, inv geometry.Homography) float64 {
	return fwd.Compose(inv).MaxDeviation(geometry.IdentityHomography())
}

// toMat copies a homography into a 3x3 CV_64F Mat.
func toMat(h geometry.Homography) gocv.Mat {
	m := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m.SetDoubleAt(r, c, h.At(r, c))
		}
	}
	return m
}

// Warp rectifies a camera frame. The caller owns the returned Mat.
func (t *Transform) Warp(frame gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	gocv.WarpPerspectiveWithParams(frame, &dst, t.forwardMat, t.Size.ToImage(),
		gocv.InterpolationLinear, gocv.BorderConstant, color.RGBA{})
	return dst
}

// ToCamera maps rectified points into the camera frame.
func (t *Transform) ToCamera(points []geometry.Point2D) []geometry.Point2D {
	return t.Inverse.ApplyAll(points)
}

// ToRectified maps camera points into the rectified frame.
func (t *Transform) ToRectified(points []geometry.Point2D) []geometry.Point2D {
	return t.Forward.ApplyAll(points)
}

// Close releases the OpenCV matrix.
func (t *Transform) Close() error {
	return t.forwardMat.Close()
}
