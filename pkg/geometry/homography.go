package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrSingular is returned when a homography cannot be solved for or inverted.
var ErrSingular = errors.New("singular homography")

// Homography is a 3x3 projective transform stored row-major.
//
//	[h0 h1 h2]
//	[h3 h4 h5]
//	[h6 h7 h8]
type Homography [9]float64

// IdentityHomography returns the identity transform.
func IdentityHomography() Homography {
	return Homography{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// ComputeHomography solves for the homography mapping src[i] onto dst[i].
// h8 is fixed at 1, leaving eight unknowns for the four correspondences.
func ComputeHomography(src, dst [4]Point2D) (Homography, error) {
	A := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)

	for i := 0; i < 4; i++ {
		X, Y := src[i].X, src[i].Y
		x, y := dst[i].X, dst[i].Y
		r := 2 * i

		// x = (h0 X + h1 Y + h2) / (h6 X + h7 Y + 1)
		A.Set(r, 0, X)
		A.Set(r, 1, Y)
		A.Set(r, 2, 1)
		A.Set(r, 6, -X*x)
		A.Set(r, 7, -Y*x)
		b.SetVec(r, x)

		// y = (h3 X + h4 Y + h5) / (h6 X + h7 Y + 1)
		A.Set(r+1, 3, X)
		A.Set(r+1, 4, Y)
		A.Set(r+1, 5, 1)
		A.Set(r+1, 6, -X*y)
		A.Set(r+1, 7, -Y*y)
		b.SetVec(r+1, y)
	}

	var params mat.VecDense
	if err := params.SolveVec(A, b); err != nil {
		return Homography{}, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	var h Homography
	for i := 0; i < 8; i++ {
		h[i] = params.AtVec(i)
	}
	h[8] = 1
	return h, nil
}

// Dense returns the transform as a gonum matrix.
func (h Homography) Dense() *mat.Dense {
	data := make([]float64, 9)
	copy(data, h[:])
	return mat.NewDense(3, 3, data)
}

// Inverse returns the numerical inverse of the transform.
func (h Homography) Inverse() (Homography, error) {
	var inv mat.Dense
	if err := inv.Inverse(h.Dense()); err != nil {
		return Homography{}, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	var out Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*3+c] = inv.At(r, c)
		}
	}
	return out, nil
}

// Compose returns h * other, i.e. other applied first.
func (h Homography) Compose(other Homography) Homography {
	var out mat.Dense
	out.Mul(h.Dense(), other.Dense())

	var res Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			res[r*3+c] = out.At(r, c)
		}
	}
	return res
}

// MaxDeviation returns the largest absolute element difference from other.
func (h Homography) MaxDeviation(other Homography) float64 {
	var worst float64
	for i := range h {
		worst = math.Max(worst, math.Abs(h[i]-other[i]))
	}
	return worst
}

// Apply maps a point through the transform. Points on the line at infinity map
// to NaN.
func (h Homography) Apply(p Point2D) Point2D {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if w == 0 {
		return Point2D{X: math.NaN(), Y: math.NaN()}
	}
	return Point2D{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}
}

// ApplyAll maps every point in the slice.
func (h Homography) ApplyAll(points []Point2D) []Point2D {
	out := make([]Point2D, len(points))
	for i, p := range points {
		out[i] = h.Apply(p)
	}
	return out
}

// At returns the element at row r, column c.
func (h Homography) At(r, c int) float64 {
	return h[r*3+c]
}
