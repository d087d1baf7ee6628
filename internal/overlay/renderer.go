// Package overlay draws traced lanes onto the mask preview and the camera frame.
package overlay

import (
	"image"
	"image/color"

	"github.com/gilbertgonz/lane-detection/internal/birdseye"
	"github.com/gilbertgonz/lane-detection/internal/lane"
	"github.com/gilbertgonz/lane-detection/pkg/colorutil"
	"github.com/gilbertgonz/lane-detection/pkg/geometry"

	"gocv.io/x/gocv"
)

const (
	laneLineThickness  = 3
	traceLineThickness = 1
)

// Output holds the two rendered views for one frame. Close releases both.
type Output struct {
	Preview gocv.Mat // rectified mask with raw traces
	Scene   gocv.Mat // camera frame with lane overlay, display-scaled
}

// Close releases both images.
func (o *Output) Close() error {
	o.Preview.Close()
	return o.Scene.Close()
}

// Renderer draws lanes using a fixed transform and blend settings.
type Renderer struct {
	transform *birdseye.Transform
	alpha     float64
	scale     float64
}

// NewRenderer returns a renderer that blends the lane polygon at alpha and
// resizes the camera view by scale.
func NewRenderer(t *birdseye.Transform, alpha, scale float64) *Renderer {
	return &Renderer{transform: t, alpha: alpha, scale: scale}
}

// Render builds the preview from the rectified mask and the scene from the
// camera frame. Neither input is modified.
func (r *Renderer) Render(frame, mask gocv.Mat, lanes lane.Lanes) Output {
	return Output{
		Preview: r.preview(mask, lanes),
		Scene:   r.scene(frame, lanes.Map(r.transform.ToCamera)),
	}
}

func (r *Renderer) preview(mask gocv.Mat, lanes lane.Lanes) gocv.Mat {
	out := gocv.NewMat()
	gocv.CvtColor(mask, &out, gocv.ColorGrayToBGR)
	drawPolyline(&out, lanes.Left, colorutil.LeftTrace, traceLineThickness)
	drawPolyline(&out, lanes.Right, colorutil.RightTrace, traceLineThickness)
	return out
}

func (r *Renderer) scene(frame gocv.Mat, camera lane.Lanes) gocv.Mat {
	canvas := frame.Clone()
	for _, side := range lane.Sides {
		drawPolyline(&canvas, camera.Edge(side), colorutil.LaneLine, laneLineThickness)
	}

	fill := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), frame.Rows(), frame.Cols(), frame.Type())
	defer fill.Close()
	if ring := geometry.ImagePoints(camera.Polygon()); len(ring) >= 3 {
		pts := gocv.NewPointsVectorFromPoints([][]image.Point{ring})
		gocv.FillPoly(&fill, pts, colorutil.LaneFill)
		pts.Close()
	}
	gocv.AddWeighted(canvas, 1, fill, r.alpha, 0, &canvas)

	if r.scale == 1 {
		return canvas
	}
	defer canvas.Close()
	scaled := gocv.NewMat()
	gocv.Resize(canvas, &scaled, image.Point{}, r.scale, r.scale, gocv.InterpolationLinear)
	return scaled
}

func drawPolyline(img *gocv.Mat, points []geometry.Point2D, c color.RGBA, thickness int) {
	pts := geometry.ImagePoints(points)
	for i := 0; i+1 < len(pts); i++ {
		gocv.Line(img, pts[i], pts[i+1], c, thickness)
	}
}
