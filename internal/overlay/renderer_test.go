package overlay

import (
	"testing"

	"github.com/gilbertgonz/lane-detection/internal/birdseye"
	"github.com/gilbertgonz/lane-detection/internal/config"
	"github.com/gilbertgonz/lane-detection/internal/lane"
	"github.com/gilbertgonz/lane-detection/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func fixture(t *testing.T, scale float64) (*birdseye.Transform, *Renderer, gocv.Mat, gocv.Mat, lane.Lanes) {
	t.Helper()
	p := config.DefaultParams()
	tr, err := birdseye.New(p)
	require.NoError(t, err)

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(100, 100, 100, 0), 720, 1280, gocv.MatTypeCV8UC3)
	mask := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 480, 640, gocv.MatTypeCV8U)
	lanes := lane.TraceLanes(&mask, p)
	return tr, NewRenderer(tr, p.OverlayAlpha, scale), frame, mask, lanes
}

func TestRenderSizes(t *testing.T) {
	tr, r, frame, mask, lanes := fixture(t, 0.5)
	defer tr.Close()
	defer frame.Close()
	defer mask.Close()

	out := r.Render(frame, mask, lanes)
	defer out.Close()

	assert.Equal(t, 480, out.Preview.Rows())
	assert.Equal(t, 640, out.Preview.Cols())
	assert.Equal(t, 3, out.Preview.Channels())
	assert.Equal(t, 360, out.Scene.Rows())
	assert.Equal(t, 640, out.Scene.Cols())
}

func TestRenderPreviewTraces(t *testing.T) {
	tr, r, frame, mask, lanes := fixture(t, 1)
	defer tr.Close()
	defer frame.Close()
	defer mask.Close()

	out := r.Render(frame, mask, lanes)
	defer out.Close()

	left := out.Preview.GetVecbAt(200, 60)
	assert.Equal(t, []uint8{255, 0, 0}, []uint8{left[0], left[1], left[2]})
	right := out.Preview.GetVecbAt(200, 569)
	assert.Equal(t, []uint8{0, 0, 255}, []uint8{right[0], right[1], right[2]})
	background := out.Preview.GetVecbAt(200, 320)
	assert.Equal(t, []uint8{0, 0, 0}, []uint8{background[0], background[1], background[2]})
}

func TestRenderSceneBlendsLaneArea(t *testing.T) {
	tr, r, frame, mask, lanes := fixture(t, 1)
	defer tr.Close()
	defer frame.Close()
	defer mask.Close()

	out := r.Render(frame, mask, lanes)
	defer out.Close()

	inside := tr.ToCamera([]geometry.Point2D{{X: 320, Y: 240}})[0].ImagePoint()
	px := out.Scene.GetVecbAt(inside.Y, inside.X)
	assert.InDelta(t, 100+0.4*255, float64(px[0]), 1)
	assert.Equal(t, uint8(100), px[1])
	assert.Equal(t, uint8(100), px[2])

	outside := out.Scene.GetVecbAt(10, 10)
	assert.Equal(t, uint8(100), outside[0])

	// Input frame is untouched.
	assert.Equal(t, uint8(100), frame.GetVecbAt(inside.Y, inside.X)[0])
}
