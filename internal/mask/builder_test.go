package mask

import (
	"image"
	"image/color"
	"testing"

	"github.com/gilbertgonz/lane-detection/internal/config"
	"github.com/gilbertgonz/lane-detection/internal/lane"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func newFrame(fill gocv.Scalar) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(fill, 480, 640, gocv.MatTypeCV8UC3)
}

func TestBuildBlackFrame(t *testing.T) {
	b := NewBuilder(config.DefaultParams())
	defer b.Close()

	frame := newFrame(gocv.NewScalar(0, 0, 0, 0))
	defer frame.Close()

	m := b.Build(frame)
	defer m.Close()

	assert.Equal(t, 480, m.Rows())
	assert.Equal(t, 640, m.Cols())
	assert.Equal(t, 1, m.Channels())
	assert.Zero(t, gocv.CountNonZero(m))
	assert.Zero(t, Coverage(m))
}

func TestBuildWhiteStripe(t *testing.T) {
	b := NewBuilder(config.DefaultParams())
	defer b.Close()

	// Dark asphalt with a mid-gray patch that sits outside both color ranges.
	frame := newFrame(gocv.NewScalar(60, 60, 60, 0))
	defer frame.Close()
	gocv.Rectangle(&frame, image.Rect(300, 0, 320, 480), color.RGBA{R: 255, G: 255, B: 255}, -1)
	gocv.Rectangle(&frame, image.Rect(100, 100, 200, 200), color.RGBA{R: 110, G: 110, B: 110}, -1)

	m := b.Build(frame)
	defer m.Close()

	assert.Equal(t, uint8(255), m.GetUCharAt(240, 310))
	assert.Equal(t, uint8(0), m.GetUCharAt(150, 150))
	assert.Equal(t, uint8(0), m.GetUCharAt(240, 50))

	cov := Coverage(m)
	assert.Greater(t, cov, 0.02)
	assert.Less(t, cov, 0.045)

	for y := 0; y < m.Rows(); y += 37 {
		for x := 0; x < m.Cols(); x += 13 {
			v := m.GetUCharAt(y, x)
			require.True(t, v == 0 || v == 255, "pixel (%d,%d) = %d", x, y, v)
		}
	}

	// The tracer reads the Mat directly or through the row view.
	start := config.DefaultParams().LeftWindow.WithX(250)
	points := lane.Trace(&m, start)
	for _, p := range points {
		assert.InDelta(t, 310, p.X, 2)
	}

	bin, err := NewBinary(m)
	require.NoError(t, err)
	assert.Equal(t, m.Rows(), bin.Rows())
	assert.Equal(t, m.Cols(), bin.Cols())
	assert.Equal(t, m.GetUCharAt(240, 310), bin.GetUCharAt(240, 310))
	assert.Equal(t, points, lane.Trace(bin, start))
}

func TestNewBinaryRejectsColor(t *testing.T) {
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 4, 4, gocv.MatTypeCV8UC3)
	defer m.Close()
	_, err := NewBinary(m)
	assert.Error(t, err)

	empty := gocv.NewMat()
	defer empty.Close()
	bin, err := NewBinary(empty)
	require.NoError(t, err)
	assert.Zero(t, bin.Rows())
}

func TestCoverageEmptyMat(t *testing.T) {
	m := gocv.NewMat()
	defer m.Close()
	assert.Zero(t, Coverage(m))
}
