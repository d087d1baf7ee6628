package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/gilbertgonz/lane-detection/internal/birdseye"
	"github.com/gilbertgonz/lane-detection/internal/config"
	"github.com/gilbertgonz/lane-detection/internal/source"
	"github.com/gilbertgonz/lane-detection/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func init() {
	Logf = func(string, ...interface{}) {}
}

// roadFrame draws two white lane stripes in camera space so that they land
// on rectified x ranges [40,70) and [560,590).
func roadFrame(t *testing.T, tr *birdseye.Transform) gocv.Mat {
	t.Helper()
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(50, 50, 50, 0), 900, 1280, gocv.MatTypeCV8UC3)
	for _, xs := range [][2]float64{{40, 70}, {560, 590}} {
		strip := []geometry.Point2D{{X: xs[0], Y: 0}, {X: xs[1], Y: 0}, {X: xs[1], Y: 480}, {X: xs[0], Y: 480}}
		pts := gocv.NewPointsVectorFromPoints([][]image.Point{geometry.ImagePoints(tr.ToCamera(strip))})
		gocv.FillPoly(&frame, pts, color.RGBA{R: 255, G: 255, B: 255})
		pts.Close()
	}
	return frame
}

type fakeSource struct {
	frames []gocv.Mat
	next   int
	err    error
}

func (f *fakeSource) Read(dst *gocv.Mat) error {
	if f.next >= len(f.frames) {
		if f.err != nil {
			return f.err
		}
		return source.ErrEndOfStream
	}
	f.frames[f.next].CopyTo(dst)
	f.next++
	return nil
}

func (f *fakeSource) Close() error { return nil }

type recordingSurface struct {
	shown    int
	stopAt   int
	showErr  error
	previewW int
	sceneW   int
}

func (r *recordingSurface) Show(preview, scene gocv.Mat) error {
	r.shown++
	r.previewW = preview.Cols()
	r.sceneW = scene.Cols()
	return r.showErr
}

func (r *recordingSurface) WaitKey(time.Duration) bool {
	return r.stopAt > 0 && r.shown >= r.stopAt
}

func (r *recordingSurface) Close() error { return nil }

func newPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p := config.DefaultParams()
	p.FrameDelayMs = 0
	p.LogEvery = 1
	pl, err := New(p)
	require.NoError(t, err)
	t.Cleanup(func() { pl.Close() })
	return pl
}

func TestProcessFrameFindsBothLanes(t *testing.T) {
	pl := newPipeline(t)
	frame := roadFrame(t, pl.Transform())
	defer frame.Close()

	res, err := pl.ProcessFrame(frame)
	require.NoError(t, err)
	defer res.Close()

	require.Len(t, res.Lanes.Left, 8)
	require.Len(t, res.Lanes.Right, 8)
	for _, p := range res.Lanes.Left {
		assert.InDelta(t, 55, p.X, 4)
	}
	for _, p := range res.Lanes.Right {
		assert.InDelta(t, 575, p.X, 4)
	}
	assert.Greater(t, res.Coverage, 0.05)

	// Camera-space points are the rectified ones through the inverse.
	back := pl.Transform().ToRectified(res.Camera.Left)
	for i := range back {
		assert.Less(t, back[i].Distance(res.Lanes.Left[i]), 1e-3)
	}

	assert.Equal(t, 640, res.Output.Scene.Cols())
	assert.Equal(t, 450, res.Output.Scene.Rows())
}

func TestProcessFrameEmpty(t *testing.T) {
	pl := newPipeline(t)
	m := gocv.NewMat()
	defer m.Close()
	_, err := pl.ProcessFrame(m)
	assert.Error(t, err)
}

func TestRunUntilEndOfStream(t *testing.T) {
	pl := newPipeline(t)
	frame := roadFrame(t, pl.Transform())
	defer frame.Close()

	src := &fakeSource{frames: []gocv.Mat{frame, frame, frame}}
	surface := &recordingSurface{}

	stats, err := pl.Run(context.Background(), src, surface)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Frames)
	assert.False(t, stats.Stopped)
	assert.Equal(t, 3, surface.shown)
	assert.Equal(t, 640, surface.previewW)
}

func TestRunStopsOnSurfaceRequest(t *testing.T) {
	pl := newPipeline(t)
	frame := roadFrame(t, pl.Transform())
	defer frame.Close()

	src := &fakeSource{frames: []gocv.Mat{frame, frame, frame, frame}}
	stats, err := pl.Run(context.Background(), src, &recordingSurface{stopAt: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Frames)
	assert.True(t, stats.Stopped)
}

func TestRunHonorsCancellation(t *testing.T) {
	pl := newPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{}
	stats, err := pl.Run(ctx, src, &recordingSurface{})
	require.NoError(t, err)
	assert.Zero(t, stats.Frames)
	assert.True(t, stats.Stopped)
	assert.Zero(t, src.next)
}

func TestRunPropagatesErrors(t *testing.T) {
	pl := newPipeline(t)
	readErr := errors.New("decoder fault")

	_, err := pl.Run(context.Background(), &fakeSource{err: readErr}, &recordingSurface{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, readErr))

	frame := roadFrame(t, pl.Transform())
	defer frame.Close()
	showErr := errors.New("window gone")
	_, err = pl.Run(context.Background(), &fakeSource{frames: []gocv.Mat{frame}}, &recordingSurface{showErr: showErr})
	require.Error(t, err)
	assert.True(t, errors.Is(err, showErr))
}

func TestNewRejectsInvalidParams(t *testing.T) {
	p := config.DefaultParams()
	p.GaussianKernel = 4
	_, err := New(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid params")
}

func TestStatsFPS(t *testing.T) {
	assert.Equal(t, 10.0, Stats{Frames: 20, Elapsed: 2 * time.Second}.FPS())
	assert.Zero(t, Stats{Frames: 3}.FPS())
}

func TestUpdateAppliesBetweenFrames(t *testing.T) {
	pl := newPipeline(t)
	frame := roadFrame(t, pl.Transform())
	defer frame.Close()

	surface := &recordingSurface{}
	_, err := pl.Run(context.Background(), &fakeSource{frames: []gocv.Mat{frame}}, surface)
	require.NoError(t, err)
	assert.Equal(t, 640, surface.sceneW)

	next := pl.Params()
	next.DisplayScale = 0.25
	require.NoError(t, pl.Update(next))
	assert.Equal(t, 0.5, pl.Params().DisplayScale, "not applied until the next frame")

	_, err = pl.Run(context.Background(), &fakeSource{frames: []gocv.Mat{frame}}, surface)
	require.NoError(t, err)
	assert.Equal(t, 320, surface.sceneW)
	assert.Equal(t, 0.25, pl.Params().DisplayScale)
}

func TestUpdateRejectsInvalidParams(t *testing.T) {
	pl := newPipeline(t)
	bad := pl.Params()
	bad.MorphKernel = 0
	assert.Error(t, pl.Update(bad))
	assert.Equal(t, 15, pl.Params().MorphKernel)
}
