// Package pipeline runs the per-frame lane detection loop.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gilbertgonz/lane-detection/internal/birdseye"
	"github.com/gilbertgonz/lane-detection/internal/config"
	"github.com/gilbertgonz/lane-detection/internal/display"
	"github.com/gilbertgonz/lane-detection/internal/lane"
	"github.com/gilbertgonz/lane-detection/internal/mask"
	"github.com/gilbertgonz/lane-detection/internal/overlay"
	"github.com/gilbertgonz/lane-detection/internal/source"
	"github.com/gilbertgonz/lane-detection/pkg/geometry"

	"gocv.io/x/gocv"
)

// Logf is the package diagnostic logger. Tests may replace it.
var Logf = log.Printf

// Result is the outcome for one frame. Close releases the rendered views.
type Result struct {
	Lanes    lane.Lanes // rectified space
	Camera   lane.Lanes // camera space
	Coverage float64    // fraction of lane pixels in the mask
	Output   overlay.Output
}

// Close releases the rendered views.
func (r *Result) Close() error {
	return r.Output.Close()
}

// Stats summarizes a Run.
type Stats struct {
	Frames  int
	Elapsed time.Duration
	Stopped bool // ended by cancellation or the surface rather than end of stream
}

// FPS returns the processing rate.
func (s Stats) FPS() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Frames) / s.Elapsed.Seconds()
}

// Pipeline owns the fixed per-run state: the perspective transform, the mask
// builder and the renderer. Build it once and feed it frames in order.
type Pipeline struct {
	params    config.Params
	transform *birdseye.Transform
	builder   *mask.Builder
	renderer  *overlay.Renderer

	mu      sync.Mutex
	pending *config.Params
}

// New validates p and precomputes everything that is shared across frames.
func New(p config.Params) (*Pipeline, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	pl := &Pipeline{}
	if err := pl.rebuild(p); err != nil {
		return nil, err
	}
	return pl, nil
}

func (p *Pipeline) rebuild(params config.Params) error {
	t, err := birdseye.New(params)
	if err != nil {
		return err
	}
	if p.transform != nil {
		p.builder.Close()
		p.transform.Close()
	}
	p.params = params
	p.transform = t
	p.builder = mask.NewBuilder(params)
	p.renderer = overlay.NewRenderer(t, params.OverlayAlpha, params.DisplayScale)
	return nil
}

// Update queues new parameters. Run picks them up before its next frame;
// the frame in flight finishes with the old ones. Safe to call from any
// goroutine.
func (p *Pipeline) Update(next config.Params) error {
	if err := next.Validate(); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	p.mu.Lock()
	p.pending = &next
	p.mu.Unlock()
	return nil
}

func (p *Pipeline) applyPending() {
	p.mu.Lock()
	next := p.pending
	p.pending = nil
	p.mu.Unlock()
	if next == nil {
		return
	}
	if err := p.rebuild(*next); err != nil {
		Logf("Pipeline: keeping previous parameters: %v", err)
		return
	}
	Logf("Pipeline: parameters updated")
}

// Params returns the parameters in effect.
func (p *Pipeline) Params() config.Params {
	return p.params
}

// Transform exposes the fixed perspective transform.
func (p *Pipeline) Transform() *birdseye.Transform {
	return p.transform
}

// Close releases OpenCV resources.
func (p *Pipeline) Close() error {
	p.builder.Close()
	return p.transform.Close()
}

// ProcessFrame runs warp, mask, trace and render for one camera frame.
func (p *Pipeline) ProcessFrame(frame gocv.Mat) (Result, error) {
	if frame.Empty() {
		return Result{}, errors.New("empty frame")
	}

	rectified := p.transform.Warp(frame)
	defer rectified.Close()

	m := p.builder.Build(rectified)
	defer m.Close()

	bin, err := mask.NewBinary(m)
	if err != nil {
		return Result{}, err
	}
	lanes := lane.TraceLanes(bin, p.params)
	return Result{
		Lanes:    lanes,
		Camera:   lanes.Map(p.transform.ToCamera),
		Coverage: mask.Coverage(m),
		Output:   p.renderer.Render(frame, m, lanes),
	}, nil
}

// Run processes frames until the source ends, ctx is cancelled, or the
// surface asks to stop. Cancellation is only observed between frames.
// End of stream and stop requests are not errors.
func (p *Pipeline) Run(ctx context.Context, src source.Source, surface display.Surface) (Stats, error) {
	var stats Stats
	start := time.Now()

	frame := gocv.NewMat()
	defer frame.Close()

	for {
		if err := ctx.Err(); err != nil {
			Logf("Pipeline: stopping after %d frames: %v", stats.Frames, err)
			stats.Stopped = true
			return finish(stats, start), nil
		}
		p.applyPending()

		if err := src.Read(&frame); err != nil {
			if errors.Is(err, source.ErrEndOfStream) {
				Logf("Pipeline: end of stream after %d frames", stats.Frames)
				return finish(stats, start), nil
			}
			return finish(stats, start), fmt.Errorf("read frame %d: %w", stats.Frames+1, err)
		}

		res, err := p.ProcessFrame(frame)
		if err != nil {
			return finish(stats, start), fmt.Errorf("process frame %d: %w", stats.Frames+1, err)
		}
		stats.Frames++

		if n := p.params.LogEvery; n > 0 && stats.Frames%n == 0 {
			Logf("Pipeline: frame %d: coverage %.3f, lane area %.0f px², left end x=%.1f, right end x=%.1f",
				stats.Frames, res.Coverage, res.Lanes.Area(),
				lastX(res.Lanes.Left), lastX(res.Lanes.Right))
		}

		showErr := surface.Show(res.Output.Preview, res.Output.Scene)
		res.Close()
		if showErr != nil {
			return finish(stats, start), fmt.Errorf("show frame %d: %w", stats.Frames, showErr)
		}

		if surface.WaitKey(time.Duration(p.params.FrameDelayMs) * time.Millisecond) {
			Logf("Pipeline: stop requested after %d frames", stats.Frames)
			stats.Stopped = true
			return finish(stats, start), nil
		}
	}
}

func finish(s Stats, start time.Time) Stats {
	s.Elapsed = time.Since(start)
	return s
}

func lastX(points []geometry.Point2D) float64 {
	if len(points) == 0 {
		return 0
	}
	return points[len(points)-1].X
}
