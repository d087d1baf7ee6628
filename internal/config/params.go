// Package config holds the calibration and tuning parameters for the lane pipeline.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gilbertgonz/lane-detection/pkg/geometry"
)

// ColorRange is an inclusive per-channel bound pair for gocv.InRangeWithScalar.
type ColorRange struct {
	Lower [3]float64 `json:"lower"`
	Upper [3]float64 `json:"upper"`
}

// Params is the full parameter set for one camera mounting.
type Params struct {
	// Perspective calibration: camera-frame quad and its rectified corners,
	// in matching order.
	SourceQuad    [4]geometry.Point2D `json:"source_quad"`
	DestQuad      [4]geometry.Point2D `json:"dest_quad"`
	RectifiedSize geometry.Size       `json:"rectified_size"`

	// Starting search windows in rectified space.
	LeftWindow  geometry.RectInt `json:"left_window"`
	RightWindow geometry.RectInt `json:"right_window"`

	// Mask builder
	Yellow          ColorRange `json:"yellow"`
	White           ColorRange `json:"white"`
	GaussianKernel  int        `json:"gaussian_kernel"`  // odd, pixels
	MorphKernel     int        `json:"morph_kernel"`     // square structuring element, pixels
	BinaryThreshold float64    `json:"binary_threshold"` // 0-255

	// Rendering
	OverlayAlpha float64 `json:"overlay_alpha"` // lane polygon blend weight
	DisplayScale float64 `json:"display_scale"` // camera view resize factor

	// Run loop
	FrameDelayMs int `json:"frame_delay_ms"` // wait between frames on interactive surfaces
	LogEvery     int `json:"log_every"`      // frames between progress lines, 0 disables
}

// DefaultParams returns parameters calibrated for the reference dashcam clip.
func DefaultParams() Params {
	return Params{
		SourceQuad: [4]geometry.Point2D{
			{X: 527, Y: 514},
			{X: 765, Y: 514},
			{X: 1205, Y: 839},
			{X: 60, Y: 839},
		},
		DestQuad: [4]geometry.Point2D{
			{X: 0, Y: 0},
			{X: 640, Y: 0},
			{X: 640, Y: 480},
			{X: 0, Y: 480},
		},
		RectifiedSize: geometry.NewSize(640, 480),

		LeftWindow:  geometry.NewRectInt(0, 420, 120, 60),
		RightWindow: geometry.NewRectInt(500, 420, 140, 60),

		// Bounds are applied to the single-channel image, so only the first
		// component of each bound takes effect.
		Yellow: ColorRange{
			Lower: [3]float64{20, 100, 100},
			Upper: [3]float64{30, 255, 255},
		},
		White: ColorRange{
			Lower: [3]float64{150, 150, 150},
			Upper: [3]float64{255, 255, 255},
		},
		GaussianKernel:  9,
		MorphKernel:     15,
		BinaryThreshold: 110,

		OverlayAlpha: 0.4,
		DisplayScale: 0.5,

		FrameDelayMs: 50,
		LogEvery:     100,
	}
}

// WithWindows returns a copy of p with new starting windows.
func (p Params) WithWindows(left, right geometry.RectInt) Params {
	p.LeftWindow = left
	p.RightWindow = right
	return p
}

// WithCalibration returns a copy of p with a new perspective calibration.
func (p Params) WithCalibration(src, dst [4]geometry.Point2D, size geometry.Size) Params {
	p.SourceQuad = src
	p.DestQuad = dst
	p.RectifiedSize = size
	return p
}

// WithKernels returns a copy of p with new blur and morphology kernel sizes.
func (p Params) WithKernels(gaussian, morph int) Params {
	p.GaussianKernel = gaussian
	p.MorphKernel = morph
	return p
}

// Validate checks that the parameters can drive the pipeline.
func (p Params) Validate() error {
	if p.RectifiedSize.Width <= 0 || p.RectifiedSize.Height <= 0 {
		return fmt.Errorf("rectified size must be positive, got %dx%d",
			p.RectifiedSize.Width, p.RectifiedSize.Height)
	}
	for name, w := range map[string]geometry.RectInt{"left": p.LeftWindow, "right": p.RightWindow} {
		if w.Empty() {
			return fmt.Errorf("%s window has no area: %+v", name, w)
		}
		if !p.RectifiedSize.Contains(w) {
			return fmt.Errorf("%s window %+v lies outside the %dx%d rectified frame",
				name, w, p.RectifiedSize.Width, p.RectifiedSize.Height)
		}
		// The right-edge clamp keeps a one pixel margin, so a window as wide
		// as the frame would be pushed to a negative x.
		if w.Width >= p.RectifiedSize.Width {
			return fmt.Errorf("%s window width %d must be narrower than the frame", name, w.Width)
		}
	}
	if p.GaussianKernel <= 0 || p.GaussianKernel%2 == 0 {
		return fmt.Errorf("gaussian kernel must be a positive odd size, got %d", p.GaussianKernel)
	}
	if p.MorphKernel <= 0 {
		return fmt.Errorf("morph kernel must be positive, got %d", p.MorphKernel)
	}
	if p.BinaryThreshold < 0 || p.BinaryThreshold > 255 {
		return fmt.Errorf("binary threshold must be within 0-255, got %g", p.BinaryThreshold)
	}
	for name, r := range map[string]ColorRange{"yellow": p.Yellow, "white": p.White} {
		for i := range r.Lower {
			if r.Lower[i] > r.Upper[i] {
				return fmt.Errorf("%s range channel %d: lower %g above upper %g", name, i, r.Lower[i], r.Upper[i])
			}
		}
	}
	if p.OverlayAlpha < 0 || p.OverlayAlpha > 1 {
		return fmt.Errorf("overlay alpha must be within 0-1, got %g", p.OverlayAlpha)
	}
	if p.DisplayScale <= 0 {
		return fmt.Errorf("display scale must be positive, got %g", p.DisplayScale)
	}
	if p.FrameDelayMs < 0 || p.LogEvery < 0 {
		return fmt.Errorf("frame delay and log interval must not be negative")
	}
	return nil
}

// LoadParams reads a JSON parameter file on top of DefaultParams, so partial
// files only override what they name.
func LoadParams(path string) (Params, error) {
	p := DefaultParams()

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return p, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return p, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 << 20
	if info.Size() > maxFileSize {
		return p, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return p, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to parse config file %s: %w", cleanPath, err)
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("invalid config %s: %w", cleanPath, err)
	}
	return p, nil
}

// Save writes the parameters as indented JSON.
func (p Params) Save(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
