// Package lane traces lane edges through a binary bird's-eye mask.
package lane

import (
	"image"
	"math"

	"github.com/gilbertgonz/lane-detection/pkg/geometry"
)

// Mask is a single-channel image where non-zero pixels are lane candidates.
// *gocv.Mat satisfies it, as does GrayMask.
type Mask interface {
	Rows() int
	Cols() int
	GetUCharAt(row, col int) uint8
}

// rowMask is implemented by masks that can hand out a whole row at once,
// which avoids a call per pixel.
type rowMask interface {
	Mask
	Row(row int) []uint8
}

type traceState int

const (
	stateSearching traceState = iota
	stateTerminal
)

// Trace walks a fixed-size window from start up to the top of the mask,
// re-centering it on the mean x of the lane pixels it covers at each step.
// It returns one point per window position, bottom to top; the point pairs the
// window's vertical center with the mean x found inside it. The next window is
// shifted by the mean rounded to the nearest pixel (ties to even). A window
// with no lane pixels keeps its current center and does not move.
//
// start must lie within the mask. The result is never empty and always ends
// with the window resting at y = 0. A window without height yields a single
// point.
func Trace(mask Mask, start geometry.RectInt) []geometry.Point2D {
	points := make([]geometry.Point2D, 0, StepCount(start))
	walk(mask, start, func(_ geometry.RectInt, p geometry.Point2D) {
		points = append(points, p)
	})
	return points
}

// walk drives the window state machine and reports every window with the
// point it produced.
func walk(mask Mask, start geometry.RectInt, visit func(win geometry.RectInt, p geometry.Point2D)) {
	cols := mask.Cols()
	win := start

	state := stateSearching
	if atTop(win) || win.Height <= 0 {
		state = stateTerminal
	}
	for {
		anchor := win.CenterX()
		avgX, found := meanColumn(mask, win)
		if !found {
			avgX = anchor
		}
		visit(win, geometry.Point2D{X: avgX, Y: win.CenterY()})

		if state == stateTerminal {
			return
		}
		var dx float64
		if found {
			dx = math.RoundToEven(avgX) - anchor
		}
		win = advance(win, dx, cols)
		if atTop(win) {
			state = stateTerminal
		}
	}
}

// StepCount is the number of points Trace emits for a start window.
// It is ceil(y/h)+1, or 1 when the window is already at the top or has no
// height.
func StepCount(start geometry.RectInt) int {
	if start.Y <= 0 || start.Height <= 0 {
		return 1
	}
	return (start.Y+start.Height-1)/start.Height + 1
}

// atTop reports whether the window rests against the top of the image, which
// makes it the last one processed.
func atTop(win geometry.RectInt) bool {
	return win.Y <= 0
}

// advance moves the window one height up and shifts it horizontally by dx,
// then clamps it to the mask. A half-pixel shift, which odd widths produce,
// is truncated toward zero as integer rectangle arithmetic does.
func advance(win geometry.RectInt, dx float64, cols int) geometry.RectInt {
	win.Y -= win.Height
	if win.Y < 0 {
		win.Y = 0
	}
	win.X = int(float64(win.X) + dx)
	return clampX(win, cols)
}

// clampX keeps the window inside the mask horizontally. The right edge keeps
// a one pixel margin: x + width is held strictly below cols.
func clampX(win geometry.RectInt, cols int) geometry.RectInt {
	if win.X < 0 {
		win.X = 0
	}
	if win.X+win.Width >= cols {
		win.X = cols - win.Width - 1
	}
	return win
}

// ClampWindow applies the tracer's boundary policy to an arbitrary window:
// y is held within the mask and x follows the same clamp as a trace step.
func ClampWindow(win geometry.RectInt, cols, rows int) geometry.RectInt {
	if win.Y < 0 {
		win.Y = 0
	}
	if win.Y+win.Height > rows {
		win.Y = rows - win.Height
	}
	return clampX(win, cols)
}

// meanColumn returns the mean absolute x of non-zero pixels under win and
// whether there were any.
func meanColumn(mask Mask, win geometry.RectInt) (float64, bool) {
	region := win.ToImage().Intersect(image.Rect(0, 0, mask.Cols(), mask.Rows()))

	var sum, count int
	if rm, ok := mask.(rowMask); ok {
		for y := region.Min.Y; y < region.Max.Y; y++ {
			row := rm.Row(y)[region.Min.X:region.Max.X]
			for i, v := range row {
				if v != 0 {
					sum += region.Min.X + i
					count++
				}
			}
		}
	} else {
		for y := region.Min.Y; y < region.Max.Y; y++ {
			for x := region.Min.X; x < region.Max.X; x++ {
				if mask.GetUCharAt(y, x) != 0 {
					sum += x
					count++
				}
			}
		}
	}
	if count == 0 {
		return 0, false
	}
	return float64(sum) / float64(count), true
}
