// Package colorutil provides shared overlay colors for the lane renderer.
//
// gocv converts color.RGBA to an OpenCV scalar in B, G, R, A order, so these
// values can be passed straight to gocv drawing calls on BGR frames.
package colorutil

import "image/color"

// Common overlay colors.
var (
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 0}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	Blue   = color.RGBA{R: 0, G: 0, B: 255, A: 0}
	Red    = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	Yellow = color.RGBA{R: 255, G: 255, B: 30, A: 0}
)

// Lane overlay roles.
var (
	LaneLine   = Yellow // inverse-transformed lane edges on the camera frame
	LaneFill   = Blue   // lane-area polygon before blending
	LeftTrace  = Blue   // raw left trace on the mask preview
	RightTrace = Red    // raw right trace on the mask preview
)
