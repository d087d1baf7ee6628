// Command lanetrace runs the sliding-window tracer on a saved bird's-eye mask
// image and prints the traced points.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/gilbertgonz/lane-detection/internal/config"
	"github.com/gilbertgonz/lane-detection/internal/lane"
	"github.com/gilbertgonz/lane-detection/pkg/geometry"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

func main() {
	maskPath := flag.String("mask", "", "Path to binary mask image (PNG, TIFF, BMP or JPEG)")
	configPath := flag.String("config", "", "JSON parameter file for the start windows")
	sideName := flag.String("side", "both", "Lane side: left, right or both")
	window := flag.String("window", "", "Override start window as x,y,w,h (requires a single -side)")
	flag.Parse()

	if *maskPath == "" {
		fmt.Println("Usage: lanetrace -mask <path> [-side left|right|both] [-window x,y,w,h] [-config params.json]")
		os.Exit(1)
	}

	params := config.DefaultParams()
	if *configPath != "" {
		p, err := config.LoadParams(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		params = p
	}

	sides := lane.Sides
	if *sideName != "both" {
		side, err := lane.ParseSide(*sideName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		sides = []lane.Side{side}
	}

	if *window != "" {
		if len(sides) != 1 {
			fmt.Fprintln(os.Stderr, "-window needs -side left or -side right")
			os.Exit(1)
		}
		var w geometry.RectInt
		if _, err := fmt.Sscanf(*window, "%d,%d,%d,%d", &w.X, &w.Y, &w.Width, &w.Height); err != nil {
			fmt.Fprintf(os.Stderr, "Bad -window %q: %v\n", *window, err)
			os.Exit(1)
		}
		if sides[0] == lane.SideLeft {
			params = params.WithWindows(w, params.RightWindow)
		} else {
			params = params.WithWindows(params.LeftWindow, w)
		}
		if err := params.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Bad -window %q: %v\n", *window, err)
			os.Exit(1)
		}
	}

	f, err := os.Open(*maskPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open mask: %v\n", err)
		os.Exit(1)
	}
	img, format, err := image.Decode(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode mask: %v\n", err)
		os.Exit(1)
	}

	mask := lane.ToGrayMask(img)
	fmt.Printf("Loaded %s mask: %dx%d pixels\n", format, mask.Cols(), mask.Rows())

	for _, side := range sides {
		start := lane.StartWindow(params, side)
		if start.Right() > mask.Cols() || start.Bottom() > mask.Rows() || start.X < 0 || start.Y < 0 {
			start = lane.ClampWindow(start, mask.Cols(), mask.Rows())
			fmt.Printf("\nStart window clamped to %+v\n", start)
		}

		points := lane.Trace(mask, start)
		fmt.Printf("\n%s lane from window (%d,%d %dx%d): %d points\n",
			side, start.X, start.Y, start.Width, start.Height, len(points))
		fmt.Printf("%-6s %10s %10s\n", "Step", "X", "Y")
		for i, p := range points {
			fmt.Printf("%-6d %10.2f %10.2f\n", i, p.X, p.Y)
		}
	}
}
