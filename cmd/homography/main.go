// Command homography prints the bird's-eye calibration matrices for a
// parameter file and checks the inverse round trip. Quads given on the
// command line replace the file's calibration, so a new mounting can be
// checked and dumped in one step.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gilbertgonz/lane-detection/internal/birdseye"
	"github.com/gilbertgonz/lane-detection/internal/config"
	"github.com/gilbertgonz/lane-detection/pkg/geometry"
)

func main() {
	configPath := flag.String("config", "", "JSON parameter file (defaults when empty)")
	srcQuad := flag.String("src", "", "Camera quad as \"x,y x,y x,y x,y\" (overrides config)")
	dstQuad := flag.String("dst", "", "Rectified quad as \"x,y x,y x,y x,y\" (overrides config)")
	size := flag.String("size", "", "Rectified size as WxH (overrides config)")
	dump := flag.String("dump", "", "Write the effective parameters to this JSON file")
	flag.Parse()

	params := config.DefaultParams()
	if *configPath != "" {
		p, err := config.LoadParams(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		params = p
	}

	if *srcQuad != "" || *dstQuad != "" || *size != "" {
		src, dst, rect := params.SourceQuad, params.DestQuad, params.RectifiedSize
		var err error
		if *srcQuad != "" {
			if src, err = parseQuad(*srcQuad); err != nil {
				fmt.Fprintf(os.Stderr, "Bad -src: %v\n", err)
				os.Exit(1)
			}
		}
		if *dstQuad != "" {
			if dst, err = parseQuad(*dstQuad); err != nil {
				fmt.Fprintf(os.Stderr, "Bad -dst: %v\n", err)
				os.Exit(1)
			}
		}
		if *size != "" {
			if _, err = fmt.Sscanf(*size, "%dx%d", &rect.Width, &rect.Height); err != nil {
				fmt.Fprintf(os.Stderr, "Bad -size %q: %v\n", *size, err)
				os.Exit(1)
			}
		}
		params = params.WithCalibration(src, dst, rect)
		if err := params.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid calibration: %v\n", err)
			os.Exit(1)
		}
	}

	fwd, err := geometry.ComputeHomography(params.SourceQuad, params.DestQuad)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Calibration failed: %v\n", err)
		os.Exit(1)
	}
	inv, err := fwd.Inverse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Inversion failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Rectified size: %dx%d\n", params.RectifiedSize.Width, params.RectifiedSize.Height)
	printMatrix("Forward (camera -> rectified)", fwd)
	printMatrix("Inverse (rectified -> camera)", inv)
	fmt.Printf("\nForward*Inverse deviation from identity: %.2e\n", birdseye.RoundTripDeviation(fwd, inv))

	fmt.Printf("\n%-8s %22s %22s %12s\n", "Corner", "Camera", "Rectified", "Round trip")
	for i := range params.SourceQuad {
		src := params.SourceQuad[i]
		dst := fwd.Apply(src)
		back := inv.Apply(dst)
		fmt.Printf("%-8d (%9.2f, %9.2f) (%9.2f, %9.2f) %12.2e\n",
			i, src.X, src.Y, dst.X, dst.Y, back.Distance(src))
	}

	fmt.Println()
	for _, w := range []struct {
		name string
		win  geometry.RectInt
	}{{"left", params.LeftWindow}, {"right", params.RightWindow}} {
		center := inv.Apply(geometry.Point2D{X: w.win.CenterX(), Y: w.win.CenterY()})
		note := ""
		if !geometry.PointInPolygon(center, params.SourceQuad[:]) {
			note = "  (outside the calibrated road area)"
		}
		fmt.Printf("%s start window center maps to camera (%.1f, %.1f)%s\n", w.name, center.X, center.Y, note)
	}

	if *dump != "" {
		if err := params.Save(*dump); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", *dump, err)
			os.Exit(1)
		}
		fmt.Printf("\nWrote parameters to %s\n", *dump)
	}
}

// parseQuad reads four space-separated x,y pairs.
func parseQuad(s string) ([4]geometry.Point2D, error) {
	var q [4]geometry.Point2D
	fields := strings.Fields(s)
	if len(fields) != 4 {
		return q, fmt.Errorf("want 4 points, got %d", len(fields))
	}
	for i, f := range fields {
		if _, err := fmt.Sscanf(f, "%g,%g", &q[i].X, &q[i].Y); err != nil {
			return q, fmt.Errorf("point %d %q: %v", i, f, err)
		}
	}
	return q, nil
}

func printMatrix(title string, h geometry.Homography) {
	fmt.Printf("\n%s:\n", title)
	for r := 0; r < 3; r++ {
		fmt.Printf("  [%14.6f %14.6f %14.6f]\n", h.At(r, 0), h.At(r, 1), h.At(r, 2))
	}
}
