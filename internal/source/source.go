// Package source delivers camera frames to the lane pipeline.
package source

import (
	"errors"
	"fmt"
	"log"
	"os"

	"gocv.io/x/gocv"
)

var (
	// ErrSourceUnavailable is returned when a source cannot be opened.
	ErrSourceUnavailable = errors.New("frame source unavailable")

	// ErrEndOfStream is returned by Read when no frames remain. It marks
	// normal termination.
	ErrEndOfStream = errors.New("end of stream")
)

// Source yields BGR frames one at a time.
type Source interface {
	// Read decodes the next frame into dst.
	Read(dst *gocv.Mat) error
	Close() error
}

// Open picks a still-image sequence for directories and a video decoder for
// anything else (files, device paths, stream URLs).
func Open(path string) (Source, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return OpenSequence(path)
	}
	return OpenVideo(path)
}

// Video reads frames through OpenCV's video decoder.
type Video struct {
	path    string
	capture *gocv.VideoCapture
}

// OpenVideo opens a video file or stream.
func OpenVideo(path string) (*Video, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, path)
	}

	log.Printf("Source: opened %s (%.0fx%.0f @ %.1f fps, %.0f frames)", path,
		capture.Get(gocv.VideoCaptureFrameWidth),
		capture.Get(gocv.VideoCaptureFrameHeight),
		capture.Get(gocv.VideoCaptureFPS),
		capture.Get(gocv.VideoCaptureFrameCount))

	return &Video{path: path, capture: capture}, nil
}

// Read implements Source.
func (v *Video) Read(dst *gocv.Mat) error {
	if ok := v.capture.Read(dst); !ok || dst.Empty() {
		return ErrEndOfStream
	}
	return nil
}

// Close implements Source.
func (v *Video) Close() error {
	return v.capture.Close()
}

// String returns the opened path.
func (v *Video) String() string {
	return v.path
}
