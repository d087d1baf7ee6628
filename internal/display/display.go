// Package display presents the rendered lane views.
package display

import (
	"fmt"
	"strings"
	"time"

	"gocv.io/x/gocv"
)

// Surface shows the two views of each frame.
type Surface interface {
	// Show presents the mask preview and the camera scene. The surface does
	// not keep references to the Mats after returning.
	Show(preview, scene gocv.Mat) error

	// WaitKey gives the surface time to draw and reports whether the user
	// asked to stop.
	WaitKey(delay time.Duration) bool

	Close() error
}

// MainLoop is implemented by surfaces whose event loop must own the main
// goroutine. Main blocks until Close is called or the window goes away.
type MainLoop interface {
	Main()
}

// Holder is implemented by surfaces that can keep the last frame on screen
// after the stream ends.
type Holder interface {
	Hold()
}

// Kind names a surface implementation.
type Kind string

const (
	KindHighGUI Kind = "highgui"
	KindFyne    Kind = "fyne"
	KindNone    Kind = "none"
)

// ParseKind converts a flag value into a Kind.
func ParseKind(value string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(value))); k {
	case KindHighGUI, KindFyne, KindNone:
		return k, nil
	default:
		return "", fmt.Errorf("unknown display %q (want highgui, fyne or none)", value)
	}
}

// New opens a surface of the given kind.
func New(kind Kind) (Surface, error) {
	switch kind {
	case KindHighGUI:
		return NewHighGUI(), nil
	case KindFyne:
		return NewViewer(), nil
	case KindNone:
		return Headless{}, nil
	default:
		return nil, fmt.Errorf("unknown display %q", kind)
	}
}

// Headless discards frames, for batch runs without a display.
type Headless struct{}

func (Headless) Show(preview, scene gocv.Mat) error { return nil }

func (Headless) WaitKey(time.Duration) bool { return false }

func (Headless) Close() error { return nil }
