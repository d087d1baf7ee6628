package display

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"gocv.io/x/gocv"
)

// Viewer shows both views side by side in a fyne window. Its event loop must
// run on the main goroutine via Main; Show and WaitKey are called from the
// pipeline goroutine.
type Viewer struct {
	app     fyne.App
	window  fyne.Window
	preview *fynecanvas.Image
	scene   *fynecanvas.Image
	status  *widget.Label

	frames    atomic.Int64
	stopped   atomic.Bool
	closed    chan struct{}
	closeOnce sync.Once
	quitOnce  sync.Once
}

// NewViewer builds the window; nothing is shown until Main runs.
func NewViewer() *Viewer {
	a := fyneapp.NewWithID("io.github.gilbertgonz.lane-detection")
	a.Settings().SetTheme(&laneTheme{})
	w := a.NewWindow("Lane Detection")

	v := &Viewer{
		app:     a,
		window:  w,
		preview: newFrameImage(),
		scene:   newFrameImage(),
		status:  widget.NewLabel("waiting for frames"),
		closed:  make(chan struct{}),
	}

	views := container.NewGridWithColumns(2,
		container.NewBorder(widget.NewLabel(PreviewTitle), nil, nil, nil, v.preview),
		container.NewBorder(widget.NewLabel(SceneTitle), nil, nil, nil, v.scene),
	)
	w.SetContent(container.NewBorder(nil, v.status, nil, nil, views))
	w.Resize(fyne.NewSize(1300, 560))
	w.SetOnClosed(func() {
		v.stopped.Store(true)
		v.closeOnce.Do(func() { close(v.closed) })
	})
	return v
}

func newFrameImage() *fynecanvas.Image {
	img := fynecanvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	img.FillMode = fynecanvas.ImageFillContain
	img.ScaleMode = fynecanvas.ImageScaleFastest
	img.SetMinSize(fyne.NewSize(320, 240))
	return img
}

// Main implements MainLoop.
func (v *Viewer) Main() {
	v.window.ShowAndRun()
}

// Show implements Surface.
func (v *Viewer) Show(preview, scene gocv.Mat) error {
	p, err := preview.ToImage()
	if err != nil {
		return fmt.Errorf("preview to image: %w", err)
	}
	s, err := scene.ToImage()
	if err != nil {
		return fmt.Errorf("scene to image: %w", err)
	}

	v.preview.Image = p
	v.scene.Image = s
	v.preview.Refresh()
	v.scene.Refresh()
	v.status.SetText(fmt.Sprintf("frame %d", v.frames.Add(1)))
	return nil
}

// WaitKey implements Surface; closing the window stops playback.
func (v *Viewer) WaitKey(delay time.Duration) bool {
	if delay > 0 {
		time.Sleep(delay)
	}
	return v.stopped.Load()
}

// Hold keeps the last frame up until the window is closed.
func (v *Viewer) Hold() {
	v.status.SetText(fmt.Sprintf("end of stream after %d frames, close the window to exit", v.frames.Load()))
	<-v.closed
}

// Close implements Surface and ends the event loop.
func (v *Viewer) Close() error {
	v.quitOnce.Do(v.app.Quit)
	return nil
}
