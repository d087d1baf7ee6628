package display

import (
	"time"

	"gocv.io/x/gocv"
)

// Window titles match the two views: the processed mask and the source.
const (
	PreviewTitle = "Preprocess"
	SceneTitle   = "src"
)

// HighGUI shows frames in two OpenCV windows.
type HighGUI struct {
	preview *gocv.Window
	scene   *gocv.Window
}

// NewHighGUI opens both windows.
func NewHighGUI() *HighGUI {
	return &HighGUI{
		preview: gocv.NewWindow(PreviewTitle),
		scene:   gocv.NewWindow(SceneTitle),
	}
}

// Show implements Surface.
func (h *HighGUI) Show(preview, scene gocv.Mat) error {
	h.preview.IMShow(preview)
	h.scene.IMShow(scene)
	return nil
}

// WaitKey implements Surface; any key press stops playback.
func (h *HighGUI) WaitKey(delay time.Duration) bool {
	ms := int(delay / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	return h.scene.WaitKey(ms) > 0
}

// Hold blocks until a key is pressed, leaving the last frame on screen.
func (h *HighGUI) Hold() {
	h.scene.WaitKey(0)
}

// Close implements Surface.
func (h *HighGUI) Close() error {
	h.preview.Close()
	return h.scene.Close()
}
