package display

import (
	"testing"
	"time"

	"fyne.io/fyne/v2/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"highgui": KindHighGUI, " FYNE ": KindFyne, "none": KindNone} {
		got, err := ParseKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseKind("sdl")
	assert.Error(t, err)
}

func TestHeadless(t *testing.T) {
	s, err := New(KindNone)
	require.NoError(t, err)

	m := gocv.NewMat()
	defer m.Close()
	assert.NoError(t, s.Show(m, m))
	assert.False(t, s.WaitKey(time.Millisecond))
	assert.NoError(t, s.Close())

	_, isMain := s.(MainLoop)
	assert.False(t, isMain)
}

func TestNewUnknownKind(t *testing.T) {
	_, err := New(Kind("sdl"))
	assert.Error(t, err)
}

func TestLaneTheme(t *testing.T) {
	th := &laneTheme{}
	r, g, b, _ := th.Color(theme.ColorNamePrimary, theme.VariantLight).RGBA()
	assert.Equal(t, []uint32{0xFFFF, 0xFFFF, 0x1E1E}, []uint32{r, g, b})
	assert.Equal(t, float32(2), th.Size(theme.SizeNamePadding))
	assert.Equal(t, theme.DefaultTheme().Size(theme.SizeNameText), th.Size(theme.SizeNameText))
}
