package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestWatcherReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.json")
	base := time.Now().Add(-time.Hour)
	touch(t, path, `{"overlay_alpha": 0.4}`, base)

	var got []Params
	w := NewWatcher(path, time.Hour, func(p Params) { got = append(got, p) })
	require.NotNil(t, w)

	assert.False(t, w.Check(), "unchanged file")

	touch(t, path, `{"overlay_alpha": 0.7}`, base.Add(time.Minute))
	assert.True(t, w.Check())
	require.Len(t, got, 1)
	assert.Equal(t, 0.7, got[0].OverlayAlpha)

	// Same mtime again does not refire.
	assert.False(t, w.Check())
}

func TestWatcherSkipsInvalidEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.json")
	base := time.Now().Add(-time.Hour)
	touch(t, path, `{}`, base)

	calls := 0
	w := NewWatcher(path, time.Hour, func(Params) { calls++ })
	require.NotNil(t, w)

	touch(t, path, `{"gaussian_kernel": 4}`, base.Add(time.Minute))
	assert.False(t, w.Check())
	touch(t, path, `{"overlay_alpha": `, base.Add(2*time.Minute))
	assert.False(t, w.Check())
	assert.Zero(t, calls)

	touch(t, path, `{"gaussian_kernel": 5}`, base.Add(3*time.Minute))
	assert.True(t, w.Check())
	assert.Equal(t, 1, calls)
}

func TestWatcherMissingFile(t *testing.T) {
	assert.Nil(t, NewWatcher(filepath.Join(t.TempDir(), "nope.json"), time.Second, nil))
}

func TestWatcherStopIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.json")
	touch(t, path, `{}`, time.Now())
	w := NewWatcher(path, time.Millisecond, nil)
	require.NotNil(t, w)
	w.Start()
	w.Stop()
	w.Stop()
}

func TestWatcherStartDeliversChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.json")
	base := time.Now().Add(-time.Hour)
	touch(t, path, `{}`, base)

	got := make(chan Params, 4)
	w := NewWatcher(path, 50*time.Millisecond, func(p Params) { got <- p })
	require.NotNil(t, w)
	w.Start()
	defer w.Stop()

	// Replace the file the way editors do so no partial write is observed.
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(`{"binary_threshold": 90}`), 0o644))
	require.NoError(t, os.Rename(tmp, path))
	select {
	case p := <-got:
		assert.Equal(t, 90.0, p.BinaryThreshold)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after file change")
	}
}
