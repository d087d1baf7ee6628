package source

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// stillExtensions are the formats registered with image.Decode above.
var stillExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
	".webp": true,
}

// Sequence plays a directory of still images in lexical order, e.g. frames
// exported from a dashcam as frame_00001.png, frame_00002.png, ...
type Sequence struct {
	dir   string
	paths []string
	next  int
}

// OpenSequence lists the still images in dir.
func OpenSequence(dir string) (*Sequence, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if stillExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no images in %s", ErrSourceUnavailable, dir)
	}
	sort.Strings(paths)

	return &Sequence{dir: dir, paths: paths}, nil
}

// Len returns the number of frames in the sequence.
func (s *Sequence) Len() int {
	return len(s.paths)
}

// Read implements Source.
func (s *Sequence) Read(dst *gocv.Mat) error {
	if s.next >= len(s.paths) {
		return ErrEndOfStream
	}
	path := s.paths[s.next]
	s.next++

	img, err := decodeFile(path)
	if err != nil {
		return err
	}
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return fmt.Errorf("convert %s: %w", path, err)
	}
	defer mat.Close()
	mat.CopyTo(dst)
	return nil
}

// Close implements Source.
func (s *Sequence) Close() error {
	s.next = len(s.paths)
	return nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
