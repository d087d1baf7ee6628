package mask

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Binary gives the lane tracer row access to a single-channel 8-bit mask
// without a cgo call per pixel. It aliases the Mat's buffer, so it is only
// valid while the Mat is open and unmodified.
type Binary struct {
	data       []uint8
	rows, cols int
}

// NewBinary wraps a continuous CV_8UC1 Mat, such as the output of Build.
func NewBinary(m gocv.Mat) (Binary, error) {
	if m.Empty() {
		return Binary{}, nil
	}
	if m.Type() != gocv.MatTypeCV8UC1 {
		return Binary{}, fmt.Errorf("mask must be 8-bit single channel, got type %v", m.Type())
	}
	data, err := m.DataPtrUint8()
	if err != nil {
		return Binary{}, fmt.Errorf("mask buffer: %w", err)
	}
	return Binary{data: data, rows: m.Rows(), cols: m.Cols()}, nil
}

func (b Binary) Rows() int { return b.rows }

func (b Binary) Cols() int { return b.cols }

func (b Binary) GetUCharAt(row, col int) uint8 {
	return b.data[row*b.cols+col]
}

// Row returns one row of the mask.
func (b Binary) Row(row int) []uint8 {
	return b.data[row*b.cols : (row+1)*b.cols]
}
