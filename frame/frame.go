package frame

import (
	"fmt"

	"github.com/opd-ai/vidvault/limits"
)

// Frame is one RGB24 raster carrying a capacity-sized slice of the byte
// stream. Payload bytes fill the raster in row-major order: byte i lands
// in channel (i mod 3) of pixel (i div 3). The final frame of a sequence
// is right-padded with zero bytes up to capacity.
//
// Frames returned by Pack may alias the input stream to avoid copying.
// Callers must treat Data as read-only; mutating it corrupts the stream
// the frame was packed from.
type Frame struct {
	Width  int
	Height int
	Data   []byte
}

// Geometry returns the frame's dimensions as a Geometry value.
func (f Frame) Geometry() Geometry {
	return Geometry{Width: f.Width, Height: f.Height}
}

// Capacity returns the payload capacity of the frame in bytes.
func (f Frame) Capacity() int {
	return f.Geometry().Capacity()
}

// Validate checks that the frame is internally consistent: valid
// dimensions and a data buffer of exactly capacity bytes.
//
// A short buffer classifies as ErrTruncatedInput, an oversized buffer or
// bad dimensions as ErrGeometryMismatch.
func (f Frame) Validate() error {
	if err := limits.ValidateFrameDimensions(f.Width, f.Height); err != nil {
		return fmt.Errorf("%w: %v", ErrGeometryMismatch, err)
	}
	capacity := f.Capacity()
	if len(f.Data) > capacity {
		return fmt.Errorf("%w: %d data bytes exceed %s capacity %d",
			ErrGeometryMismatch, len(f.Data), f.Geometry(), capacity)
	}
	if len(f.Data) < capacity {
		return fmt.Errorf("%w: frame carries %d of %d bytes",
			ErrTruncatedInput, len(f.Data), capacity)
	}
	return nil
}
