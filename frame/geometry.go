package frame

import (
	"fmt"

	"github.com/opd-ai/vidvault/limits"
)

// Geometry describes the pixel dimensions of every frame in a sequence.
//
// All frames produced by a single pack operation share one geometry, and
// decode requires the same geometry that encode used. Geometry is an
// explicit configuration value; nothing in this package reads dimensions
// from package-level state.
type Geometry struct {
	Width  int
	Height int
}

// Capacity returns the payload capacity of one frame in bytes.
//
// Each pixel stores three payload bytes (RGB24), so capacity is
// Width * Height * 3.
func (g Geometry) Capacity() int {
	return g.Width * g.Height * limits.BytesPerPixel
}

// Validate checks the geometry against the package dimension limits.
func (g Geometry) Validate() error {
	return limits.ValidateFrameDimensions(g.Width, g.Height)
}

// FrameCountFor returns the number of frames needed to carry length bytes.
//
// The count is the ceiling of length divided by Capacity, with a minimum
// of one: an empty stream still occupies a single fully padded frame so
// the video container is never empty. The geometry must be valid; a
// degenerate geometry yields zero.
func (g Geometry) FrameCountFor(length int) int {
	capacity := g.Capacity()
	if capacity <= 0 || length < 0 {
		return 0
	}
	if length == 0 {
		return 1
	}
	return (length + capacity - 1) / capacity
}

// String returns the geometry in "WIDTHxHEIGHT" form.
func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}
