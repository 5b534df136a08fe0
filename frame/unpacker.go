package frame

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Unpacker reconstructs the original byte stream from a frame sequence and
// its pack metadata.
//
// Unpacking never scans for a padding sentinel: the recovered length is
// always the original byte length recorded in the metadata, so pad byte
// values are irrelevant to the output.
type Unpacker struct {
	geometry Geometry
}

// NewUnpacker creates an Unpacker for the given frame geometry. Decode must
// use the same geometry that encode used; any difference is detected during
// Unpack, not silently tolerated.
func NewUnpacker(geometry Geometry) (*Unpacker, error) {
	logrus.WithFields(logrus.Fields{
		"function": "NewUnpacker",
		"geometry": geometry.String(),
	}).Debug("Creating frame unpacker")

	if err := geometry.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create unpacker: %w", err)
	}

	return &Unpacker{geometry: geometry}, nil
}

// Geometry returns the unpacker's configured frame geometry.
func (u *Unpacker) Geometry() Geometry {
	return u.geometry
}

// Unpack concatenates the frame payloads in order and truncates the result
// to the original byte length recorded in the metadata.
//
// Validation is fail-fast and ordered: metadata consistency first, then
// geometry (metadata against the unpacker, then every frame), then frame
// count, then per-frame payload availability. No partial result is ever
// returned alongside an error.
func (u *Unpacker) Unpack(frames []Frame, md *PackMetadata) ([]byte, error) {
	logrus.WithFields(logrus.Fields{
		"function":    "Unpack",
		"geometry":    u.geometry.String(),
		"frame_count": len(frames),
	}).Info("Unpacking frames into byte stream")

	if md == nil {
		return nil, fmt.Errorf("%w: metadata is nil", ErrInvalidMetadata)
	}
	if err := md.Validate(); err != nil {
		return nil, err
	}

	if md.FrameWidth != u.geometry.Width || md.FrameHeight != u.geometry.Height {
		return nil, fmt.Errorf("%w: metadata records %s, unpacker configured for %s",
			ErrGeometryMismatch, md.Geometry(), u.geometry)
	}
	for i, f := range frames {
		if f.Width != u.geometry.Width || f.Height != u.geometry.Height {
			return nil, fmt.Errorf("%w: frame %d is %s, expected %s",
				ErrGeometryMismatch, i, f.Geometry(), u.geometry)
		}
	}

	if len(frames) != md.FrameCount {
		return nil, fmt.Errorf("%w: sequence has %d frames, metadata records %d",
			ErrFrameCountMismatch, len(frames), md.FrameCount)
	}

	capacity := u.geometry.Capacity()
	for i, f := range frames {
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
	}

	stream := make([]byte, md.FrameCount*capacity)
	for i, f := range frames {
		copy(stream[i*capacity:], f.Data)
	}
	recovered := stream[:md.OriginalLength]

	logrus.WithFields(logrus.Fields{
		"function":        "Unpack",
		"recovered_bytes": len(recovered),
		"discarded_bytes": md.PaddingBytes(),
	}).Info("Frames unpacked successfully")

	return recovered, nil
}
