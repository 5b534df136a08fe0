package frame

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/vidvault/limits"
)

// DefaultFrameRate is the container frame rate recorded in metadata when no
// other rate is configured. The rate only affects playback duration.
const DefaultFrameRate = 30

// TimeProvider abstracts time operations for deterministic testing.
type TimeProvider interface {
	Now() time.Time
}

// DefaultTimeProvider uses the standard library time functions.
type DefaultTimeProvider struct{}

// Now returns the current time.
func (DefaultTimeProvider) Now() time.Time { return time.Now() }

// defaultTimeProvider is the package-level default time provider.
var defaultTimeProvider TimeProvider = DefaultTimeProvider{}

// Packer splits a byte stream into fixed-geometry RGB24 frames.
//
// Packing is pure and deterministic: the same input and geometry always
// produce the same frame sequence and metadata. A Packer performs no file
// or process I/O and is safe for repeated use.
type Packer struct {
	geometry     Geometry
	frameRate    int
	workers      int
	timeProvider TimeProvider
}

// NewPacker creates a Packer for the given frame geometry.
func NewPacker(geometry Geometry) (*Packer, error) {
	logrus.WithFields(logrus.Fields{
		"function": "NewPacker",
		"geometry": geometry.String(),
	}).Debug("Creating frame packer")

	if err := geometry.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create packer: %w", err)
	}

	return &Packer{
		geometry:     geometry,
		frameRate:    DefaultFrameRate,
		workers:      defaultWorkerCount(),
		timeProvider: defaultTimeProvider,
	}, nil
}

// Geometry returns the packer's configured frame geometry.
func (p *Packer) Geometry() Geometry {
	return p.geometry
}

// SetFrameRate sets the container frame rate recorded in pack metadata.
func (p *Packer) SetFrameRate(rate int) error {
	if err := limits.ValidateFrameRate(rate); err != nil {
		return err
	}
	p.frameRate = rate
	return nil
}

// SetWorkers sets the number of workers used for checksum computation.
func (p *Packer) SetWorkers(workers int) error {
	if err := limits.ValidateWorkerCount(workers); err != nil {
		return err
	}
	p.workers = workers
	return nil
}

// SetTimeProvider sets a custom time provider for deterministic testing.
func (p *Packer) SetTimeProvider(tp TimeProvider) {
	p.timeProvider = tp
}

// Pack splits data into capacity-sized frames and returns the sequence
// together with the metadata needed to invert it.
//
// Chunks fill frames in order; every frame except possibly the last aliases
// the input slice, and the final frame is right-padded with zero bytes into
// a fresh buffer when the stream does not end on a frame boundary. Empty
// input yields exactly one fully padded frame. The metadata records the
// original length, geometry, frame count, a BLAKE2b-256 digest of the
// unpadded stream, and per-frame xxhash64 checksums.
func (p *Packer) Pack(data []byte) ([]Frame, *PackMetadata, error) {
	logrus.WithFields(logrus.Fields{
		"function":    "Pack",
		"geometry":    p.geometry.String(),
		"input_bytes": len(data),
	}).Info("Packing byte stream into frames")

	if err := p.geometry.Validate(); err != nil {
		return nil, nil, fmt.Errorf("failed to pack: %w", err)
	}

	capacity := p.geometry.Capacity()
	frameCount := p.geometry.FrameCountFor(len(data))

	frames := make([]Frame, frameCount)
	for i := 0; i < frameCount; i++ {
		start := i * capacity
		end := start + capacity

		if end <= len(data) {
			frames[i] = Frame{
				Width:  p.geometry.Width,
				Height: p.geometry.Height,
				Data:   data[start:end:end],
			}
			continue
		}

		padded := make([]byte, capacity)
		if start < len(data) {
			copy(padded, data[start:])
		}
		frames[i] = Frame{
			Width:  p.geometry.Width,
			Height: p.geometry.Height,
			Data:   padded,
		}
	}

	md := &PackMetadata{
		Version:        MetadataVersion,
		OriginalLength: int64(len(data)),
		FrameWidth:     p.geometry.Width,
		FrameHeight:    p.geometry.Height,
		FrameCount:     frameCount,
		FrameRate:      p.frameRate,
		StreamDigest:   computeStreamDigest(data),
		FrameChecksums: checksumFrames(frames, p.workers),
		CreatedAt:      p.timeProvider.Now().UTC(),
	}

	logrus.WithFields(logrus.Fields{
		"function":      "Pack",
		"frame_count":   frameCount,
		"padding_bytes": md.PaddingBytes(),
	}).Info("Byte stream packed successfully")

	return frames, md, nil
}
