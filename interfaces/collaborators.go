package interfaces

import (
	"context"

	"github.com/opd-ai/vidvault/frame"
	"github.com/opd-ai/vidvault/limits"
)

// IArchiver defines the interface for folder archiving operations.
// This abstraction allows switching the archive format without touching
// the pipeline; the contract is a byte stream in both directions.
type IArchiver interface {
	// Archive serializes the folder rooted at path into a single byte stream
	Archive(ctx context.Context, path string) ([]byte, error)

	// Extract recreates an archived folder tree under path
	Extract(ctx context.Context, data []byte, path string) error
}

// ICompressor defines the interface for lossless byte-stream compression.
// Decompress(Compress(x)) must equal x for every input including empty.
type ICompressor interface {
	// Compress compresses data
	Compress(data []byte) ([]byte, error)

	// Decompress reverses Compress
	Decompress(data []byte) ([]byte, error)

	// Level returns the configured compression level
	Level() int

	// Close releases compressor resources
	Close() error
}

// IVideoCodec defines the interface for lossless frame-sequence storage.
// EncodeFrames then DecodeFrames must reproduce every frame byte for byte;
// this is what makes FFV1 (or a simulation) acceptable and lossy codecs not.
type IVideoCodec interface {
	// EncodeFrames writes the frame sequence, in order, to a video file
	EncodeFrames(ctx context.Context, frames []frame.Frame, videoPath string) error

	// DecodeFrames reads every frame, in order, from a video file
	DecodeFrames(ctx context.Context, videoPath string) ([]frame.Frame, error)

	// IsSimulation returns true if this is a simulation implementation
	IsSimulation() bool
}

// PipelineConfig holds configuration for collaborator construction.
type PipelineConfig struct {
	// UseSimulation determines whether to use the simulated codec instead of ffmpeg
	UseSimulation bool

	// FrameWidth and FrameHeight set the frame geometry in pixels
	FrameWidth  int
	FrameHeight int

	// FrameRate sets the container frame rate (playback duration only)
	FrameRate int

	// CompressionLevel sets the zstd level (1..19)
	CompressionLevel int

	// Workers sets the checksum worker count
	Workers int

	// VerifyChecksums enables integrity verification during decode
	VerifyChecksums bool
}

// Geometry returns the configured frame geometry.
func (c PipelineConfig) Geometry() frame.Geometry {
	return frame.Geometry{Width: c.FrameWidth, Height: c.FrameHeight}
}

// Validate checks every configured value against the package limits.
func (c PipelineConfig) Validate() error {
	if err := limits.ValidateFrameDimensions(c.FrameWidth, c.FrameHeight); err != nil {
		return err
	}
	if err := limits.ValidateFrameRate(c.FrameRate); err != nil {
		return err
	}
	if err := limits.ValidateCompressionLevel(c.CompressionLevel); err != nil {
		return err
	}
	return limits.ValidateWorkerCount(c.Workers)
}
