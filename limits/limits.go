// Package limits provides centralized size and geometry limits for the vidvault
// pipeline. This ensures consistent validation across different components of the system.
package limits

import (
	"errors"
	"fmt"
)

const (
	// BytesPerPixel is the storage cost of one RGB24 pixel.
	BytesPerPixel = 3

	// MinFrameDimension is the smallest accepted frame width or height.
	// A 1x1 frame is degenerate but still a valid 3-byte carrier.
	MinFrameDimension = 1

	// MaxFrameDimension is the largest accepted frame width or height (8K).
	// FFV1 handles larger rasters, but ffmpeg rawvideo buffers and the
	// per-frame memory cost grow quadratically past this point.
	MaxFrameDimension = 8192

	// MaxFrameBytes is the largest per-frame byte capacity that a single
	// frame buffer may occupy (MaxFrameDimension^2 pixels, RGB24).
	MaxFrameBytes = MaxFrameDimension * MaxFrameDimension * BytesPerPixel

	// MaxMetadataFileSize is the absolute maximum for a metadata side file.
	// This prevents memory exhaustion when reading untrusted .meta files (1MB limit).
	MaxMetadataFileSize = 1024 * 1024

	// MinCompressionLevel is the lowest accepted zstd compression level.
	MinCompressionLevel = 1

	// MaxCompressionLevel is the highest accepted zstd compression level.
	// Level 19 matches the archival-grade setting used by the encode pipeline.
	MaxCompressionLevel = 19

	// MinFrameRate is the lowest accepted container frame rate.
	MinFrameRate = 1

	// MaxFrameRate is the highest accepted container frame rate.
	// The rate only affects playback duration, never the stored bytes.
	MaxFrameRate = 240

	// MaxWorkers is the largest accepted checksum worker count.
	MaxWorkers = 256
)

var (
	// ErrDimensionTooSmall indicates a frame dimension below MinFrameDimension.
	ErrDimensionTooSmall = errors.New("frame dimension too small")

	// ErrDimensionTooLarge indicates a frame dimension above MaxFrameDimension.
	ErrDimensionTooLarge = errors.New("frame dimension too large")

	// ErrFrameTooLarge indicates a frame capacity above MaxFrameBytes.
	ErrFrameTooLarge = errors.New("frame capacity too large")

	// ErrMetadataTooLarge indicates a metadata file exceeds MaxMetadataFileSize.
	ErrMetadataTooLarge = errors.New("metadata file too large")

	// ErrLevelOutOfRange indicates a compression level outside the accepted range.
	ErrLevelOutOfRange = errors.New("compression level out of range")

	// ErrFrameRateOutOfRange indicates a frame rate outside the accepted range.
	ErrFrameRateOutOfRange = errors.New("frame rate out of range")

	// ErrWorkersOutOfRange indicates a worker count outside the accepted range.
	ErrWorkersOutOfRange = errors.New("worker count out of range")
)

// ValidateFrameDimensions validates a frame width and height pair.
// Returns an error with context including the offending dimension and its limit.
func ValidateFrameDimensions(width, height int) error {
	if width < MinFrameDimension {
		return fmt.Errorf("%w: width %d below minimum %d", ErrDimensionTooSmall, width, MinFrameDimension)
	}
	if height < MinFrameDimension {
		return fmt.Errorf("%w: height %d below minimum %d", ErrDimensionTooSmall, height, MinFrameDimension)
	}
	if width > MaxFrameDimension {
		return fmt.Errorf("%w: width %d exceeds maximum %d", ErrDimensionTooLarge, width, MaxFrameDimension)
	}
	if height > MaxFrameDimension {
		return fmt.Errorf("%w: height %d exceeds maximum %d", ErrDimensionTooLarge, height, MaxFrameDimension)
	}
	if width*height*BytesPerPixel > MaxFrameBytes {
		return fmt.Errorf("%w: %dx%d needs %d bytes, limit %d", ErrFrameTooLarge, width, height, width*height*BytesPerPixel, MaxFrameBytes)
	}
	return nil
}

// ValidateCompressionLevel validates a zstd compression level against the
// accepted [MinCompressionLevel, MaxCompressionLevel] range.
func ValidateCompressionLevel(level int) error {
	if level < MinCompressionLevel || level > MaxCompressionLevel {
		return fmt.Errorf("%w: level %d outside [%d, %d]", ErrLevelOutOfRange, level, MinCompressionLevel, MaxCompressionLevel)
	}
	return nil
}

// ValidateFrameRate validates a container frame rate against the accepted
// [MinFrameRate, MaxFrameRate] range.
func ValidateFrameRate(rate int) error {
	if rate < MinFrameRate || rate > MaxFrameRate {
		return fmt.Errorf("%w: rate %d outside [%d, %d]", ErrFrameRateOutOfRange, rate, MinFrameRate, MaxFrameRate)
	}
	return nil
}

// ValidateWorkerCount validates a checksum worker count against the accepted
// [1, MaxWorkers] range.
func ValidateWorkerCount(workers int) error {
	if workers < 1 || workers > MaxWorkers {
		return fmt.Errorf("%w: %d outside [1, %d]", ErrWorkersOutOfRange, workers, MaxWorkers)
	}
	return nil
}

// ValidateMetadataSize validates a metadata payload size against MaxMetadataFileSize.
// All .meta content read from disk should pass through this check before parsing.
func ValidateMetadataSize(size int64) error {
	if size > MaxMetadataFileSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrMetadataTooLarge, size, MaxMetadataFileSize)
	}
	return nil
}
