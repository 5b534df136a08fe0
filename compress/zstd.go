// Package compress provides the zstd compressor used between the archive
// and frame-packing stages of the vidvault pipeline.
package compress

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/vidvault/limits"
)

// ErrCompressorClosed indicates use of a compressor after Close.
var ErrCompressorClosed = errors.New("compressor is closed")

// DefaultLevel is the zstd level used when nothing else is configured.
// Level 19 is the archival-grade setting of the encode pipeline; encoding
// pays the cost once while decoding stays fast.
const DefaultLevel = 19

// largeWindowSize is the encoder window for long-range matching. Archive
// streams repeat across large distances (file copies, shared headers), so
// a big window buys real ratio on folder-scale input.
const largeWindowSize = 1 << 27 // 128 MiB

// ZstdCompressor implements lossless byte-stream compression over
// klauspost/compress/zstd. The encoder and decoder are created once and
// reused; both are safe for concurrent use until Close.
type ZstdCompressor struct {
	level   int
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	closed  bool
}

// NewZstdCompressor creates a compressor at the given zstd level (1..19).
func NewZstdCompressor(level int) (*ZstdCompressor, error) {
	logrus.WithFields(logrus.Fields{
		"function": "NewZstdCompressor",
		"level":    level,
	}).Debug("Creating zstd compressor")

	if err := limits.ValidateCompressionLevel(level); err != nil {
		return nil, fmt.Errorf("failed to create compressor: %w", err)
	}

	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
		zstd.WithWindowSize(largeWindowSize),
		zstd.WithZeroFrames(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &ZstdCompressor{
		level:   level,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Compress compresses data into a zstd stream. Empty input produces a
// valid zero-length frame so the empty stream round-trips like any other.
func (c *ZstdCompressor) Compress(data []byte) ([]byte, error) {
	if c.closed {
		return nil, ErrCompressorClosed
	}

	compressed := c.encoder.EncodeAll(data, nil)

	logrus.WithFields(logrus.Fields{
		"function":         "Compress",
		"input_bytes":      len(data),
		"compressed_bytes": len(compressed),
	}).Debug("Compressed byte stream")

	return compressed, nil
}

// Decompress reverses Compress, restoring the exact original bytes.
func (c *ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if c.closed {
		return nil, ErrCompressorClosed
	}

	restored, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function":       "Decompress",
		"input_bytes":    len(data),
		"restored_bytes": len(restored),
	}).Debug("Decompressed byte stream")

	return restored, nil
}

// Level returns the configured zstd level.
func (c *ZstdCompressor) Level() int {
	return c.level
}

// Close releases encoder and decoder resources. The compressor rejects all
// operations afterwards.
func (c *ZstdCompressor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	err := c.encoder.Close()
	c.decoder.Close()
	return err
}
