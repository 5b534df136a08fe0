package frame

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/vidvault/limits"
)

// MetadataVersion is the current pack metadata format version.
const MetadataVersion = 1

// PackMetadata records everything needed to invert a pack operation.
//
// The four integer fields are the recovery contract: original byte length
// drives truncation, the geometry fields pin the frame dimensions, and the
// frame count guards against dropped or duplicated frames. The integrity
// fields are advisory on top of that contract: the stream digest detects
// any corruption of the reconstructed bytes, and the per-frame checksums
// localize which frames were damaged.
type PackMetadata struct {
	Version        int       `json:"version"`
	OriginalLength int64     `json:"original_byte_length"`
	FrameWidth     int       `json:"frame_width"`
	FrameHeight    int       `json:"frame_height"`
	FrameCount     int       `json:"frame_count"`
	FrameRate      int       `json:"frame_rate"`
	StreamDigest   string    `json:"stream_digest,omitempty"`
	FrameChecksums []string  `json:"frame_checksums,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Geometry returns the frame geometry recorded in the metadata.
func (md *PackMetadata) Geometry() Geometry {
	return Geometry{Width: md.FrameWidth, Height: md.FrameHeight}
}

// PaddingBytes returns the number of zero pad bytes in the final frame.
func (md *PackMetadata) PaddingBytes() int64 {
	return int64(md.FrameCount)*int64(md.Geometry().Capacity()) - md.OriginalLength
}

// Validate checks the metadata for missing fields and internal
// inconsistencies. All failures wrap ErrInvalidMetadata.
func (md *PackMetadata) Validate() error {
	if md == nil {
		return fmt.Errorf("%w: metadata is nil", ErrInvalidMetadata)
	}
	if md.Version != MetadataVersion {
		return fmt.Errorf("%w: unsupported version %d, expected %d",
			ErrInvalidMetadata, md.Version, MetadataVersion)
	}
	if md.OriginalLength < 0 {
		return fmt.Errorf("%w: negative original byte length %d",
			ErrInvalidMetadata, md.OriginalLength)
	}
	if err := md.Geometry().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	if err := limits.ValidateFrameRate(md.FrameRate); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}

	capacity := int64(md.Geometry().Capacity())
	expected := (md.OriginalLength + capacity - 1) / capacity
	if md.OriginalLength == 0 {
		expected = 1
	}
	if int64(md.FrameCount) != expected {
		return fmt.Errorf("%w: frame count %d inconsistent with %d bytes at %s (expected %d)",
			ErrInvalidMetadata, md.FrameCount, md.OriginalLength, md.Geometry(), expected)
	}

	if md.StreamDigest != "" && !strings.HasPrefix(md.StreamDigest, StreamDigestPrefix) {
		return fmt.Errorf("%w: unknown stream digest algorithm in %q",
			ErrInvalidMetadata, md.StreamDigest)
	}
	if len(md.FrameChecksums) != 0 && len(md.FrameChecksums) != md.FrameCount {
		return fmt.Errorf("%w: %d frame checksums for %d frames",
			ErrInvalidMetadata, len(md.FrameChecksums), md.FrameCount)
	}
	return nil
}

// Serialize converts the metadata to its JSON side-file representation.
// Invalid metadata is refused rather than written to disk.
func (md *PackMetadata) Serialize() ([]byte, error) {
	if err := md.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(md)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize metadata: %w", err)
	}
	return data, nil
}

// LoadPackMetadata parses and validates JSON metadata.
// Unparseable or inconsistent input yields ErrInvalidMetadata.
func LoadPackMetadata(data []byte) (*PackMetadata, error) {
	if err := limits.ValidateMetadataSize(int64(len(data))); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	var md PackMetadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	if err := md.Validate(); err != nil {
		return nil, err
	}
	return &md, nil
}

// WriteFile serializes the metadata and writes it to path.
func (md *PackMetadata) WriteFile(path string) error {
	logrus.WithFields(logrus.Fields{
		"function":    "WriteFile",
		"path":        path,
		"frame_count": md.FrameCount,
	}).Debug("Writing pack metadata file")

	data, err := md.Serialize()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}
	return nil
}

// ReadPackMetadataFile loads and validates metadata from a side file.
// The file size is capped before reading to bound memory on untrusted input.
func ReadPackMetadataFile(path string) (*PackMetadata, error) {
	logrus.WithFields(logrus.Fields{
		"function": "ReadPackMetadataFile",
		"path":     path,
	}).Debug("Reading pack metadata file")

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat metadata file: %w", err)
	}
	if err := limits.ValidateMetadataSize(info.Size()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}
	return LoadPackMetadata(data)
}
