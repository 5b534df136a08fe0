package frame

import "errors"

// Sentinel errors for frame packing and unpacking operations.
// These errors enable reliable error classification using errors.Is().

// Unpack validation errors.
var (
	// ErrGeometryMismatch indicates frame dimensions disagree with the
	// metadata or with the unpacker's configured geometry.
	ErrGeometryMismatch = errors.New("frame geometry mismatch")

	// ErrFrameCountMismatch indicates the sequence length disagrees with
	// the frame count recorded in the metadata.
	ErrFrameCountMismatch = errors.New("frame count mismatch")

	// ErrTruncatedInput indicates the sequence carries fewer payload bytes
	// than the original byte length claims.
	ErrTruncatedInput = errors.New("truncated frame input")
)

// Metadata errors.
var (
	// ErrInvalidMetadata indicates metadata that is missing, unparseable,
	// or internally inconsistent.
	ErrInvalidMetadata = errors.New("invalid pack metadata")

	// ErrChecksumMismatch indicates reconstructed bytes do not match the
	// integrity digest recorded in the metadata.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)
