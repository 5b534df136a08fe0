// Package frame implements the bit-exact byte-to-frame packing layer of the
// vidvault pipeline, converting an arbitrary byte stream into fixed-geometry
// RGB24 video frames and back.
//
// # Overview
//
// The frame package provides two primary components:
//
//   - Packer: Splits a byte stream into capacity-sized frames, zero-padding
//     the final frame, and records recovery metadata
//   - Unpacker: Validates a frame sequence against its metadata and
//     reconstructs the exact original byte stream
//
// Every frame carries Width * Height * 3 payload bytes in row-major order:
// byte i lands in channel (i mod 3) of pixel (i div 3). Frames never share
// a chunk; the stream always resumes at the start of the next frame.
//
// # Packing
//
// Create a packer with an explicit geometry and pack a stream:
//
//	packer, err := frame.NewPacker(frame.Geometry{Width: 1920, Height: 1080})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	frames, md, err := packer.Pack(compressed)
//
// Empty input packs into exactly one fully padded frame, so a valid video
// container exists even for a zero-byte stream.
//
// # Unpacking
//
// Unpack with the same geometry encode used:
//
//	unpacker, err := frame.NewUnpacker(md.Geometry())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	recovered, err := unpacker.Unpack(frames, md)
//
// The recovered slice is truncated to the original byte length recorded in
// the metadata. Padding is never detected by scanning for a sentinel value,
// so any pad byte content survives the round trip untouched.
//
// # Metadata
//
// PackMetadata is the invertibility contract: original byte length, frame
// geometry, and frame count, plus integrity fields (BLAKE2b-256 stream
// digest and per-frame xxhash64 checksums). It serializes to a JSON side
// file:
//
//	if err := md.WriteFile(prefix + ".meta"); err != nil {
//	    log.Fatal(err)
//	}
//	md, err := frame.ReadPackMetadataFile(prefix + ".meta")
//
// # Integrity Verification
//
// Stream digest verification is the hard gate: a mismatch means the
// reconstructed bytes are corrupt.
//
//	if err := md.VerifyStream(recovered); err != nil {
//	    // err wraps frame.ErrChecksumMismatch
//	}
//
// Per-frame checksums localize the damage for diagnostics:
//
//	damaged := md.VerifyFrames(frames) // indices of damaged frames
//
// VerifyFrames never affects unpack output.
//
// # Zero-Copy Contract
//
// Frames produced by Pack alias the input stream wherever a full chunk is
// available; only a padded final frame owns its buffer. Callers must treat
// Frame.Data as read-only.
//
// # Error Handling
//
// The package provides sentinel errors for reliable classification with
// errors.Is:
//
//	var (
//	    ErrGeometryMismatch   // frame dimensions disagree with metadata or unpacker
//	    ErrFrameCountMismatch // sequence length disagrees with metadata
//	    ErrTruncatedInput     // sequence carries fewer bytes than metadata claims
//	    ErrInvalidMetadata    // metadata missing, unparseable, or inconsistent
//	    ErrChecksumMismatch   // reconstructed bytes fail digest verification
//	)
//
// All errors are wrapped with context for debugging.
package frame
