// Package interfaces defines the collaborator abstractions of the vidvault
// pipeline: archiving, compression, and video codec operations.
//
// This package provides the contracts that let the pipeline swap
// implementations without touching orchestration code, supporting both
// production runs against real tools and deterministic testing without
// external dependencies.
//
// # Core Interfaces
//
// [IArchiver] turns a folder tree into a byte stream and back:
//
//	data, err := archiver.Archive(ctx, "/photos/festival")
//	...
//	err = archiver.Extract(ctx, data, "/restore/festival")
//
// [ICompressor] is a lossless byte-stream compressor. The binding contract
// is exact round-tripping, Decompress(Compress(x)) == x, for every input
// including empty:
//
//	compressed, err := compressor.Compress(data)
//	restored, err := compressor.Decompress(compressed)
//
// [IVideoCodec] stores a frame sequence losslessly in a video file and
// reads it back byte for byte, in order:
//
//	err := codec.EncodeFrames(ctx, frames, "archive.mkv")
//	frames, err := codec.DecodeFrames(ctx, "archive.mkv")
//
// Bit-exactness is what qualifies an implementation: FFV1 in MKV satisfies
// it, any lossy codec does not.
//
// # Configuration
//
// [PipelineConfig] holds settings for collaborator construction:
//
//	config := interfaces.PipelineConfig{
//	    FrameWidth:       1920,
//	    FrameHeight:      1080,
//	    FrameRate:        30,
//	    CompressionLevel: 19,
//	    Workers:          8,
//	    VerifyChecksums:  true,
//	}
//	if err := config.Validate(); err != nil {
//	    log.Fatalf("invalid config: %v", err)
//	}
//
// # Implementation Selection
//
// The factory package creates implementations based on configuration:
//   - UseSimulation=true: tar + zstd + SimulatedVideoCodec from the testing package
//   - UseSimulation=false: tar + zstd + ffmpeg-backed FFV1 codec
//
// Simulation implementations are useful for:
//   - Unit testing without an ffmpeg installation
//   - Deterministic round-trip scenarios
//   - CI environments without external tools
//
// # Context Handling
//
// Archive, Extract, EncodeFrames, and DecodeFrames accept a context and
// honor cancellation between units of work (archive entries, spawned
// processes). Pure in-memory transforms elsewhere in the pipeline do not
// take a context.
//
// # Error Handling
//
// Implementations return errors wrapped with context; sentinel errors for
// classification live in the implementing packages (archive.ErrUnsafePath,
// codec.ErrToolNotFound, frame.ErrGeometryMismatch, ...).
package interfaces
