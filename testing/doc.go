// Package testing provides a simulation-based video codec for deterministic
// testing of the vidvault pipeline.
//
// # Overview
//
// This package implements a simulated video codec that mirrors the production
// FFV1 codec but writes frames into a trivial raw container instead of
// spawning ffmpeg. This allows tests to verify the full encode/decode
// pipeline without external tools, ensuring reproducible and fast test
// execution.
//
// # Simulation vs Real Implementation
//
// The vidvault library supports two codec modes:
//
//   - Simulation (this package): Frames are stored verbatim in a raw
//     container file with operation logs for verification. Used for unit
//     and integration testing.
//
//   - Real (codec package): Frames are encoded to FFV1 video via a spawned
//     ffmpeg process. Used for production encoding.
//
// Both implementations conform to the interfaces.IVideoCodec interface,
// allowing seamless switching via the factory package.
//
// # Usage
//
// Create a simulated codec instance for testing:
//
//	sim, err := testing.NewSimulatedVideoCodec(frame.Geometry{Width: 64, Height: 48})
//	if err != nil {
//	    t.Fatal(err)
//	}
//
//	// Encode and decode frames
//	err = sim.EncodeFrames(ctx, frames, "out.vvsim")
//	decoded, err := sim.DecodeFrames(ctx, "out.vvsim")
//
//	// Verify behavior via logs
//	log := sim.GetOperationLog()
//	if len(log) != 2 || !log[0].Success {
//	    t.Error("expected successful operations")
//	}
//
// # Damage Injection
//
// CorruptFrame flips a byte inside a chosen frame of an existing container,
// which is how tests exercise the pipeline's per-frame damage detection:
//
//	err = sim.CorruptFrame("out.vvsim", 2)
//
// # Operation Logs
//
// The simulation maintains a complete operation log that can be inspected
// during test verification. Each OperationRecord contains:
//
//   - Operation: "encode" or "decode"
//   - VideoPath: The container file the operation touched
//   - FrameCount: Number of frames written or read
//   - Timestamp: Unix nanoseconds when the operation occurred
//   - Success: Whether the operation succeeded
//   - Error: Any error that occurred during the operation
//
// Use GetOperationLog to retrieve the log, and ClearOperationLog to reset
// between test cases.
//
// # Thread Safety
//
// All methods on SimulatedVideoCodec are safe for concurrent use from
// multiple goroutines. Internal synchronization uses sync.RWMutex.
package testing
