// Package vidvault stores folders inside lossless video files and restores
// them byte-for-byte.
//
// An encode run archives a folder to tar, compresses the archive with zstd,
// packs the compressed stream into fixed-geometry RGB24 frames and hands the
// frame sequence to an FFV1 codec, producing a playable MKV plus a small JSON
// metadata sidecar. A decode run reverses every stage and proves fidelity
// against a BLAKE2b stream digest recorded at encode time. Because FFV1 is
// mathematically lossless, the video file doubles as exact byte storage.
//
// # Getting Started
//
// Create a pipeline with options and run the two high-level operations:
//
//	options := vidvault.NewOptions()
//	options.CompressionLevel = 19
//
//	pipeline, err := vidvault.New(options)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pipeline.Close()
//
//	// Encode a folder into vault.mkv + vault.meta
//	result, err := pipeline.EncodeFolder(ctx, "/data/photos", "vault")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("stored %d frames (%d padding bytes)\n",
//	    result.FrameCount, result.PaddingBytes)
//
//	// Restore it later
//	_, err = pipeline.DecodeFolder(ctx, "vault", "/data/restored")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Core Types
//
// The package defines several core types:
//
//   - [Pipeline]: Main API facade integrating archiver, compressor, packer and codec
//   - [Options]: Configuration options for creating a new Pipeline instance
//   - [EncodeResult] and [DecodeResult]: Per-run reports with paths, sizes and timing
//
// # Frame Geometry
//
// Frames are Width x Height x 3 bytes of RGB24. The geometry fixes each
// frame's byte capacity, and the default 1920x1080 holds about 6.2 MB per
// frame. A vault must be decoded at the geometry it was encoded with; the
// sidecar records it and Inspect reads it back:
//
//	md, err := pipeline.Inspect("vault")
//	fmt.Printf("encoded at %s, %d frames\n", md.Geometry(), md.FrameCount)
//
// # Integrity Verification
//
// Encode records a BLAKE2b-256 digest over the packed stream plus one xxHash64
// checksum per frame. Decode recomputes the stream digest and refuses to
// extract when it does not match, logging which frames are damaged so the
// failure can be localized. Per-frame checksums never gate extraction on
// their own.
//
// # Simulation Support
//
// Setting Options.UseSimulation swaps the ffmpeg codec for an in-process
// simulated codec from the testing package, so the full pipeline can run in
// environments without ffmpeg. Simulated containers are raw frame dumps, not
// playable video.
//
// # External Tools
//
// The production codec spawns ffmpeg. Call codec.CheckTools before encoding
// to fail fast with install guidance when it is missing.
//
// # Error Handling
//
// Operations return wrapped sentinel errors; match with errors.Is:
//
//	_, err := pipeline.DecodeFolder(ctx, "vault", out)
//	if errors.Is(err, frame.ErrChecksumMismatch) {
//	    // the video no longer carries the original bytes
//	}
package vidvault
