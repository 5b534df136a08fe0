// Package factory provides a factory pattern implementation for creating the
// pipeline collaborators of vidvault.
//
// The factory abstracts the creation of the archiver, compressor and video
// codec, allowing seamless switching between simulation (for testing) and the
// real ffmpeg implementation without changing consuming code.
//
// # Factory Pattern Rationale
//
// The factory pattern is used here to:
//   - Decouple pipeline consumers from concrete implementations
//   - Enable dependency injection for testing scenarios
//   - Centralize configuration management for the pipeline
//   - Support runtime switching between simulation and production modes
//
// # Configuration
//
// The factory supports configuration via environment variables:
//   - VIDVAULT_USE_SIMULATION: "true" or "false" to enable the simulated codec
//   - VIDVAULT_FRAME_WIDTH: integer frame width in pixels
//   - VIDVAULT_FRAME_HEIGHT: integer frame height in pixels
//   - VIDVAULT_FRAME_RATE: integer playback frame rate
//   - VIDVAULT_COMPRESSION_LEVEL: integer zstd compression level
//   - VIDVAULT_WORKERS: integer checksum worker count
//   - VIDVAULT_VERIFY_CHECKSUMS: "true" or "false" to verify on decode
//
// Invalid or out-of-bounds values are logged and ignored, keeping the
// defaults.
//
// # Usage
//
// Create a factory and use it to create pipeline collaborators:
//
//	// Create factory with default configuration
//	factory := NewCollaboratorFactory()
//
//	// Create the real implementations
//	collabs, err := factory.CreateCollaborators()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Or create a simulation bundle for testing
//	simCollabs, err := factory.CreateSimulationForTesting()
//
// # Testing Support
//
// For testing scenarios, use CreateSimulationForTesting() which creates
// simulation collaborators with test-optimized configuration (tiny frames,
// fast compression level). Functional options override individual values:
//
//	func TestMyFeature(t *testing.T) {
//	    factory := NewCollaboratorFactory()
//	    collabs, err := factory.CreateSimulationForTesting(
//	        WithFrameGeometry(8, 8),
//	        WithCompressionLevel(1),
//	    )
//	    // Use collabs in tests...
//	}
//
// # Mode Switching
//
// The factory supports runtime mode switching for integration testing:
//
//	factory := NewCollaboratorFactory()
//	factory.SwitchToSimulation()  // Switch to the simulated codec
//	factory.SwitchToReal()        // Switch back to ffmpeg
package factory
