package factory

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/vidvault/archive"
	"github.com/opd-ai/vidvault/codec"
	"github.com/opd-ai/vidvault/compress"
	"github.com/opd-ai/vidvault/frame"
	"github.com/opd-ai/vidvault/interfaces"
	"github.com/opd-ai/vidvault/limits"
	"github.com/opd-ai/vidvault/testing"
)

// Collaborators bundles the pipeline implementations a factory produces.
type Collaborators struct {
	Archiver   interfaces.IArchiver
	Compressor interfaces.ICompressor
	Codec      interfaces.IVideoCodec
}

// CollaboratorFactory creates pipeline collaborator implementations based on
// configuration. It is safe for concurrent use; all methods are protected by
// an internal mutex.
type CollaboratorFactory struct {
	mu            sync.RWMutex
	defaultConfig *interfaces.PipelineConfig
}

// TestConfigOption is a functional option for customizing test simulation configuration.
type TestConfigOption func(*interfaces.PipelineConfig)

// NewCollaboratorFactory creates a new factory with default configuration
func NewCollaboratorFactory() *CollaboratorFactory {
	defaultConfig := createDefaultConfig()
	applyEnvironmentOverrides(defaultConfig)
	logConfigurationInfo(defaultConfig)

	return &CollaboratorFactory{
		defaultConfig: defaultConfig,
	}
}

// createDefaultConfig initializes the default pipeline configuration.
// It sets up sensible defaults for all configuration parameters.
//
// Default Value Rationale:
//   - UseSimulation: false - Production ffmpeg codec by default; simulation must be explicitly enabled
//   - FrameWidth/FrameHeight: 1920x1080 - Full HD frames keep frame counts low for typical folders
//   - FrameRate: 30 - Playable in any player while irrelevant to storage fidelity
//   - CompressionLevel: 19 - Maximum zstd level; archival favors ratio over speed
//   - Workers: NumCPU - Checksum fan-out saturates available cores
//   - VerifyChecksums: true - Decode should always prove byte fidelity
func createDefaultConfig() *interfaces.PipelineConfig {
	workers := runtime.NumCPU()
	if workers > limits.MaxWorkers {
		workers = limits.MaxWorkers
	}
	return &interfaces.PipelineConfig{
		UseSimulation:    false, // Default to real ffmpeg implementation
		FrameWidth:       1920,
		FrameHeight:      1080,
		FrameRate:        frame.DefaultFrameRate,
		CompressionLevel: limits.MaxCompressionLevel,
		Workers:          workers,
		VerifyChecksums:  true,
	}
}

// applyEnvironmentOverrides updates configuration based on environment variables.
// It checks for VIDVAULT_* environment variables and overrides defaults if valid values are found.
func applyEnvironmentOverrides(config *interfaces.PipelineConfig) {
	parseSimulationSetting(config)
	parseFrameWidthSetting(config)
	parseFrameHeightSetting(config)
	parseFrameRateSetting(config)
	parseCompressionLevelSetting(config)
	parseWorkersSetting(config)
	parseVerifySetting(config)
}

// parseSimulationSetting updates the UseSimulation config from VIDVAULT_USE_SIMULATION environment variable.
// It safely parses the boolean value, logs a warning if parsing fails, and only updates config if parsing succeeds.
func parseSimulationSetting(config *interfaces.PipelineConfig) {
	if useSimStr := os.Getenv("VIDVAULT_USE_SIMULATION"); useSimStr != "" {
		useSim, err := strconv.ParseBool(useSimStr)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "parseSimulationSetting",
				"env_var":     "VIDVAULT_USE_SIMULATION",
				"value":       useSimStr,
				"error":       err.Error(),
				"using_value": config.UseSimulation,
			}).Warn("Failed to parse VIDVAULT_USE_SIMULATION environment variable, using default")
			return
		}
		config.UseSimulation = useSim
	}
}

// parseFrameWidthSetting updates the FrameWidth config from VIDVAULT_FRAME_WIDTH environment variable.
// It validates the value is within dimension bounds and logs warnings for invalid values.
func parseFrameWidthSetting(config *interfaces.PipelineConfig) {
	if widthStr := os.Getenv("VIDVAULT_FRAME_WIDTH"); widthStr != "" {
		width, err := strconv.Atoi(widthStr)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "parseFrameWidthSetting",
				"env_var":     "VIDVAULT_FRAME_WIDTH",
				"value":       widthStr,
				"error":       err.Error(),
				"using_value": config.FrameWidth,
			}).Warn("Failed to parse VIDVAULT_FRAME_WIDTH environment variable, using default")
			return
		}
		if width < limits.MinFrameDimension || width > limits.MaxFrameDimension {
			logrus.WithFields(logrus.Fields{
				"function":    "parseFrameWidthSetting",
				"env_var":     "VIDVAULT_FRAME_WIDTH",
				"value":       width,
				"min":         limits.MinFrameDimension,
				"max":         limits.MaxFrameDimension,
				"using_value": config.FrameWidth,
			}).Warn("VIDVAULT_FRAME_WIDTH value out of bounds, using default")
			return
		}
		config.FrameWidth = width
	}
}

// parseFrameHeightSetting updates the FrameHeight config from VIDVAULT_FRAME_HEIGHT environment variable.
// It validates the value is within dimension bounds and logs warnings for invalid values.
func parseFrameHeightSetting(config *interfaces.PipelineConfig) {
	if heightStr := os.Getenv("VIDVAULT_FRAME_HEIGHT"); heightStr != "" {
		height, err := strconv.Atoi(heightStr)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "parseFrameHeightSetting",
				"env_var":     "VIDVAULT_FRAME_HEIGHT",
				"value":       heightStr,
				"error":       err.Error(),
				"using_value": config.FrameHeight,
			}).Warn("Failed to parse VIDVAULT_FRAME_HEIGHT environment variable, using default")
			return
		}
		if height < limits.MinFrameDimension || height > limits.MaxFrameDimension {
			logrus.WithFields(logrus.Fields{
				"function":    "parseFrameHeightSetting",
				"env_var":     "VIDVAULT_FRAME_HEIGHT",
				"value":       height,
				"min":         limits.MinFrameDimension,
				"max":         limits.MaxFrameDimension,
				"using_value": config.FrameHeight,
			}).Warn("VIDVAULT_FRAME_HEIGHT value out of bounds, using default")
			return
		}
		config.FrameHeight = height
	}
}

// parseFrameRateSetting updates the FrameRate config from VIDVAULT_FRAME_RATE environment variable.
// It validates the value is within frame rate bounds and logs warnings for invalid values.
func parseFrameRateSetting(config *interfaces.PipelineConfig) {
	if rateStr := os.Getenv("VIDVAULT_FRAME_RATE"); rateStr != "" {
		rate, err := strconv.Atoi(rateStr)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "parseFrameRateSetting",
				"env_var":     "VIDVAULT_FRAME_RATE",
				"value":       rateStr,
				"error":       err.Error(),
				"using_value": config.FrameRate,
			}).Warn("Failed to parse VIDVAULT_FRAME_RATE environment variable, using default")
			return
		}
		if rate < limits.MinFrameRate || rate > limits.MaxFrameRate {
			logrus.WithFields(logrus.Fields{
				"function":    "parseFrameRateSetting",
				"env_var":     "VIDVAULT_FRAME_RATE",
				"value":       rate,
				"min":         limits.MinFrameRate,
				"max":         limits.MaxFrameRate,
				"using_value": config.FrameRate,
			}).Warn("VIDVAULT_FRAME_RATE value out of bounds, using default")
			return
		}
		config.FrameRate = rate
	}
}

// parseCompressionLevelSetting updates the CompressionLevel config from VIDVAULT_COMPRESSION_LEVEL
// environment variable. It validates the value is within zstd level bounds and logs warnings for
// invalid values.
func parseCompressionLevelSetting(config *interfaces.PipelineConfig) {
	if levelStr := os.Getenv("VIDVAULT_COMPRESSION_LEVEL"); levelStr != "" {
		level, err := strconv.Atoi(levelStr)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "parseCompressionLevelSetting",
				"env_var":     "VIDVAULT_COMPRESSION_LEVEL",
				"value":       levelStr,
				"error":       err.Error(),
				"using_value": config.CompressionLevel,
			}).Warn("Failed to parse VIDVAULT_COMPRESSION_LEVEL environment variable, using default")
			return
		}
		if level < limits.MinCompressionLevel || level > limits.MaxCompressionLevel {
			logrus.WithFields(logrus.Fields{
				"function":    "parseCompressionLevelSetting",
				"env_var":     "VIDVAULT_COMPRESSION_LEVEL",
				"value":       level,
				"min":         limits.MinCompressionLevel,
				"max":         limits.MaxCompressionLevel,
				"using_value": config.CompressionLevel,
			}).Warn("VIDVAULT_COMPRESSION_LEVEL value out of bounds, using default")
			return
		}
		config.CompressionLevel = level
	}
}

// parseWorkersSetting updates the Workers config from VIDVAULT_WORKERS environment variable.
// It validates the value is within worker bounds and logs warnings for invalid values.
func parseWorkersSetting(config *interfaces.PipelineConfig) {
	if workersStr := os.Getenv("VIDVAULT_WORKERS"); workersStr != "" {
		workers, err := strconv.Atoi(workersStr)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "parseWorkersSetting",
				"env_var":     "VIDVAULT_WORKERS",
				"value":       workersStr,
				"error":       err.Error(),
				"using_value": config.Workers,
			}).Warn("Failed to parse VIDVAULT_WORKERS environment variable, using default")
			return
		}
		if workers < 1 || workers > limits.MaxWorkers {
			logrus.WithFields(logrus.Fields{
				"function":    "parseWorkersSetting",
				"env_var":     "VIDVAULT_WORKERS",
				"value":       workers,
				"min":         1,
				"max":         limits.MaxWorkers,
				"using_value": config.Workers,
			}).Warn("VIDVAULT_WORKERS value out of bounds, using default")
			return
		}
		config.Workers = workers
	}
}

// parseVerifySetting updates the VerifyChecksums config from VIDVAULT_VERIFY_CHECKSUMS environment
// variable. It safely parses the boolean value, logs a warning if parsing fails, and only updates
// config if parsing succeeds.
func parseVerifySetting(config *interfaces.PipelineConfig) {
	if verifyStr := os.Getenv("VIDVAULT_VERIFY_CHECKSUMS"); verifyStr != "" {
		verify, err := strconv.ParseBool(verifyStr)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "parseVerifySetting",
				"env_var":     "VIDVAULT_VERIFY_CHECKSUMS",
				"value":       verifyStr,
				"error":       err.Error(),
				"using_value": config.VerifyChecksums,
			}).Warn("Failed to parse VIDVAULT_VERIFY_CHECKSUMS environment variable, using default")
			return
		}
		config.VerifyChecksums = verify
	}
}

// logConfigurationInfo logs the final configuration settings for debugging purposes.
// It provides structured logging of all configuration parameters.
func logConfigurationInfo(config *interfaces.PipelineConfig) {
	logrus.WithFields(logrus.Fields{
		"function":          "NewCollaboratorFactory",
		"use_simulation":    config.UseSimulation,
		"frame_width":       config.FrameWidth,
		"frame_height":      config.FrameHeight,
		"frame_rate":        config.FrameRate,
		"compression_level": config.CompressionLevel,
		"workers":           config.Workers,
		"verify_checksums":  config.VerifyChecksums,
	}).Info("Created collaborator factory with configuration")
}

// CreateCollaborators creates pipeline collaborators based on the factory's
// default configuration.
func (f *CollaboratorFactory) CreateCollaborators() (*Collaborators, error) {
	f.mu.RLock()
	config := f.defaultConfig
	f.mu.RUnlock()
	return f.CreateCollaboratorsWithConfig(config)
}

// CreateCollaboratorsWithConfig creates pipeline collaborators with custom configuration
func (f *CollaboratorFactory) CreateCollaboratorsWithConfig(config *interfaces.PipelineConfig) (*Collaborators, error) {
	if config == nil {
		f.mu.RLock()
		config = f.defaultConfig
		f.mu.RUnlock()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create collaborators: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function":          "CreateCollaboratorsWithConfig",
		"use_simulation":    config.UseSimulation,
		"frame_width":       config.FrameWidth,
		"frame_height":      config.FrameHeight,
		"frame_rate":        config.FrameRate,
		"compression_level": config.CompressionLevel,
	}).Info("Creating pipeline collaborators")

	compressor, err := compress.NewZstdCompressor(config.CompressionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create compressor: %w", err)
	}

	videoCodec, err := f.createCodec(config)
	if err != nil {
		compressor.Close()
		return nil, err
	}

	return &Collaborators{
		Archiver:   archive.NewTarArchiver(),
		Compressor: compressor,
		Codec:      videoCodec,
	}, nil
}

// createCodec selects the simulation or real codec implementation from the
// configuration.
func (f *CollaboratorFactory) createCodec(config *interfaces.PipelineConfig) (interfaces.IVideoCodec, error) {
	geometry := config.Geometry()

	if config.UseSimulation {
		logrus.WithFields(logrus.Fields{
			"function": "createCodec",
			"type":     "simulation",
		}).Info("Creating simulation video codec implementation")

		sim, err := testing.NewSimulatedVideoCodec(geometry)
		if err != nil {
			return nil, fmt.Errorf("failed to create simulated codec: %w", err)
		}
		return sim, nil
	}

	logrus.WithFields(logrus.Fields{
		"function": "createCodec",
		"type":     "real",
	}).Info("Creating real video codec implementation")

	ffv1, err := codec.NewFFV1Codec(geometry, config.FrameRate)
	if err != nil {
		return nil, fmt.Errorf("failed to create ffmpeg codec: %w", err)
	}
	return ffv1, nil
}

// WithFrameGeometry sets custom frame dimensions for the test configuration.
func WithFrameGeometry(width, height int) TestConfigOption {
	return func(c *interfaces.PipelineConfig) {
		c.FrameWidth = width
		c.FrameHeight = height
	}
}

// WithFrameRate sets a custom frame rate for the test configuration.
func WithFrameRate(rate int) TestConfigOption {
	return func(c *interfaces.PipelineConfig) {
		c.FrameRate = rate
	}
}

// WithCompressionLevel sets a custom compression level for the test configuration.
func WithCompressionLevel(level int) TestConfigOption {
	return func(c *interfaces.PipelineConfig) {
		c.CompressionLevel = level
	}
}

// WithWorkers sets a custom worker count for the test configuration.
func WithWorkers(workers int) TestConfigOption {
	return func(c *interfaces.PipelineConfig) {
		c.Workers = workers
	}
}

// WithVerifyChecksums enables or disables checksum verification for the test configuration.
func WithVerifyChecksums(enabled bool) TestConfigOption {
	return func(c *interfaces.PipelineConfig) {
		c.VerifyChecksums = enabled
	}
}

// CreateSimulationForTesting creates simulation collaborators specifically for testing.
// It accepts optional TestConfigOption functions to override default test values.
// Default test configuration uses: 64x48 frames, CompressionLevel=3, Workers=2.
func (f *CollaboratorFactory) CreateSimulationForTesting(opts ...TestConfigOption) (*Collaborators, error) {
	testConfig := &interfaces.PipelineConfig{
		UseSimulation:    true,
		FrameWidth:       64, // Small frames keep test containers tiny
		FrameHeight:      48,
		FrameRate:        frame.DefaultFrameRate,
		CompressionLevel: 3, // Faster level for testing
		Workers:          2,
		VerifyChecksums:  true,
	}

	// Apply optional overrides
	for _, opt := range opts {
		opt(testConfig)
	}

	logrus.WithFields(logrus.Fields{
		"function":          "CreateSimulationForTesting",
		"frame_width":       testConfig.FrameWidth,
		"frame_height":      testConfig.FrameHeight,
		"compression_level": testConfig.CompressionLevel,
		"workers":           testConfig.Workers,
	}).Info("Creating simulation collaborators for testing")

	return f.CreateCollaboratorsWithConfig(testConfig)
}

// SwitchToSimulation switches the configuration to use simulation
func (f *CollaboratorFactory) SwitchToSimulation() {
	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "SwitchToSimulation",
		"previous": f.defaultConfig.UseSimulation,
	}).Info("Switching factory to simulation mode")

	f.defaultConfig.UseSimulation = true
}

// SwitchToReal switches the configuration to use the real ffmpeg implementation
func (f *CollaboratorFactory) SwitchToReal() {
	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "SwitchToReal",
		"previous": f.defaultConfig.UseSimulation,
	}).Info("Switching factory to real mode")

	f.defaultConfig.UseSimulation = false
}

// GetCurrentConfig returns a copy of the current default configuration
func (f *CollaboratorFactory) GetCurrentConfig() *interfaces.PipelineConfig {
	f.mu.RLock()
	defer f.mu.RUnlock()

	configCopy := *f.defaultConfig
	return &configCopy
}

// IsUsingSimulation returns true if the factory is configured for simulation
func (f *CollaboratorFactory) IsUsingSimulation() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.defaultConfig.UseSimulation
}

// UpdateConfig updates the factory's default configuration
func (f *CollaboratorFactory) UpdateConfig(config *interfaces.PipelineConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("failed to update configuration: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":       "UpdateConfig",
		"old_simulation": f.defaultConfig.UseSimulation,
		"new_simulation": config.UseSimulation,
		"old_level":      f.defaultConfig.CompressionLevel,
		"new_level":      config.CompressionLevel,
	}).Info("Updating factory configuration")

	configCopy := *config
	f.defaultConfig = &configCopy

	return nil
}
