package vidvault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/vidvault/factory"
	"github.com/opd-ai/vidvault/frame"
	"github.com/opd-ai/vidvault/interfaces"
	"github.com/opd-ai/vidvault/limits"
)

// Output file suffixes derived from an encode prefix.
const (
	// VideoSuffix is appended to the output prefix for the video file.
	VideoSuffix = ".mkv"
	// MetadataSuffix is appended to the output prefix for the metadata sidecar.
	MetadataSuffix = ".meta"
)

// ErrPipelineClosed is returned when operating on a closed pipeline.
var ErrPipelineClosed = errors.New("pipeline is closed")

// Options contains configuration options for creating a Pipeline instance.
type Options struct {
	FrameWidth       int
	FrameHeight      int
	FrameRate        int
	CompressionLevel int
	Workers          int
	VerifyChecksums  bool
	UseSimulation    bool
}

// NewOptions creates a new default Options.
func NewOptions() *Options {
	workers := runtime.NumCPU()
	if workers > limits.MaxWorkers {
		workers = limits.MaxWorkers
	}
	return &Options{
		FrameWidth:       1920,
		FrameHeight:      1080,
		FrameRate:        frame.DefaultFrameRate,
		CompressionLevel: limits.MaxCompressionLevel,
		Workers:          workers,
		VerifyChecksums:  true,
		UseSimulation:    false, // Real ffmpeg codec by default
	}
}

// toConfig converts Options into the collaborator configuration.
func (o *Options) toConfig() *interfaces.PipelineConfig {
	return &interfaces.PipelineConfig{
		UseSimulation:    o.UseSimulation,
		FrameWidth:       o.FrameWidth,
		FrameHeight:      o.FrameHeight,
		FrameRate:        o.FrameRate,
		CompressionLevel: o.CompressionLevel,
		Workers:          o.Workers,
		VerifyChecksums:  o.VerifyChecksums,
	}
}

// EncodeResult reports what an EncodeFolder call produced.
type EncodeResult struct {
	VideoPath       string
	MetadataPath    string
	ArchivedBytes   int64
	CompressedBytes int64
	FrameCount      int
	PaddingBytes    int64
	Elapsed         time.Duration
}

// DecodeResult reports what a DecodeFolder call restored.
type DecodeResult struct {
	OutputFolder  string
	RestoredBytes int64
	FrameCount    int
	Elapsed       time.Duration
}

// Pipeline turns folders into lossless video archives and back.
//
// An encode run archives the folder to tar, compresses the archive with
// zstd, packs the compressed stream into RGB24 frames and stores them as
// FFV1 video next to a JSON metadata sidecar. A decode run reverses each
// stage and proves byte fidelity against the recorded stream digest before
// extracting.
type Pipeline struct {
	// Core components
	options    *Options
	geometry   frame.Geometry
	archiver   interfaces.IArchiver
	compressor interfaces.ICompressor
	codec      interfaces.IVideoCodec
	packer     *frame.Packer
	unpacker   *frame.Unpacker

	// State
	mu     sync.Mutex
	closed bool
}

// New creates a new Pipeline instance with the given options, building its
// collaborators via the factory. Passing nil options uses defaults.
func New(options *Options) (*Pipeline, error) {
	if options == nil {
		options = NewOptions()
	}

	collabs, err := factory.NewCollaboratorFactory().CreateCollaboratorsWithConfig(options.toConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	return NewWithCollaborators(options, collabs.Archiver, collabs.Compressor, collabs.Codec)
}

// NewWithCollaborators creates a Pipeline with injected implementations,
// for tests and for embedding the pipeline behind custom collaborators.
func NewWithCollaborators(options *Options, archiver interfaces.IArchiver, compressor interfaces.ICompressor, videoCodec interfaces.IVideoCodec) (*Pipeline, error) {
	if options == nil {
		options = NewOptions()
	}
	if archiver == nil {
		return nil, fmt.Errorf("failed to create pipeline: archiver cannot be nil")
	}
	if compressor == nil {
		return nil, fmt.Errorf("failed to create pipeline: compressor cannot be nil")
	}
	if videoCodec == nil {
		return nil, fmt.Errorf("failed to create pipeline: codec cannot be nil")
	}
	if err := options.toConfig().Validate(); err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	geometry := frame.Geometry{Width: options.FrameWidth, Height: options.FrameHeight}

	packer, err := frame.NewPacker(geometry)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}
	if err := packer.SetFrameRate(options.FrameRate); err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}
	if err := packer.SetWorkers(options.Workers); err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}
	unpacker, err := frame.NewUnpacker(geometry)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	optionsCopy := *options
	logrus.WithFields(logrus.Fields{
		"function":          "NewWithCollaborators",
		"geometry":          geometry.String(),
		"frame_rate":        options.FrameRate,
		"compression_level": options.CompressionLevel,
		"use_simulation":    videoCodec.IsSimulation(),
		"verify_checksums":  options.VerifyChecksums,
	}).Info("Created vidvault pipeline")

	return &Pipeline{
		options:    &optionsCopy,
		geometry:   geometry,
		archiver:   archiver,
		compressor: compressor,
		codec:      videoCodec,
		packer:     packer,
		unpacker:   unpacker,
	}, nil
}

// Options returns a copy of the pipeline's configuration.
func (p *Pipeline) Options() Options {
	return *p.options
}

// Geometry returns the pipeline's frame geometry.
func (p *Pipeline) Geometry() frame.Geometry {
	return p.geometry
}

// IsSimulation returns true when the pipeline uses the simulated codec.
func (p *Pipeline) IsSimulation() bool {
	return p.codec.IsSimulation()
}

// checkOpen fails fast once the pipeline has been closed.
func (p *Pipeline) checkOpen() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPipelineClosed
	}
	return nil
}

// EncodeFolder archives folderPath into a lossless video. It writes
// <outPrefix>.mkv and <outPrefix>.meta, creating the prefix directory if
// needed, and reports the produced paths and sizes.
func (p *Pipeline) EncodeFolder(ctx context.Context, folderPath, outPrefix string) (*EncodeResult, error) {
	logrus.WithFields(logrus.Fields{
		"function":   "EncodeFolder",
		"folder":     folderPath,
		"out_prefix": outPrefix,
	}).Info("Encoding folder to video")

	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	start := time.Now()

	archived, err := p.archiver.Archive(ctx, folderPath)
	if err != nil {
		return nil, fmt.Errorf("failed to archive folder: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"function":       "EncodeFolder",
		"archived_bytes": len(archived),
	}).Debug("Folder archived")

	compressed, err := p.compressor.Compress(archived)
	if err != nil {
		return nil, fmt.Errorf("failed to compress archive: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"function":         "EncodeFolder",
		"compressed_bytes": len(compressed),
	}).Debug("Archive compressed")

	frames, md, err := p.packer.Pack(compressed)
	if err != nil {
		return nil, fmt.Errorf("failed to pack stream: %w", err)
	}

	if dir := filepath.Dir(outPrefix); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	videoPath := outPrefix + VideoSuffix
	if err := p.codec.EncodeFrames(ctx, frames, videoPath); err != nil {
		return nil, fmt.Errorf("failed to encode video: %w", err)
	}

	metadataPath := outPrefix + MetadataSuffix
	if err := md.WriteFile(metadataPath); err != nil {
		return nil, fmt.Errorf("failed to write metadata: %w", err)
	}

	result := &EncodeResult{
		VideoPath:       videoPath,
		MetadataPath:    metadataPath,
		ArchivedBytes:   int64(len(archived)),
		CompressedBytes: int64(len(compressed)),
		FrameCount:      md.FrameCount,
		PaddingBytes:    md.PaddingBytes(),
		Elapsed:         time.Since(start),
	}

	logrus.WithFields(logrus.Fields{
		"function":         "EncodeFolder",
		"video_path":       result.VideoPath,
		"metadata_path":    result.MetadataPath,
		"archived_bytes":   result.ArchivedBytes,
		"compressed_bytes": result.CompressedBytes,
		"frame_count":      result.FrameCount,
		"padding_bytes":    result.PaddingBytes,
		"elapsed":          result.Elapsed.String(),
	}).Info("Folder encoded successfully")

	return result, nil
}

// DecodeFolder restores the folder stored at <outPrefix>.mkv into
// outputFolder, verifying the recorded stream digest before extraction.
//
// The vault's metadata geometry must match the pipeline's configuration;
// decoding a vault produced at another geometry requires constructing a
// pipeline with that geometry (Inspect reports what a vault was encoded
// with).
func (p *Pipeline) DecodeFolder(ctx context.Context, outPrefix, outputFolder string) (*DecodeResult, error) {
	logrus.WithFields(logrus.Fields{
		"function":      "DecodeFolder",
		"out_prefix":    outPrefix,
		"output_folder": outputFolder,
	}).Info("Decoding video to folder")

	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	start := time.Now()

	md, err := frame.ReadPackMetadataFile(outPrefix + MetadataSuffix)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	if md.Geometry() != p.geometry {
		return nil, fmt.Errorf("%w: vault was encoded at %s, pipeline configured for %s",
			frame.ErrGeometryMismatch, md.Geometry(), p.geometry)
	}

	frames, err := p.codec.DecodeFrames(ctx, outPrefix+VideoSuffix)
	if err != nil {
		return nil, fmt.Errorf("failed to decode video: %w", err)
	}

	compressed, err := p.unpacker.Unpack(frames, md)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack frames: %w", err)
	}

	if p.options.VerifyChecksums {
		if err := md.VerifyStream(compressed); err != nil {
			damaged := md.VerifyFrames(frames)
			logrus.WithFields(logrus.Fields{
				"function":       "DecodeFolder",
				"damaged_frames": damaged,
			}).Error("Stream digest verification failed")
			return nil, fmt.Errorf("failed to verify stream: %w", err)
		}
	}

	archived, err := p.compressor.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress archive: %w", err)
	}

	if err := p.archiver.Extract(ctx, archived, outputFolder); err != nil {
		return nil, fmt.Errorf("failed to extract archive: %w", err)
	}

	result := &DecodeResult{
		OutputFolder:  outputFolder,
		RestoredBytes: int64(len(archived)),
		FrameCount:    len(frames),
		Elapsed:       time.Since(start),
	}

	logrus.WithFields(logrus.Fields{
		"function":       "DecodeFolder",
		"output_folder":  result.OutputFolder,
		"restored_bytes": result.RestoredBytes,
		"frame_count":    result.FrameCount,
		"elapsed":        result.Elapsed.String(),
	}).Info("Folder decoded successfully")

	return result, nil
}

// Inspect loads and validates the metadata sidecar for an encode prefix
// without touching the video file.
func (p *Pipeline) Inspect(outPrefix string) (*frame.PackMetadata, error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	return frame.ReadPackMetadataFile(outPrefix + MetadataSuffix)
}

// Close releases the pipeline's resources. Further operations return
// ErrPipelineClosed. Close is idempotent.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	logrus.WithFields(logrus.Fields{
		"function": "Close",
	}).Info("Closing vidvault pipeline")

	return p.compressor.Close()
}
