// Package main provides the vidvault command-line interface for storing
// folders inside lossless video files and restoring them byte-for-byte.
//
// The executable exposes three subcommands: encode turns a folder into an
// FFV1 video plus a metadata sidecar, decode restores a stored folder, and
// info prints the sidecar of an existing vault.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/vidvault"
	"github.com/opd-ai/vidvault/codec"
	"github.com/opd-ai/vidvault/frame"
)

func usage() {
	fmt.Println("Usage: vidvault <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  encode <folder> -out <prefix>              (store folder as <prefix>.mkv + <prefix>.meta)")
	fmt.Println("  decode -out <prefix> -output-folder <dir>  (restore a stored folder)")
	fmt.Println("  info -out <prefix>                         (print metadata for a stored folder)")
	fmt.Println()
	fmt.Println("Run 'vidvault <command> -help' for command options.")
}

// encodeConfig holds the encode subcommand configuration.
type encodeConfig struct {
	folder    string
	outPrefix string
	width     int
	height    int
	frameRate int
	level     int
	simulate  bool
	verbose   bool
}

// parseEncodeFlags parses encode subcommand arguments. The source folder is
// the first positional argument; everything else is flags.
func parseEncodeFlags(args []string) (*encodeConfig, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("encode requires a source folder argument")
	}
	config := &encodeConfig{folder: args[0]}

	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	fs.StringVar(&config.outPrefix, "out", "", "Output prefix for the .mkv and .meta files (required)")
	fs.IntVar(&config.width, "width", 1920, "Frame width in pixels")
	fs.IntVar(&config.height, "height", 1080, "Frame height in pixels")
	fs.IntVar(&config.frameRate, "fps", 30, "Playback frame rate")
	fs.IntVar(&config.level, "level", 19, "Zstd compression level (1-19)")
	fs.BoolVar(&config.simulate, "simulate", false, "Use the simulated codec instead of ffmpeg")
	fs.BoolVar(&config.verbose, "verbose", false, "Enable debug logging")
	if err := fs.Parse(args[1:]); err != nil {
		return nil, err
	}

	if config.outPrefix == "" {
		return nil, fmt.Errorf("encode requires -out <prefix>")
	}
	return config, nil
}

// decodeConfig holds the decode subcommand configuration.
type decodeConfig struct {
	outPrefix    string
	outputFolder string
	simulate     bool
	verbose      bool
}

// parseDecodeFlags parses decode subcommand arguments.
func parseDecodeFlags(args []string) (*decodeConfig, error) {
	config := &decodeConfig{}

	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	fs.StringVar(&config.outPrefix, "out", "", "Prefix of the stored .mkv and .meta files (required)")
	fs.StringVar(&config.outputFolder, "output-folder", "", "Directory to restore the folder into (required)")
	fs.BoolVar(&config.simulate, "simulate", false, "Use the simulated codec instead of ffmpeg")
	fs.BoolVar(&config.verbose, "verbose", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if config.outPrefix == "" {
		return nil, fmt.Errorf("decode requires -out <prefix>")
	}
	if config.outputFolder == "" {
		return nil, fmt.Errorf("decode requires -output-folder <dir>")
	}
	return config, nil
}

// parseInfoFlags parses info subcommand arguments and returns the prefix.
func parseInfoFlags(args []string) (string, error) {
	var outPrefix string

	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.StringVar(&outPrefix, "out", "", "Prefix of the stored .mkv and .meta files (required)")
	if err := fs.Parse(args); err != nil {
		return "", err
	}

	if outPrefix == "" {
		return "", fmt.Errorf("info requires -out <prefix>")
	}
	return outPrefix, nil
}

// setupLogging configures structured logging for CLI output.
func setupLogging(verbose bool) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}
}

// checkTools fails fast with install guidance when ffmpeg is missing.
func checkTools() error {
	err := codec.CheckTools()
	if errors.Is(err, codec.ErrToolNotFound) {
		return fmt.Errorf("%w\n\nffmpeg is required for real encoding. Install it with:\n"+
			"  apt install ffmpeg    (Debian/Ubuntu)\n"+
			"  brew install ffmpeg   (macOS)\n"+
			"or pass -simulate to run without it", err)
	}
	return err
}

// setupSignalHandling sets up graceful shutdown on interrupt signals.
func setupSignalHandling(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	go func() {
		sig := <-sigChan
		fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling...\n", sig)
		cancel()
	}()
}

// runEncode stores a folder as video and prints a summary.
func runEncode(ctx context.Context, config *encodeConfig) error {
	setupLogging(config.verbose)
	if !config.simulate {
		if err := checkTools(); err != nil {
			return err
		}
	}

	options := vidvault.NewOptions()
	options.FrameWidth = config.width
	options.FrameHeight = config.height
	options.FrameRate = config.frameRate
	options.CompressionLevel = config.level
	options.UseSimulation = config.simulate

	pipeline, err := vidvault.New(options)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	result, err := pipeline.EncodeFolder(ctx, config.folder, config.outPrefix)
	if err != nil {
		return err
	}

	fmt.Printf("Encoded %s\n", config.folder)
	fmt.Printf("  video:      %s\n", result.VideoPath)
	fmt.Printf("  metadata:   %s\n", result.MetadataPath)
	fmt.Printf("  archived:   %d bytes\n", result.ArchivedBytes)
	fmt.Printf("  compressed: %d bytes\n", result.CompressedBytes)
	fmt.Printf("  frames:     %d (%d padding bytes)\n", result.FrameCount, result.PaddingBytes)
	fmt.Printf("  elapsed:    %v\n", result.Elapsed)
	return nil
}

// runDecode restores a stored folder and prints a summary. The pipeline
// geometry is taken from the metadata sidecar, so a vault decodes no matter
// what geometry it was encoded with.
func runDecode(ctx context.Context, config *decodeConfig) error {
	setupLogging(config.verbose)
	if !config.simulate {
		if err := checkTools(); err != nil {
			return err
		}
	}

	md, err := frame.ReadPackMetadataFile(config.outPrefix + vidvault.MetadataSuffix)
	if err != nil {
		return err
	}

	options := vidvault.NewOptions()
	options.FrameWidth = md.FrameWidth
	options.FrameHeight = md.FrameHeight
	options.FrameRate = md.FrameRate
	options.UseSimulation = config.simulate

	pipeline, err := vidvault.New(options)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	result, err := pipeline.DecodeFolder(ctx, config.outPrefix, config.outputFolder)
	if err != nil {
		return err
	}

	fmt.Printf("Decoded %s\n", config.outPrefix+vidvault.VideoSuffix)
	fmt.Printf("  restored: %s\n", result.OutputFolder)
	fmt.Printf("  bytes:    %d\n", result.RestoredBytes)
	fmt.Printf("  frames:   %d\n", result.FrameCount)
	fmt.Printf("  elapsed:  %v\n", result.Elapsed)
	return nil
}

// runInfo prints the metadata sidecar of a stored folder.
func runInfo(outPrefix string) error {
	setupLogging(false)

	md, err := frame.ReadPackMetadataFile(outPrefix + vidvault.MetadataSuffix)
	if err != nil {
		return err
	}

	fmt.Printf("Vault %s\n", outPrefix+vidvault.VideoSuffix)
	fmt.Printf("  format version:  %d\n", md.Version)
	fmt.Printf("  geometry:        %s @ %d fps\n", md.Geometry(), md.FrameRate)
	fmt.Printf("  frames:          %d\n", md.FrameCount)
	fmt.Printf("  payload bytes:   %d\n", md.OriginalLength)
	fmt.Printf("  padding bytes:   %d\n", md.PaddingBytes())
	fmt.Printf("  created:         %s\n", md.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	if md.StreamDigest != "" {
		fmt.Printf("  stream digest:   %s\n", md.StreamDigest)
	}
	if len(md.FrameChecksums) > 0 {
		fmt.Printf("  frame checksums: %d recorded\n", len(md.FrameChecksums))
	}
	return nil
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandling(cancel)

	var err error
	switch os.Args[1] {
	case "encode":
		var config *encodeConfig
		if config, err = parseEncodeFlags(os.Args[2:]); err == nil {
			err = runEncode(ctx, config)
		}
	case "decode":
		var config *decodeConfig
		if config, err = parseDecodeFlags(os.Args[2:]); err == nil {
			err = runDecode(ctx, config)
		}
	case "info":
		var outPrefix string
		if outPrefix, err = parseInfoFlags(os.Args[2:]); err == nil {
			err = runInfo(outPrefix)
		}
	case "help", "-help", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
