// Package codec implements the ffmpeg-backed FFV1 video codec of the
// vidvault pipeline, storing RGB24 frame sequences losslessly in MKV.
package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/vidvault/frame"
	"github.com/opd-ai/vidvault/limits"
)

// ErrToolNotFound indicates a required external tool is missing from PATH.
var ErrToolNotFound = errors.New("required external tool not found")

// ErrCodecFailure indicates an ffmpeg invocation failed or produced an
// inconsistent raw stream.
var ErrCodecFailure = errors.New("video codec operation failed")

// ffmpegBinary is the external encoder/decoder executable.
const ffmpegBinary = "ffmpeg"

// stderrTailLimit bounds how much captured ffmpeg stderr lands in error
// messages.
const stderrTailLimit = 512

// FFV1Codec stores frame sequences as FFV1 video via a spawned ffmpeg
// process. FFV1 is mathematically lossless, which is what lets a video
// file function as byte-exact storage.
//
// Encoding uses intra-only FFV1 level 3 with range coding and four slices,
// the archival settings this pipeline has always produced; decoding asks
// ffmpeg for the raw rgb24 stream back and splits it at frame capacity.
type FFV1Codec struct {
	geometry  frame.Geometry
	frameRate int
}

// NewFFV1Codec creates a codec for the given geometry and frame rate.
func NewFFV1Codec(geometry frame.Geometry, frameRate int) (*FFV1Codec, error) {
	if err := geometry.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create codec: %w", err)
	}
	if err := limits.ValidateFrameRate(frameRate); err != nil {
		return nil, fmt.Errorf("failed to create codec: %w", err)
	}
	return &FFV1Codec{geometry: geometry, frameRate: frameRate}, nil
}

// Geometry returns the codec's configured frame geometry.
func (c *FFV1Codec) Geometry() frame.Geometry {
	return c.geometry
}

// IsSimulation returns false; this codec spawns real ffmpeg processes.
func (c *FFV1Codec) IsSimulation() bool {
	return false
}

// CheckTools verifies the external tools this codec depends on are
// installed, returning ErrToolNotFound naming the missing tool.
func CheckTools() error {
	if _, err := exec.LookPath(ffmpegBinary); err != nil {
		return fmt.Errorf("%w: %s", ErrToolNotFound, ffmpegBinary)
	}
	return nil
}

// EncodeFrames streams the frame sequence, in order, into ffmpeg and
// writes an FFV1 video at videoPath.
func (c *FFV1Codec) EncodeFrames(ctx context.Context, frames []frame.Frame, videoPath string) error {
	logrus.WithFields(logrus.Fields{
		"function":    "EncodeFrames",
		"frame_count": len(frames),
		"geometry":    c.geometry.String(),
		"video_path":  videoPath,
	}).Info("Encoding frames to FFV1 video")

	if len(frames) == 0 {
		return fmt.Errorf("%w: no frames to encode", ErrCodecFailure)
	}
	readers := make([]io.Reader, len(frames))
	for i, f := range frames {
		if f.Width != c.geometry.Width || f.Height != c.geometry.Height {
			return fmt.Errorf("%w: frame %d is %s, codec configured for %s",
				frame.ErrGeometryMismatch, i, f.Geometry(), c.geometry)
		}
		if err := f.Validate(); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		readers[i] = bytes.NewReader(f.Data)
	}

	if dir := filepath.Dir(videoPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	cmd := exec.CommandContext(ctx, ffmpegBinary, c.encodeArgs(videoPath)...)
	cmd.Stdin = io.MultiReader(readers...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: encode: %v: %s", ErrCodecFailure, err, stderrTail(stderr.Bytes()))
	}

	logrus.WithFields(logrus.Fields{
		"function":    "EncodeFrames",
		"frame_count": len(frames),
		"video_path":  videoPath,
	}).Info("Frames encoded successfully")

	return nil
}

// DecodeFrames reads every frame, in order, back out of an FFV1 video.
// The raw stream length must be an exact multiple of the frame capacity;
// anything else means the video is corrupt or was encoded at a different
// geometry.
func (c *FFV1Codec) DecodeFrames(ctx context.Context, videoPath string) ([]frame.Frame, error) {
	logrus.WithFields(logrus.Fields{
		"function":   "DecodeFrames",
		"geometry":   c.geometry.String(),
		"video_path": videoPath,
	}).Info("Decoding frames from FFV1 video")

	if _, err := os.Stat(videoPath); err != nil {
		return nil, fmt.Errorf("failed to stat video file: %w", err)
	}

	cmd := exec.CommandContext(ctx, ffmpegBinary, c.decodeArgs(videoPath)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: decode: %v: %s", ErrCodecFailure, err, stderrTail(stderr.Bytes()))
	}

	frames, err := c.splitRaw(stdout.Bytes())
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":    "DecodeFrames",
		"frame_count": len(frames),
	}).Info("Frames decoded successfully")

	return frames, nil
}

// encodeArgs builds the ffmpeg argument list for encoding: rawvideo rgb24
// frames on stdin, FFV1 level 3, intra-only, range coder, four slices.
func (c *FFV1Codec) encodeArgs(videoPath string) []string {
	return []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgb24",
		"-video_size", c.geometry.String(),
		"-framerate", strconv.Itoa(c.frameRate),
		"-i", "pipe:0",
		"-c:v", "ffv1",
		"-level", "3",
		"-g", "1",
		"-coder", "1",
		"-context", "1",
		"-slices", "4",
		videoPath,
	}
}

// decodeArgs builds the ffmpeg argument list for decoding the raw rgb24
// stream to stdout.
func (c *FFV1Codec) decodeArgs(videoPath string) []string {
	return []string{
		"-i", videoPath,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	}
}

// splitRaw cuts the decoded raw stream into capacity-sized frames, all
// aliasing the stream buffer.
func (c *FFV1Codec) splitRaw(raw []byte) ([]frame.Frame, error) {
	capacity := c.geometry.Capacity()
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: decoded stream is empty", ErrCodecFailure)
	}
	if len(raw)%capacity != 0 {
		return nil, fmt.Errorf("%w: decoded %d bytes is not a multiple of %s frame capacity %d",
			ErrCodecFailure, len(raw), c.geometry, capacity)
	}

	count := len(raw) / capacity
	frames := make([]frame.Frame, count)
	for i := 0; i < count; i++ {
		start := i * capacity
		end := start + capacity
		frames[i] = frame.Frame{
			Width:  c.geometry.Width,
			Height: c.geometry.Height,
			Data:   raw[start:end:end],
		}
	}
	return frames, nil
}

// stderrTail returns the last stderrTailLimit bytes of captured output as a
// single trimmed line for error context.
func stderrTail(out []byte) string {
	if len(out) > stderrTailLimit {
		out = out[len(out)-stderrTailLimit:]
	}
	return strings.TrimSpace(strings.ReplaceAll(string(out), "\n", " | "))
}
