package codec

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/vidvault/frame"
	"github.com/opd-ai/vidvault/limits"
)

func testGeometry() frame.Geometry {
	return frame.Geometry{Width: 64, Height: 48}
}

// makePatternFrames builds count fully-owned frames with deterministic
// per-frame byte patterns.
func makePatternFrames(t *testing.T, geometry frame.Geometry, count int) []frame.Frame {
	t.Helper()
	frames := make([]frame.Frame, count)
	for i := range frames {
		data := make([]byte, geometry.Capacity())
		for j := range data {
			data[j] = byte(i*31 + j*7 + 13)
		}
		frames[i] = frame.Frame{Width: geometry.Width, Height: geometry.Height, Data: data}
	}
	return frames
}

func TestNewFFV1Codec(t *testing.T) {
	tests := []struct {
		name      string
		geometry  frame.Geometry
		frameRate int
		wantErr   error
	}{
		{
			name:      "valid_configuration",
			geometry:  frame.Geometry{Width: 1920, Height: 1080},
			frameRate: 30,
		},
		{
			name:      "zero_width",
			geometry:  frame.Geometry{Width: 0, Height: 1080},
			frameRate: 30,
			wantErr:   limits.ErrDimensionTooSmall,
		},
		{
			name:      "oversized_height",
			geometry:  frame.Geometry{Width: 1920, Height: limits.MaxFrameDimension + 1},
			frameRate: 30,
			wantErr:   limits.ErrDimensionTooLarge,
		},
		{
			name:      "zero_frame_rate",
			geometry:  frame.Geometry{Width: 1920, Height: 1080},
			frameRate: 0,
			wantErr:   limits.ErrFrameRateOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, err := NewFFV1Codec(tt.geometry, tt.frameRate)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, codec)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.geometry, codec.Geometry())
			assert.False(t, codec.IsSimulation())
		})
	}
}

func TestEncodeArgs(t *testing.T) {
	codec, err := NewFFV1Codec(frame.Geometry{Width: 1920, Height: 1080}, 30)
	require.NoError(t, err)

	want := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgb24",
		"-video_size", "1920x1080",
		"-framerate", "30",
		"-i", "pipe:0",
		"-c:v", "ffv1",
		"-level", "3",
		"-g", "1",
		"-coder", "1",
		"-context", "1",
		"-slices", "4",
		"out.mkv",
	}
	assert.Equal(t, want, codec.encodeArgs("out.mkv"))
}

func TestDecodeArgs(t *testing.T) {
	codec, err := NewFFV1Codec(frame.Geometry{Width: 640, Height: 480}, 24)
	require.NoError(t, err)

	want := []string{
		"-i", "out.mkv",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	}
	assert.Equal(t, want, codec.decodeArgs("out.mkv"))
}

func TestSplitRaw(t *testing.T) {
	geometry := frame.Geometry{Width: 2, Height: 2}
	codec, err := NewFFV1Codec(geometry, 30)
	require.NoError(t, err)
	capacity := geometry.Capacity()

	t.Run("single_frame", func(t *testing.T) {
		raw := make([]byte, capacity)
		frames, err := codec.splitRaw(raw)
		require.NoError(t, err)
		require.Len(t, frames, 1)
		assert.Equal(t, geometry.Width, frames[0].Width)
		assert.Equal(t, geometry.Height, frames[0].Height)
		assert.Len(t, frames[0].Data, capacity)
	})

	t.Run("multiple_frames_alias_stream", func(t *testing.T) {
		raw := make([]byte, 3*capacity)
		for i := range raw {
			raw[i] = byte(i)
		}
		frames, err := codec.splitRaw(raw)
		require.NoError(t, err)
		require.Len(t, frames, 3)
		for i, f := range frames {
			assert.Equal(t, raw[i*capacity:(i+1)*capacity], f.Data)
			assert.Same(t, &raw[i*capacity], &f.Data[0])
		}
	})

	t.Run("length_not_a_multiple", func(t *testing.T) {
		raw := make([]byte, capacity+1)
		frames, err := codec.splitRaw(raw)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCodecFailure)
		assert.Nil(t, frames)
	})

	t.Run("empty_stream", func(t *testing.T) {
		frames, err := codec.splitRaw(nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCodecFailure)
		assert.Nil(t, frames)
	})
}

func TestEncodeFramesRejectsEmptySequence(t *testing.T) {
	codec, err := NewFFV1Codec(testGeometry(), 30)
	require.NoError(t, err)

	err = codec.EncodeFrames(context.Background(), nil, filepath.Join(t.TempDir(), "out.mkv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCodecFailure)
}

func TestEncodeFramesRejectsGeometryMismatch(t *testing.T) {
	codec, err := NewFFV1Codec(testGeometry(), 30)
	require.NoError(t, err)

	wrong := frame.Geometry{Width: 32, Height: 32}
	frames := makePatternFrames(t, wrong, 1)

	err = codec.EncodeFrames(context.Background(), frames, filepath.Join(t.TempDir(), "out.mkv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, frame.ErrGeometryMismatch)
}

func TestEncodeFramesRejectsTruncatedFrame(t *testing.T) {
	geometry := testGeometry()
	codec, err := NewFFV1Codec(geometry, 30)
	require.NoError(t, err)

	frames := makePatternFrames(t, geometry, 2)
	frames[1].Data = frames[1].Data[:geometry.Capacity()-1]

	err = codec.EncodeFrames(context.Background(), frames, filepath.Join(t.TempDir(), "out.mkv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, frame.ErrTruncatedInput)
}

func TestDecodeFramesMissingVideo(t *testing.T) {
	codec, err := NewFFV1Codec(testGeometry(), 30)
	require.NoError(t, err)

	frames, err := codec.DecodeFrames(context.Background(), filepath.Join(t.TempDir(), "missing.mkv"))
	require.Error(t, err)
	assert.Nil(t, frames)
}

func TestCheckTools(t *testing.T) {
	_, lookErr := exec.LookPath(ffmpegBinary)
	err := CheckTools()
	if lookErr != nil {
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrToolNotFound)
		return
	}
	assert.NoError(t, err)
}

func requireFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath(ffmpegBinary); err != nil {
		t.Skip("ffmpeg not installed")
	}
}

func TestFFV1RoundTrip(t *testing.T) {
	requireFFmpeg(t)

	geometry := testGeometry()
	codec, err := NewFFV1Codec(geometry, 30)
	require.NoError(t, err)

	packer, err := frame.NewPacker(geometry)
	require.NoError(t, err)

	data := make([]byte, geometry.Capacity()*2+geometry.Capacity()/2)
	for i := range data {
		data[i] = byte(i*13 + 5)
	}
	frames, md, err := packer.Pack(data)
	require.NoError(t, err)

	videoPath := filepath.Join(t.TempDir(), "roundtrip.mkv")
	require.NoError(t, codec.EncodeFrames(context.Background(), frames, videoPath))

	decoded, err := codec.DecodeFrames(context.Background(), videoPath)
	require.NoError(t, err)
	require.Len(t, decoded, md.FrameCount)

	unpacker, err := frame.NewUnpacker(geometry)
	require.NoError(t, err)
	restored, err := unpacker.Unpack(decoded, md)
	require.NoError(t, err)
	assert.Equal(t, data, restored)
	assert.NoError(t, md.VerifyStream(restored))
	assert.Nil(t, md.VerifyFrames(decoded))
}

func TestEncodeFramesCancelledContext(t *testing.T) {
	requireFFmpeg(t)

	geometry := testGeometry()
	codec, err := NewFFV1Codec(geometry, 30)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	frames := makePatternFrames(t, geometry, 1)
	err = codec.EncodeFrames(ctx, frames, filepath.Join(t.TempDir(), "out.mkv"))
	require.Error(t, err)
}
