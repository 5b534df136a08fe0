package interfaces

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/opd-ai/vidvault/frame"
	"github.com/opd-ai/vidvault/limits"
)

// validTestConfig returns a config that passes validation.
func validTestConfig() PipelineConfig {
	return PipelineConfig{
		FrameWidth:       1920,
		FrameHeight:      1080,
		FrameRate:        30,
		CompressionLevel: 19,
		Workers:          4,
		VerifyChecksums:  true,
	}
}

// TestPipelineConfigValidate tests the Validate method of PipelineConfig.
func TestPipelineConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *PipelineConfig)
		wantErr error
	}{
		{
			name:    "valid config",
			mutate:  func(*PipelineConfig) {},
			wantErr: nil,
		},
		{
			name:    "valid simulation config",
			mutate:  func(c *PipelineConfig) { c.UseSimulation = true },
			wantErr: nil,
		},
		{
			name:    "zero width",
			mutate:  func(c *PipelineConfig) { c.FrameWidth = 0 },
			wantErr: limits.ErrDimensionTooSmall,
		},
		{
			name:    "height too large",
			mutate:  func(c *PipelineConfig) { c.FrameHeight = limits.MaxFrameDimension + 1 },
			wantErr: limits.ErrDimensionTooLarge,
		},
		{
			name:    "zero frame rate",
			mutate:  func(c *PipelineConfig) { c.FrameRate = 0 },
			wantErr: limits.ErrFrameRateOutOfRange,
		},
		{
			name:    "compression level too high",
			mutate:  func(c *PipelineConfig) { c.CompressionLevel = limits.MaxCompressionLevel + 1 },
			wantErr: limits.ErrLevelOutOfRange,
		},
		{
			name:    "zero workers",
			mutate:  func(c *PipelineConfig) { c.Workers = 0 },
			wantErr: limits.ErrWorkersOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validTestConfig()
			tt.mutate(&config)

			err := config.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPipelineConfigGeometry(t *testing.T) {
	config := validTestConfig()

	g := config.Geometry()
	if g.Width != 1920 || g.Height != 1080 {
		t.Errorf("Geometry() = %v, want 1920x1080", g)
	}
}

// mockArchiver is a minimal implementation for interface compliance testing.
type mockArchiver struct {
	archiveErr error
	extractErr error
	archived   []string
	extracted  []string
}

func (m *mockArchiver) Archive(ctx context.Context, path string) ([]byte, error) {
	if m.archiveErr != nil {
		return nil, m.archiveErr
	}
	m.archived = append(m.archived, path)
	return []byte("archive:" + path), nil
}

func (m *mockArchiver) Extract(ctx context.Context, data []byte, path string) error {
	if m.extractErr != nil {
		return m.extractErr
	}
	m.extracted = append(m.extracted, path)
	return nil
}

// mockCompressor is a minimal identity compressor for compliance testing.
type mockCompressor struct {
	closed bool
}

func (m *mockCompressor) Compress(data []byte) ([]byte, error)   { return data, nil }
func (m *mockCompressor) Decompress(data []byte) ([]byte, error) { return data, nil }
func (m *mockCompressor) Level() int                             { return 1 }
func (m *mockCompressor) Close() error                           { m.closed = true; return nil }

// mockCodec is a minimal in-memory codec for compliance testing.
type mockCodec struct {
	stored map[string][]frame.Frame
}

func (m *mockCodec) EncodeFrames(ctx context.Context, frames []frame.Frame, videoPath string) error {
	if m.stored == nil {
		m.stored = make(map[string][]frame.Frame)
	}
	m.stored[videoPath] = frames
	return nil
}

func (m *mockCodec) DecodeFrames(ctx context.Context, videoPath string) ([]frame.Frame, error) {
	frames, ok := m.stored[videoPath]
	if !ok {
		return nil, errors.New("video not found")
	}
	return frames, nil
}

func (m *mockCodec) IsSimulation() bool { return true }

// TestCollaboratorCompliance verifies the mocks implement the interfaces.
func TestCollaboratorCompliance(t *testing.T) {
	var _ IArchiver = (*mockArchiver)(nil)
	var _ ICompressor = (*mockCompressor)(nil)
	var _ IVideoCodec = (*mockCodec)(nil)

	ctx := context.Background()

	archiver := &mockArchiver{}
	data, err := archiver.Archive(ctx, "/tmp/folder")
	if err != nil {
		t.Errorf("Archive() unexpected error: %v", err)
	}
	if err := archiver.Extract(ctx, data, "/tmp/out"); err != nil {
		t.Errorf("Extract() unexpected error: %v", err)
	}

	compressor := &mockCompressor{}
	compressed, err := compressor.Compress([]byte("payload"))
	if err != nil {
		t.Errorf("Compress() unexpected error: %v", err)
	}
	restored, err := compressor.Decompress(compressed)
	if err != nil {
		t.Errorf("Decompress() unexpected error: %v", err)
	}
	if string(restored) != "payload" {
		t.Errorf("Decompress() = %q, want %q", restored, "payload")
	}
	if err := compressor.Close(); err != nil {
		t.Errorf("Close() unexpected error: %v", err)
	}
	if !compressor.closed {
		t.Error("Close() should mark compressor closed")
	}

	codec := &mockCodec{}
	frames := []frame.Frame{{Width: 2, Height: 2, Data: make([]byte, 12)}}
	if err := codec.EncodeFrames(ctx, frames, "out.mkv"); err != nil {
		t.Errorf("EncodeFrames() unexpected error: %v", err)
	}
	decoded, err := codec.DecodeFrames(ctx, "out.mkv")
	if err != nil {
		t.Errorf("DecodeFrames() unexpected error: %v", err)
	}
	if len(decoded) != 1 {
		t.Errorf("DecodeFrames() returned %d frames, want 1", len(decoded))
	}
	if !codec.IsSimulation() {
		t.Error("IsSimulation() should return true for mock codec")
	}
}

// TestMockErrorInjection verifies configurable error injection in mocks.
func TestMockErrorInjection(t *testing.T) {
	injectedErr := errors.New("injected test error")
	ctx := context.Background()

	t.Run("Archive error injection", func(t *testing.T) {
		mock := &mockArchiver{archiveErr: injectedErr}
		_, err := mock.Archive(ctx, "/tmp/folder")
		if !errors.Is(err, injectedErr) {
			t.Errorf("expected injected error, got %v", err)
		}
	})

	t.Run("Extract error injection", func(t *testing.T) {
		mock := &mockArchiver{extractErr: injectedErr}
		err := mock.Extract(ctx, nil, "/tmp/out")
		if !errors.Is(err, injectedErr) {
			t.Errorf("expected injected error, got %v", err)
		}
	})
}

// ExamplePipelineConfig_Validate demonstrates how to validate configuration.
func ExamplePipelineConfig_Validate() {
	config := PipelineConfig{
		FrameWidth:       1920,
		FrameHeight:      1080,
		FrameRate:        30,
		CompressionLevel: 19,
		Workers:          4,
	}

	if err := config.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		return
	}
	fmt.Println("Configuration is valid")
	// Output: Configuration is valid
}
