package vidvault

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/vidvault/frame"
	vvtesting "github.com/opd-ai/vidvault/testing"
)

// simulationOptions returns small-frame options that run the full pipeline
// without ffmpeg.
func simulationOptions() *Options {
	return &Options{
		FrameWidth:       8,
		FrameHeight:      8,
		FrameRate:        30,
		CompressionLevel: 3,
		Workers:          2,
		VerifyChecksums:  true,
		UseSimulation:    true,
	}
}

func newSimulationPipeline(t *testing.T) *Pipeline {
	t.Helper()
	pipeline, err := New(simulationOptions())
	require.NoError(t, err)
	t.Cleanup(func() { pipeline.Close() })
	return pipeline
}

// writeSourceTree builds a folder with nested directories, a binary file,
// an executable and an empty file.
func writeSourceTree(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "source")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", "deep"), 0o755))

	binary := make([]byte, 3000)
	for i := range binary {
		binary[i] = byte(i * 11)
	}

	files := map[string][]byte{
		"readme.txt":           []byte("folder to video and back\n"),
		"docs/notes.md":        []byte("# notes\n\nsome markdown content\n"),
		"docs/deep/blob.bin":   binary,
		"docs/deep/empty.dat":  {},
		"docs/deep/more.bytes": []byte{0x00, 0xFF, 0x10, 0x20},
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, filepath.FromSlash(name)), content, 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "run.sh"), []byte("#!/bin/sh\necho ok\n"), 0o755))
	return root
}

// assertTreesEqual walks want and verifies got holds the same entries with
// identical contents, and no extras.
func assertTreesEqual(t *testing.T, want, got string) {
	t.Helper()
	wantEntries := collectTree(t, want)
	gotEntries := collectTree(t, got)

	assert.Equal(t, len(wantEntries), len(gotEntries), "restored tree has a different entry count")
	for rel, content := range wantEntries {
		restored, ok := gotEntries[rel]
		if !ok {
			t.Errorf("missing entry %q in restored tree", rel)
			continue
		}
		assert.Equal(t, content, restored, "content mismatch for %q", rel)
	}
}

func collectTree(t *testing.T, root string) map[string]string {
	t.Helper()
	entries := make(map[string]string)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if info.IsDir() {
			entries[filepath.ToSlash(rel)+"/"] = ""
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		entries[filepath.ToSlash(rel)] = string(content)
		return nil
	})
	require.NoError(t, err)
	return entries
}

func TestNewWithDefaults(t *testing.T) {
	pipeline, err := New(nil)
	require.NoError(t, err)
	defer pipeline.Close()

	options := pipeline.Options()
	assert.Equal(t, 1920, options.FrameWidth)
	assert.Equal(t, 1080, options.FrameHeight)
	assert.Equal(t, 30, options.FrameRate)
	assert.Equal(t, 19, options.CompressionLevel)
	assert.True(t, options.VerifyChecksums)
	assert.False(t, pipeline.IsSimulation())
	assert.Equal(t, frame.Geometry{Width: 1920, Height: 1080}, pipeline.Geometry())
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"zero_width", func(o *Options) { o.FrameWidth = 0 }},
		{"negative_height", func(o *Options) { o.FrameHeight = -1 }},
		{"bad_level", func(o *Options) { o.CompressionLevel = 99 }},
		{"bad_rate", func(o *Options) { o.FrameRate = 0 }},
		{"bad_workers", func(o *Options) { o.Workers = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			options := simulationOptions()
			tt.mutate(options)
			pipeline, err := New(options)
			require.Error(t, err)
			assert.Nil(t, pipeline)
		})
	}
}

func TestNewWithCollaboratorsRejectsNil(t *testing.T) {
	sim, err := vvtesting.NewSimulatedVideoCodec(frame.Geometry{Width: 8, Height: 8})
	require.NoError(t, err)

	full, err := New(simulationOptions())
	require.NoError(t, err)
	defer full.Close()

	_, err = NewWithCollaborators(simulationOptions(), nil, full.compressor, sim)
	assert.Error(t, err)
	_, err = NewWithCollaborators(simulationOptions(), full.archiver, nil, sim)
	assert.Error(t, err)
	_, err = NewWithCollaborators(simulationOptions(), full.archiver, full.compressor, nil)
	assert.Error(t, err)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	pipeline := newSimulationPipeline(t)
	source := writeSourceTree(t)
	workDir := t.TempDir()
	outPrefix := filepath.Join(workDir, "vault")

	result, err := pipeline.EncodeFolder(context.Background(), source, outPrefix)
	require.NoError(t, err)

	assert.Equal(t, outPrefix+VideoSuffix, result.VideoPath)
	assert.Equal(t, outPrefix+MetadataSuffix, result.MetadataPath)
	assert.FileExists(t, result.VideoPath)
	assert.FileExists(t, result.MetadataPath)
	assert.Greater(t, result.ArchivedBytes, int64(0))
	assert.Greater(t, result.CompressedBytes, int64(0))
	assert.GreaterOrEqual(t, result.FrameCount, 1)

	restored := filepath.Join(workDir, "restored")
	decodeResult, err := pipeline.DecodeFolder(context.Background(), outPrefix, restored)
	require.NoError(t, err)

	assert.Equal(t, result.ArchivedBytes, decodeResult.RestoredBytes)
	assert.Equal(t, result.FrameCount, decodeResult.FrameCount)
	assertTreesEqual(t, source, restored)
}

func TestEncodeEmptyFolder(t *testing.T) {
	pipeline := newSimulationPipeline(t)
	workDir := t.TempDir()
	source := filepath.Join(workDir, "empty")
	require.NoError(t, os.MkdirAll(source, 0o755))
	outPrefix := filepath.Join(workDir, "vault")

	result, err := pipeline.EncodeFolder(context.Background(), source, outPrefix)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.FrameCount, 1)

	restored := filepath.Join(workDir, "restored")
	_, err = pipeline.DecodeFolder(context.Background(), outPrefix, restored)
	require.NoError(t, err)

	entries, err := os.ReadDir(restored)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEncodeMissingFolder(t *testing.T) {
	pipeline := newSimulationPipeline(t)

	_, err := pipeline.EncodeFolder(context.Background(), filepath.Join(t.TempDir(), "absent"), filepath.Join(t.TempDir(), "vault"))
	require.Error(t, err)
}

func TestEncodeCreatesPrefixDirectory(t *testing.T) {
	pipeline := newSimulationPipeline(t)
	source := writeSourceTree(t)
	outPrefix := filepath.Join(t.TempDir(), "nested", "deeper", "vault")

	result, err := pipeline.EncodeFolder(context.Background(), source, outPrefix)
	require.NoError(t, err)
	assert.FileExists(t, result.VideoPath)
	assert.FileExists(t, result.MetadataPath)
}

func TestDecodeDetectsCorruption(t *testing.T) {
	pipeline := newSimulationPipeline(t)
	source := writeSourceTree(t)
	workDir := t.TempDir()
	outPrefix := filepath.Join(workDir, "vault")

	result, err := pipeline.EncodeFolder(context.Background(), source, outPrefix)
	require.NoError(t, err)

	damager, err := vvtesting.NewSimulatedVideoCodec(pipeline.Geometry())
	require.NoError(t, err)
	require.NoError(t, damager.CorruptFrame(result.VideoPath, 0))

	_, err = pipeline.DecodeFolder(context.Background(), outPrefix, filepath.Join(workDir, "restored"))
	require.Error(t, err)
	assert.ErrorIs(t, err, frame.ErrChecksumMismatch)
}

func TestDecodeCorruptionWithVerificationDisabled(t *testing.T) {
	options := simulationOptions()
	options.VerifyChecksums = false
	pipeline, err := New(options)
	require.NoError(t, err)
	defer pipeline.Close()

	source := writeSourceTree(t)
	workDir := t.TempDir()
	outPrefix := filepath.Join(workDir, "vault")

	result, err := pipeline.EncodeFolder(context.Background(), source, outPrefix)
	require.NoError(t, err)

	damager, err := vvtesting.NewSimulatedVideoCodec(pipeline.Geometry())
	require.NoError(t, err)
	require.NoError(t, damager.CorruptFrame(result.VideoPath, 0))

	// With the digest gate off the corruption surfaces later, as a
	// decompression failure rather than a checksum mismatch.
	_, err = pipeline.DecodeFolder(context.Background(), outPrefix, filepath.Join(workDir, "restored"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, frame.ErrChecksumMismatch)
}

func TestDecodeWrongGeometry(t *testing.T) {
	encoder := newSimulationPipeline(t)
	source := writeSourceTree(t)
	workDir := t.TempDir()
	outPrefix := filepath.Join(workDir, "vault")

	_, err := encoder.EncodeFolder(context.Background(), source, outPrefix)
	require.NoError(t, err)

	options := simulationOptions()
	options.FrameWidth = 16
	options.FrameHeight = 16
	decoder, err := New(options)
	require.NoError(t, err)
	defer decoder.Close()

	_, err = decoder.DecodeFolder(context.Background(), outPrefix, filepath.Join(workDir, "restored"))
	require.Error(t, err)
	assert.ErrorIs(t, err, frame.ErrGeometryMismatch)
}

func TestDecodeMissingMetadata(t *testing.T) {
	pipeline := newSimulationPipeline(t)

	_, err := pipeline.DecodeFolder(context.Background(), filepath.Join(t.TempDir(), "absent"), t.TempDir())
	require.Error(t, err)
}

func TestInspect(t *testing.T) {
	pipeline := newSimulationPipeline(t)
	source := writeSourceTree(t)
	outPrefix := filepath.Join(t.TempDir(), "vault")

	result, err := pipeline.EncodeFolder(context.Background(), source, outPrefix)
	require.NoError(t, err)

	md, err := pipeline.Inspect(outPrefix)
	require.NoError(t, err)
	assert.Equal(t, result.FrameCount, md.FrameCount)
	assert.Equal(t, pipeline.Geometry(), md.Geometry())
	assert.Equal(t, result.CompressedBytes, md.OriginalLength)
	assert.NoError(t, md.Validate())
}

func TestClosedPipelineRejectsOperations(t *testing.T) {
	pipeline := newSimulationPipeline(t)
	require.NoError(t, pipeline.Close())
	require.NoError(t, pipeline.Close(), "Close should be idempotent")

	_, err := pipeline.EncodeFolder(context.Background(), t.TempDir(), filepath.Join(t.TempDir(), "vault"))
	assert.ErrorIs(t, err, ErrPipelineClosed)

	_, err = pipeline.DecodeFolder(context.Background(), "vault", t.TempDir())
	assert.ErrorIs(t, err, ErrPipelineClosed)

	_, err = pipeline.Inspect("vault")
	assert.ErrorIs(t, err, ErrPipelineClosed)
}

func TestEncodeDeterministicAcrossRuns(t *testing.T) {
	pipeline := newSimulationPipeline(t)
	source := writeSourceTree(t)
	workDir := t.TempDir()

	first, err := pipeline.EncodeFolder(context.Background(), source, filepath.Join(workDir, "one"))
	require.NoError(t, err)
	second, err := pipeline.EncodeFolder(context.Background(), source, filepath.Join(workDir, "two"))
	require.NoError(t, err)

	assert.Equal(t, first.FrameCount, second.FrameCount)
	assert.Equal(t, first.ArchivedBytes, second.ArchivedBytes)
}
