package frame

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"

	"github.com/opd-ai/vidvault/limits"
)

const (
	// StreamDigestPrefix identifies the stream digest algorithm. The digest
	// is BLAKE2b-256 over the original unpadded byte stream.
	StreamDigestPrefix = "blake2b-256:"

	// FrameChecksumPrefix identifies the per-frame checksum algorithm. Each
	// checksum is xxhash64 over the full padded frame buffer.
	FrameChecksumPrefix = "xxh64:"
)

// computeStreamDigest returns the prefixed BLAKE2b-256 digest of data.
func computeStreamDigest(data []byte) string {
	sum := blake2b.Sum256(data)
	return fmt.Sprintf("%s%x", StreamDigestPrefix, sum[:])
}

// computeFrameChecksum returns the prefixed xxhash64 checksum of data.
func computeFrameChecksum(data []byte) string {
	return fmt.Sprintf("%s%016x", FrameChecksumPrefix, xxhash.Sum64(data))
}

// checksumFrames computes per-frame checksums, fanning the work out across
// workers. Each worker owns a contiguous index span so the result order
// always matches the frame order.
func checksumFrames(frames []Frame, workers int) []string {
	n := len(frames)
	if n == 0 {
		return nil
	}
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	checksums := make([]string, n)
	span := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * span
		if start >= n {
			break
		}
		end := start + span
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				checksums[i] = computeFrameChecksum(frames[i].Data)
			}
		}(start, end)
	}
	wg.Wait()

	return checksums
}

// defaultWorkerCount returns the checksum worker count for this machine,
// capped at limits.MaxWorkers.
func defaultWorkerCount() int {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	if workers > limits.MaxWorkers {
		workers = limits.MaxWorkers
	}
	return workers
}

// VerifyStream recomputes the stream digest of data and compares it against
// the digest recorded in the metadata. A difference means the reconstructed
// bytes are corrupt and yields ErrChecksumMismatch. Metadata without a
// recorded digest verifies trivially.
func (md *PackMetadata) VerifyStream(data []byte) error {
	if md.StreamDigest == "" {
		return nil
	}
	if !strings.HasPrefix(md.StreamDigest, StreamDigestPrefix) {
		return fmt.Errorf("%w: unknown stream digest algorithm in %q",
			ErrInvalidMetadata, md.StreamDigest)
	}

	computed := computeStreamDigest(data)
	if computed != md.StreamDigest {
		logrus.WithFields(logrus.Fields{
			"function": "VerifyStream",
			"recorded": md.StreamDigest,
			"computed": computed,
		}).Error("Stream digest mismatch")
		return fmt.Errorf("%w: stream digest %s does not match recorded %s",
			ErrChecksumMismatch, computed, md.StreamDigest)
	}
	return nil
}

// VerifyFrames recomputes per-frame checksums in parallel and returns the
// indices of frames whose checksum disagrees with the metadata, in frame
// order. The result is diagnostic only; unpack output never depends on it.
// Metadata without recorded checksums yields nil.
func (md *PackMetadata) VerifyFrames(frames []Frame) []int {
	if len(md.FrameChecksums) == 0 || len(frames) == 0 {
		return nil
	}

	n := len(frames)
	if n > len(md.FrameChecksums) {
		n = len(md.FrameChecksums)
	}

	computed := checksumFrames(frames[:n], defaultWorkerCount())

	var damaged []int
	for i := 0; i < n; i++ {
		if computed[i] != md.FrameChecksums[i] {
			damaged = append(damaged, i)
		}
	}
	if len(damaged) > 0 {
		logrus.WithFields(logrus.Fields{
			"function":       "VerifyFrames",
			"damaged_frames": damaged,
			"total_frames":   len(frames),
		}).Warn("Frame checksum verification found damaged frames")
	}
	return damaged
}
