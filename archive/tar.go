// Package archive implements the folder archiver of the vidvault pipeline,
// serializing a directory tree to a tar stream and back.
package archive

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrUnsafePath indicates an archive entry whose path would escape the
// extraction root.
var ErrUnsafePath = errors.New("archive entry path escapes extraction root")

// ErrNotDirectory indicates an archive source that is not a directory.
var ErrNotDirectory = errors.New("archive source is not a directory")

// TarArchiver implements the pipeline archiver contract over a tar stream.
// Regular files, directories, and symlinks are preserved with their modes;
// other entry types (sockets, devices, fifos) are skipped with a warning.
type TarArchiver struct{}

// NewTarArchiver creates a tar archiver.
func NewTarArchiver() *TarArchiver {
	return &TarArchiver{}
}

// Archive serializes the folder rooted at path into a tar byte stream.
// Entry names are slash-separated paths relative to the root, so the
// archive is independent of where the folder lived.
func (a *TarArchiver) Archive(ctx context.Context, path string) ([]byte, error) {
	logrus.WithFields(logrus.Fields{
		"function": "Archive",
		"path":     path,
	}).Info("Archiving folder")

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive source: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, path)
	}

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	entries := 0
	walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}

		var link string
		switch {
		case fi.Mode().IsRegular(), fi.IsDir():
		case fi.Mode()&fs.ModeSymlink != 0:
			link, err = os.Readlink(p)
			if err != nil {
				return err
			}
		default:
			logrus.WithFields(logrus.Fields{
				"function": "Archive",
				"entry":    rel,
				"mode":     fi.Mode().String(),
			}).Warn("Skipping unsupported entry type")
			return nil
		}

		hdr, err := tar.FileInfoHeader(fi, link)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if fi.IsDir() {
			hdr.Name += "/"
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if fi.Mode().IsRegular() {
			f, err := os.Open(p)
			if err != nil {
				return err
			}
			_, err = io.Copy(tw, f)
			f.Close()
			if err != nil {
				return err
			}
		}
		entries++
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to archive folder: %w", walkErr)
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function":      "Archive",
		"entries":       entries,
		"archive_bytes": buf.Len(),
	}).Info("Folder archived successfully")

	return buf.Bytes(), nil
}

// Extract recreates an archived folder tree under path. Every entry name is
// validated against directory traversal before anything touches the disk.
func (a *TarArchiver) Extract(ctx context.Context, data []byte, path string) error {
	logrus.WithFields(logrus.Fields{
		"function":      "Extract",
		"path":          path,
		"archive_bytes": len(data),
	}).Info("Extracting archive")

	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create extraction root: %w", err)
	}

	tr := tar.NewReader(bytes.NewReader(data))
	entries := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read archive: %w", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		target, err := safeJoin(path, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, fs.FileMode(hdr.Mode).Perm()); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
		case tar.TypeReg:
			if err := extractFile(tr, target, fs.FileMode(hdr.Mode).Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := extractSymlink(path, target, hdr.Linkname); err != nil {
				return err
			}
		default:
			logrus.WithFields(logrus.Fields{
				"function": "Extract",
				"entry":    hdr.Name,
				"typeflag": hdr.Typeflag,
			}).Warn("Skipping unsupported entry type")
			continue
		}
		entries++
	}

	logrus.WithFields(logrus.Fields{
		"function": "Extract",
		"entries":  entries,
	}).Info("Archive extracted successfully")

	return nil
}

// safeJoin joins an archive entry name onto the extraction root, rejecting
// names that resolve outside it. It returns the cleaned absolute target or
// ErrUnsafePath.
func safeJoin(root, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return filepath.Join(root, clean), nil
}

// extractFile writes one regular file entry, creating parent directories
// as needed.
func extractFile(r io.Reader, target string, mode fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	return f.Close()
}

// extractSymlink writes one symlink entry. The link target must stay inside
// the extraction root when resolved; absolute targets and relative targets
// that climb out are rejected.
func extractSymlink(root, target, linkname string) error {
	if filepath.IsAbs(linkname) {
		return fmt.Errorf("%w: absolute symlink target %q", ErrUnsafePath, linkname)
	}
	resolved := filepath.Join(filepath.Dir(target), filepath.FromSlash(linkname))
	rel, err := filepath.Rel(root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: symlink target %q", ErrUnsafePath, linkname)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}
	if err := os.Symlink(linkname, target); err != nil {
		return fmt.Errorf("failed to create symlink: %w", err)
	}
	return nil
}
