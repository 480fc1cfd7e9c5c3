package filesystem

import (
	"archive/tar"
	"archive/zip"
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	maxExtractedBytes     int64 = 2 << 30
	maxExtractedFileBytes int64 = 512 << 20
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zipMagic  = []byte("PK\x03\x04")
)

// Extract unpacks a .tar.gz or .zip archive into destination. The format
// is detected from the file content. Extraction stops when ctx is done.
func Extract(ctx context.Context, archivePath, destination string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	head, err := bufio.NewReader(f).Peek(4)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		gzr, err := gzip.NewReader(&ctxReader{ctx: ctx, r: f})
		if err != nil {
			return err
		}
		defer gzr.Close()
		return extractTar(ctx, gzr, destination)
	case bytes.HasPrefix(head, zipMagic):
		info, err := f.Stat()
		if err != nil {
			return err
		}
		return extractZip(ctx, f, info.Size(), destination)
	default:
		return fmt.Errorf("unsupported archive format (expected gzip-compressed tar or zip)")
	}
}

// ctxReader fails reads once ctx is done, bounding a hung decompression.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func extractTar(ctx context.Context, r io.Reader, destination string) error {
	var extracted int64
	tr := tar.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		target, err := safeJoin(destination, header.Name)
		if err != nil {
			return err
		}
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if header.Size < 0 || header.Size > maxExtractedFileBytes {
				return fmt.Errorf("archive entry %s has invalid size %d", header.Name, header.Size)
			}
			if extracted+header.Size > maxExtractedBytes {
				return fmt.Errorf("archive total extracted size exceeds limit")
			}
			if err := writeEntry(target, tr, header.Size, header.FileInfo().Mode()); err != nil {
				return err
			}
			extracted += header.Size
		default:
			// Links and device nodes are never part of a codebase release.
		}
	}
}

func extractZip(ctx context.Context, r io.ReaderAt, size int64, destination string) error {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return err
	}
	var extracted int64
	for _, file := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		target, err := safeJoin(destination, file.Name)
		if err != nil {
			return err
		}
		mode := file.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case mode.IsRegular():
			n := int64(file.UncompressedSize64)
			if n < 0 || n > maxExtractedFileBytes {
				return fmt.Errorf("archive entry %s has invalid size %d", file.Name, n)
			}
			if extracted+n > maxExtractedBytes {
				return fmt.Errorf("archive total extracted size exceeds limit")
			}
			rc, err := file.Open()
			if err != nil {
				return err
			}
			err = writeEntry(target, &ctxReader{ctx: ctx, r: rc}, n, mode)
			_ = rc.Close()
			if err != nil {
				return err
			}
			extracted += n
		}
	}
	return nil
}

func writeEntry(target string, r io.Reader, size int64, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, archiveFileMode(mode))
	if err != nil {
		return err
	}
	written, err := io.CopyN(out, r, size)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if written != size {
		return fmt.Errorf("short write for archive entry %s", target)
	}
	return nil
}

// safeJoin resolves name under root and rejects entries escaping it.
func safeJoin(root, name string) (string, error) {
	target := filepath.Join(root, name)
	cleanRoot := filepath.Clean(root)
	if target != cleanRoot && !strings.HasPrefix(target, cleanRoot+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive path traversal detected: %s", name)
	}
	return target, nil
}

// archiveFileMode keeps the owner able to read and write and drops
// setuid, setgid, sticky and world-write bits.
func archiveFileMode(raw os.FileMode) os.FileMode {
	perm := raw.Perm() &^ 0o022
	return perm | 0o600
}

// codebaseRoot returns the single top-level directory of an extracted
// archive (e.g. "wordpress/"), or dir itself if there is none.
func codebaseRoot(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(dir, entries[0].Name()), nil
	}
	return dir, nil
}

// promote moves every entry of src into dst. An existing entry in dst is
// replaced. If a move fails, the entries already moved are removed from
// dst so no partial codebase is left behind.
func promote(src, dst string) error {
	return promoteWith(src, dst, os.Rename)
}

func promoteWith(src, dst string, rename func(from, to string) error) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	moved := make([]string, 0, len(entries))
	for _, e := range entries {
		from := filepath.Join(src, e.Name())
		to := filepath.Join(dst, e.Name())
		err := replaceEntry(from, to, rename)
		if err != nil {
			for _, path := range moved {
				_ = os.RemoveAll(path)
			}
			return err
		}
		moved = append(moved, to)
	}
	return nil
}

func replaceEntry(from, to string, rename func(from, to string) error) error {
	if _, err := os.Lstat(to); err == nil {
		if err := os.RemoveAll(to); err != nil {
			return fmt.Errorf("failed to replace %s: %w", to, err)
		}
	}
	if err := rename(from, to); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", filepath.Base(from), err)
	}
	return nil
}
