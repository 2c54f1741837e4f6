package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

// Resource forks that macOS Finder adds to archives.
const macOSMetaDir = "__MACOSX/"

func unpackZip(fs afero.Fs, data []byte, dest string) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	topLevel := make(map[string]bool)
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, macOSMetaDir) || f.Mode()&os.ModeSymlink != 0 {
			continue
		}
		name, err := entryName(f.Name)
		if err != nil {
			return "", err
		}
		if name == "" {
			continue
		}

		first, rest, nested := strings.Cut(name, "/")
		isDir := f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/")
		topLevel[first] = topLevel[first] || nested && rest != "" || isDir

		target := filepath.Join(dest, filepath.FromSlash(name))
		if isDir {
			if err := fs.MkdirAll(target, 0o755); err != nil {
				return "", fmt.Errorf("failed to create %s: %w", name, err)
			}
			continue
		}
		if err := writeEntry(fs, f, target); err != nil {
			return "", err
		}
	}

	if len(topLevel) == 1 {
		for name, isDir := range topLevel {
			if isDir {
				return name, nil
			}
		}
	}
	return "", nil
}

// entryName validates an archive entry name and returns it cleaned.
func entryName(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	if strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: absolute entry %q", ErrInvalidArchive, name)
	}
	cleaned := path.Clean(name)
	if cleaned == "." {
		return "", nil
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: entry %q escapes the archive root", ErrInvalidArchive, name)
	}
	return cleaned, nil
}

func writeEntry(fs afero.Fs, f *zip.File, target string) error {
	if err := fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", f.Name, err)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidArchive, f.Name, err)
	}
	defer rc.Close()

	out, err := fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", f.Name, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("%w: %s: %v", ErrInvalidArchive, f.Name, err)
	}
	return out.Close()
}

// packDir archives dir. Entry names are relative to dir, prefixed with root
// when root is not empty.
func packDir(fs afero.Fs, dir, root string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	err := afero.Walk(fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		name := path.Join(root, filepath.ToSlash(rel))
		if info.IsDir() {
			if rel == "." && root == "" {
				return nil
			}
			_, err := zw.Create(name + "/")
			return err
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: info.ModTime(),
		})
		if err != nil {
			return err
		}
		in, err := fs.Open(p)
		if err != nil {
			return err
		}
		defer in.Close()
		_, err = io.Copy(w, in)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to archive %s: %w", dir, err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to archive %s: %w", dir, err)
	}
	return buf.Bytes(), nil
}
