package storage

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Local is a Storage confined to one directory of an afero filesystem.
type Local struct {
	fs   afero.Fs
	root string
}

// NewLocal returns a Storage rooted at dir on the OS filesystem, creating the
// directory when it is missing.
func NewLocal(dir string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root %s: %w", dir, err)
	}
	return NewLocalFs(afero.NewOsFs(), abs)
}

func NewLocalFs(fs afero.Fs, root string) (*Local, error) {
	root = filepath.Clean(root)
	if err := fs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", root, err)
	}
	return &Local{fs: fs, root: root}, nil
}

func (s *Local) Root() string {
	return s.root
}

// resolve maps a storage path to its location on the filesystem and to its
// cleaned form relative to the root.
func (s *Local) resolve(p string) (full string, rel string, err error) {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		r, err := filepath.Rel(s.root, filepath.Clean(p))
		if err != nil {
			return "", "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, p)
		}
		p = r
	}
	rel = filepath.Clean(p)
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, p)
	}
	return filepath.Join(s.root, rel), filepath.ToSlash(rel), nil
}

func (s *Local) SaveFile(path string, data []byte) (string, error) {
	full, rel, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}
	if err := afero.WriteFile(s.fs, full, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", rel, err)
	}
	return rel, nil
}

func (s *Local) LoadFile(path string) ([]byte, error) {
	full, rel, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, rel)
		}
		return nil, fmt.Errorf("failed to read %s: %w", rel, err)
	}
	return data, nil
}

func (s *Local) MoveFile(src, dst string) (string, error) {
	srcFull, srcRel, err := s.resolve(src)
	if err != nil {
		return "", err
	}
	dstFull, dstRel, err := s.resolve(dst)
	if err != nil {
		return "", err
	}
	if !s.Exists(srcRel) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, srcRel)
	}
	if !s.IsFile(srcRel) {
		return "", fmt.Errorf("%w: %s", ErrNotAFile, srcRel)
	}
	if err := s.fs.MkdirAll(filepath.Dir(dstFull), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", dstRel, err)
	}
	if err := s.fs.Rename(srcFull, dstFull); err != nil {
		return "", fmt.Errorf("failed to move %s to %s: %w", srcRel, dstRel, err)
	}
	return dstRel, nil
}

func (s *Local) MoveDir(src, dst string) (string, error) {
	srcFull, srcRel, err := s.resolve(src)
	if err != nil {
		return "", err
	}
	dstFull, dstRel, err := s.resolve(dst)
	if err != nil {
		return "", err
	}
	if !s.IsDir(srcRel) {
		return "", fmt.Errorf("%w: %s", ErrNotADirectory, srcRel)
	}
	if err := s.fs.MkdirAll(filepath.Dir(dstFull), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", dstRel, err)
	}
	if err := s.renameDir(srcFull, dstFull); err != nil {
		return "", fmt.Errorf("failed to move %s to %s: %w", srcRel, dstRel, err)
	}
	return dstRel, nil
}

// renameDir uses a single rename on the OS filesystem. Other afero backends
// are moved file by file since not all of them carry children along.
func (s *Local) renameDir(src, dst string) error {
	if _, ok := s.fs.(*afero.OsFs); ok {
		return s.fs.Rename(src, dst)
	}

	err := afero.Walk(s.fs, src, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return s.fs.MkdirAll(target, 0o755)
		}
		return s.fs.Rename(p, target)
	})
	if err != nil {
		return err
	}
	return s.fs.RemoveAll(src)
}

func (s *Local) Delete(path string) error {
	full, rel, err := s.resolve(path)
	if err != nil {
		return err
	}
	info, err := s.fs.Stat(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, rel)
		}
		return fmt.Errorf("failed to stat %s: %w", rel, err)
	}
	if info.IsDir() {
		err = s.fs.RemoveAll(full)
	} else {
		err = s.fs.Remove(full)
	}
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", rel, err)
	}
	return nil
}

func (s *Local) IsFile(path string) bool {
	full, _, err := s.resolve(path)
	if err != nil {
		return false
	}
	info, err := s.fs.Stat(full)
	return err == nil && info.Mode().IsRegular()
}

func (s *Local) IsDir(path string) bool {
	full, _, err := s.resolve(path)
	if err != nil {
		return false
	}
	ok, err := afero.IsDir(s.fs, full)
	return err == nil && ok
}

func (s *Local) Exists(path string) bool {
	full, _, err := s.resolve(path)
	if err != nil {
		return false
	}
	ok, err := afero.Exists(s.fs, full)
	return err == nil && ok
}

// ListDir returns the entries of a directory sorted by name.
func (s *Local) ListDir(path string) ([]string, error) {
	full, rel, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	if !s.IsDir(rel) {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, rel)
	}
	infos, err := afero.ReadDir(s.fs, full)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", rel, err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	entries := make([]string, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, joinRel(rel, info.Name()))
	}
	return entries, nil
}

func (s *Local) Mkdir(path string) (string, error) {
	full, rel, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(full, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", rel, err)
	}
	return rel, nil
}

func (s *Local) ModTime(path string) (time.Time, error) {
	full, rel, err := s.resolve(path)
	if err != nil {
		return time.Time{}, err
	}
	info, err := s.fs.Stat(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, fmt.Errorf("%w: %s", ErrNotFound, rel)
		}
		return time.Time{}, fmt.Errorf("failed to stat %s: %w", rel, err)
	}
	return info.ModTime(), nil
}

func (s *Local) ExtractArchive(archivePath, destDir string) (string, error) {
	data, err := s.LoadFile(archivePath)
	if err != nil {
		return "", err
	}
	dest, err := s.Mkdir(destDir)
	if err != nil {
		return "", err
	}
	root, err := s.extract(data, dest)
	if err != nil {
		return "", err
	}
	if root != "" {
		return joinRel(dest, root), nil
	}
	return dest, nil
}

func (s *Local) SaveDirFromArchiveBytes(data []byte, destDir string) (string, error) {
	dest, err := s.Mkdir(destDir)
	if err != nil {
		return "", err
	}
	root, err := s.extract(data, dest)
	if err != nil {
		return "", err
	}
	if root != "" {
		return joinRel(dest, root), nil
	}
	return dest, nil
}

func (s *Local) LoadDirAsArchiveBytes(dir string, keepRoot bool) ([]byte, error) {
	full, rel, err := s.resolve(dir)
	if err != nil {
		return nil, err
	}
	if !s.IsDir(rel) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rel)
	}
	root := ""
	if keepRoot {
		root = path.Base(rel)
	}
	return packDir(s.fs, full, root)
}

// extract unpacks data under dest and reports the single top-level directory
// of the archive, or "" when there is none.
func (s *Local) extract(data []byte, dest string) (string, error) {
	destFull, _, err := s.resolve(dest)
	if err != nil {
		return "", err
	}
	return unpackZip(s.fs, data, destFull)
}

func joinRel(dir, name string) string {
	if dir == "." || dir == "" {
		return name
	}
	return dir + "/" + name
}
