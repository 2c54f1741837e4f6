package storage

import "time"

// Storage is byte-level access to a directory tree. Every path is relative to
// the storage root; absolute paths are accepted only when they point inside
// it. Paths returned by Storage are relative to the root as well.
type Storage interface {
	SaveFile(path string, data []byte) (string, error)
	LoadFile(path string) ([]byte, error)
	MoveFile(src, dst string) (string, error)
	MoveDir(src, dst string) (string, error)
	Delete(path string) error
	IsFile(path string) bool
	IsDir(path string) bool
	Exists(path string) bool
	ListDir(path string) ([]string, error)
	Mkdir(path string) (string, error)
	ModTime(path string) (time.Time, error)

	// ExtractArchive unpacks the zip file at archivePath into destDir and
	// returns the root the same way SaveDirFromArchiveBytes does.
	ExtractArchive(archivePath, destDir string) (string, error)
	// SaveDirFromArchiveBytes unpacks a zip archive into destDir. When every
	// entry shares one top-level directory the path of that directory is
	// returned, otherwise destDir itself.
	SaveDirFromArchiveBytes(data []byte, destDir string) (string, error)
	// LoadDirAsArchiveBytes packs every file under dir into a zip archive with
	// paths relative to dir. With keepRoot the entries are nested under the
	// base name of dir.
	LoadDirAsArchiveBytes(dir string, keepRoot bool) ([]byte, error)
}
