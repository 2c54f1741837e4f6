package storage

import (
	"bytes"
	"sort"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemStorage(t *testing.T) *Local {
	t.Helper()
	s, err := NewLocalFs(afero.NewMemMapFs(), "/data/root")
	require.NoError(t, err)
	return s
}

func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestLocal_SaveLoad(t *testing.T) {
	s := newMemStorage(t)

	p, err := s.SaveFile("a/b/c.txt", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "a/b/c.txt", p)

	data, err := s.LoadFile("a/b/c.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	data, err = s.LoadFile("/data/root/a/b/c.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	assert.True(t, s.IsFile("a/b/c.txt"))
	assert.False(t, s.IsDir("a/b/c.txt"))
	assert.True(t, s.IsDir("a/b"))
	assert.True(t, s.Exists("a"))

	_, err = s.LoadFile("missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocal_PathOutsideRoot(t *testing.T) {
	s := newMemStorage(t)

	for _, p := range []string{"../escape", "a/../../escape", "/data/other/file", "/etc/passwd"} {
		t.Run(p, func(t *testing.T) {
			_, err := s.SaveFile(p, []byte("x"))
			assert.ErrorIs(t, err, ErrPathOutsideRoot)
			_, err = s.LoadFile(p)
			assert.ErrorIs(t, err, ErrPathOutsideRoot)
			assert.False(t, s.Exists(p))
		})
	}
}

func TestLocal_ListDirAndDelete(t *testing.T) {
	s := newMemStorage(t)
	_, err := s.SaveFile("dir/b.txt", []byte("b"))
	require.NoError(t, err)
	_, err = s.SaveFile("dir/a.txt", []byte("a"))
	require.NoError(t, err)
	_, err = s.Mkdir("dir/sub")
	require.NoError(t, err)

	entries, err := s.ListDir("dir")
	require.NoError(t, err)
	assert.Equal(t, []string{"dir/a.txt", "dir/b.txt", "dir/sub"}, entries)

	root, err := s.ListDir(".")
	require.NoError(t, err)
	assert.Equal(t, []string{"dir"}, root)

	_, err = s.ListDir("dir/a.txt")
	assert.ErrorIs(t, err, ErrNotADirectory)

	require.NoError(t, s.Delete("dir/a.txt"))
	assert.False(t, s.Exists("dir/a.txt"))
	require.NoError(t, s.Delete("dir"))
	assert.False(t, s.Exists("dir"))
	assert.ErrorIs(t, s.Delete("dir"), ErrNotFound)
}

func TestLocal_Move(t *testing.T) {
	s := newMemStorage(t)
	_, err := s.SaveFile("src/x/file.txt", []byte("1"))
	require.NoError(t, err)
	_, err = s.SaveFile("src/top.txt", []byte("2"))
	require.NoError(t, err)

	moved, err := s.MoveDir("src", "nested/dst")
	require.NoError(t, err)
	assert.Equal(t, "nested/dst", moved)
	assert.False(t, s.Exists("src"))

	data, err := s.LoadFile("nested/dst/x/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "1", string(data))

	_, err = s.MoveFile("nested/dst/top.txt", "other/top.txt")
	require.NoError(t, err)
	assert.True(t, s.IsFile("other/top.txt"))
	assert.False(t, s.Exists("nested/dst/top.txt"))

	_, err = s.MoveDir("other/top.txt", "x")
	assert.ErrorIs(t, err, ErrNotADirectory)
	_, err = s.MoveFile("nested", "x")
	assert.ErrorIs(t, err, ErrNotAFile)
	_, err = s.MoveFile("absent.txt", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocal_SaveDirFromArchiveBytes(t *testing.T) {
	t.Run("single top-level directory", func(t *testing.T) {
		s := newMemStorage(t)
		data := zipBytes(t, map[string]string{
			"tpl/meta.yaml":            "m",
			"tpl/versions/v1/a.txt":    "a",
			"__MACOSX/tpl/._meta.yaml": "junk",
		})

		root, err := s.SaveDirFromArchiveBytes(data, "stage/1")
		require.NoError(t, err)
		assert.Equal(t, "stage/1/tpl", root)
		assert.True(t, s.IsFile("stage/1/tpl/versions/v1/a.txt"))
		assert.False(t, s.Exists("stage/1/__MACOSX"))
	})

	t.Run("flat archive", func(t *testing.T) {
		s := newMemStorage(t)
		data := zipBytes(t, map[string]string{
			"meta.yaml":     "m",
			"versions/v1/a": "a",
		})

		root, err := s.SaveDirFromArchiveBytes(data, "stage/2")
		require.NoError(t, err)
		assert.Equal(t, "stage/2", root)
		assert.True(t, s.IsFile("stage/2/meta.yaml"))
	})

	t.Run("single file is not a root", func(t *testing.T) {
		s := newMemStorage(t)
		root, err := s.SaveDirFromArchiveBytes(zipBytes(t, map[string]string{"meta.yaml": "m"}), "stage/3")
		require.NoError(t, err)
		assert.Equal(t, "stage/3", root)
	})

	t.Run("entry escaping destination", func(t *testing.T) {
		s := newMemStorage(t)
		_, err := s.SaveDirFromArchiveBytes(zipBytes(t, map[string]string{"../evil": "x"}), "stage/4")
		assert.ErrorIs(t, err, ErrInvalidArchive)
		assert.False(t, s.Exists("evil"))
	})

	t.Run("not a zip", func(t *testing.T) {
		s := newMemStorage(t)
		_, err := s.SaveDirFromArchiveBytes([]byte("plain text"), "stage/5")
		assert.ErrorIs(t, err, ErrInvalidArchive)
	})
}

func TestLocal_ExtractArchive(t *testing.T) {
	s := newMemStorage(t)
	_, err := s.SaveFile("upload.zip", zipBytes(t, map[string]string{"a/b.txt": "b"}))
	require.NoError(t, err)

	root, err := s.ExtractArchive("upload.zip", "out")
	require.NoError(t, err)
	assert.Equal(t, "out/a", root)
	assert.True(t, s.IsFile("out/a/b.txt"))

	_, err = s.SaveFile("flat.zip", zipBytes(t, map[string]string{"meta.yaml": "m", "versions/v1/a.txt": "a"}))
	require.NoError(t, err)
	root, err = s.ExtractArchive("flat.zip", "flat")
	require.NoError(t, err)
	assert.Equal(t, "flat", root)

	_, err = s.ExtractArchive("missing.zip", "none")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocal_LoadDirAsArchiveBytes(t *testing.T) {
	s := newMemStorage(t)
	_, err := s.SaveFile("tpl/meta.yaml", []byte("meta"))
	require.NoError(t, err)
	_, err = s.SaveFile("tpl/versions/v0.0.1/template.json", []byte("{}"))
	require.NoError(t, err)
	_, err = s.Mkdir("tpl/versions/v0.0.1/static")
	require.NoError(t, err)

	data, err := s.LoadDirAsArchiveBytes("tpl", false)
	require.NoError(t, err)

	root, err := s.SaveDirFromArchiveBytes(data, "copy")
	require.NoError(t, err)
	assert.Equal(t, "copy", root)

	meta, err := s.LoadFile("copy/meta.yaml")
	require.NoError(t, err)
	assert.Equal(t, "meta", string(meta))
	assert.True(t, s.IsFile("copy/versions/v0.0.1/template.json"))
	assert.True(t, s.IsDir("copy/versions/v0.0.1/static"))

	data, err = s.LoadDirAsArchiveBytes("tpl", true)
	require.NoError(t, err)
	root, err = s.SaveDirFromArchiveBytes(data, "nested")
	require.NoError(t, err)
	assert.Equal(t, "nested/tpl", root)
	assert.True(t, s.IsFile("nested/tpl/meta.yaml"))

	_, err = s.LoadDirAsArchiveBytes("missing", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocal_ModTime(t *testing.T) {
	s := newMemStorage(t)
	_, err := s.SaveFile("stage/file.txt", []byte("x"))
	require.NoError(t, err)

	modified, err := s.ModTime("stage")
	require.NoError(t, err)
	assert.False(t, modified.IsZero())

	_, err = s.ModTime("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
