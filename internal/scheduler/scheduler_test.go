package scheduler

import (
	"context"
	"testing"
	"time"

	"doctemplates/internal/storage"
	"doctemplates/internal/storage/providers"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStagingJanitor_Sweep(t *testing.T) {
	fs := afero.NewMemMapFs()
	tmp, err := storage.NewLocalFs(fs, "/data/tmp")
	require.NoError(t, err)

	_, err = tmp.SaveFile("old-stage/tpl/meta.yaml", []byte("x"))
	require.NoError(t, err)
	_, err = tmp.SaveFile("old-upload.zip", []byte("zip"))
	require.NoError(t, err)
	_, err = tmp.SaveFile("fresh-stage/meta.yaml", []byte("x"))
	require.NoError(t, err)

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-2 * time.Hour)
	require.NoError(t, fs.Chtimes("/data/tmp/old-stage", old, old))
	require.NoError(t, fs.Chtimes("/data/tmp/old-upload.zip", old, old))
	require.NoError(t, fs.Chtimes("/data/tmp/fresh-stage", now, now))

	janitor := NewStagingJanitor(time.Hour, time.Minute, SweepTarget{Storage: tmp, Dir: "."})
	janitor.now = func() time.Time { return now }

	removed, err := janitor.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	entries, err := tmp.ListDir(".")
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh-stage"}, entries)
}

func TestStagingJanitor_SweepCanceled(t *testing.T) {
	tmp, err := storage.NewLocalFs(afero.NewMemMapFs(), "/data/tmp")
	require.NoError(t, err)
	_, err = tmp.Mkdir("stage")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	janitor := NewStagingJanitor(time.Nanosecond, time.Minute, SweepTarget{Storage: tmp, Dir: "."})
	_, err = janitor.Sweep(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, tmp.Exists("stage"))
}

func TestStagingJanitor_SweepIncoming(t *testing.T) {
	fs := afero.NewMemMapFs()
	files, err := storage.NewLocalFs(fs, "/data/templates")
	require.NoError(t, err)
	tmp, err := storage.NewLocalFs(fs, "/data/tmp")
	require.NoError(t, err)

	_, err = files.SaveFile("5f0c1a52-2d4e-4b7a-9a51-0c7bb2d7e0a1/meta.yaml", []byte("x"))
	require.NoError(t, err)
	_, err = files.SaveFile(providers.IncomingDir+"/crashed/tpl/meta.yaml", []byte("x"))
	require.NoError(t, err)
	_, err = files.SaveFile(providers.IncomingDir+"/running/tpl/meta.yaml", []byte("x"))
	require.NoError(t, err)

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-2 * time.Hour)
	require.NoError(t, fs.Chtimes("/data/templates/5f0c1a52-2d4e-4b7a-9a51-0c7bb2d7e0a1", old, old))
	require.NoError(t, fs.Chtimes("/data/templates/"+providers.IncomingDir+"/crashed", old, old))
	require.NoError(t, fs.Chtimes("/data/templates/"+providers.IncomingDir+"/running", now, now))

	janitor := NewStagingJanitor(time.Hour, time.Minute,
		SweepTarget{Storage: tmp, Dir: "."},
		SweepTarget{Storage: files, Dir: providers.IncomingDir},
	)
	janitor.now = func() time.Time { return now }

	removed, err := janitor.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	entries, err := files.ListDir(providers.IncomingDir)
	require.NoError(t, err)
	assert.Equal(t, []string{providers.IncomingDir + "/running"}, entries)
	// committed templates are never touched
	assert.True(t, files.IsDir("5f0c1a52-2d4e-4b7a-9a51-0c7bb2d7e0a1"))

	// a missing incoming directory is not an error
	empty, err := storage.NewLocalFs(afero.NewMemMapFs(), "/data/templates")
	require.NoError(t, err)
	removed, err = NewStagingJanitor(time.Hour, time.Minute, SweepTarget{Storage: empty, Dir: providers.IncomingDir}).Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)
}
