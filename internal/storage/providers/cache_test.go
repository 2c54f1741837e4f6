package providers

import (
	"testing"
	"time"

	"doctemplates/internal/domains"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cachedTemplate(title string, created time.Time) *domains.Template {
	meta := domains.NewTemplateMetaData(domains.TemplateCreate{Title: title})
	meta.CreatedAt = created
	return domains.NewTemplate(meta)
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	base := time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)

	newer := cachedTemplate("newer", base.Add(time.Hour))
	older := cachedTemplate("older", base)
	c.Add(newer)
	c.Add(older)

	got, ok := c.Get(older.ID())
	require.True(t, ok)
	assert.Same(t, older, got)

	_, ok = c.Get(uuid.New())
	assert.False(t, ok)

	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, "older", list[0].Title())
	assert.Equal(t, "newer", list[1].Title())

	// Add replaces an entry with the same id
	replacement := domains.NewTemplate(domains.TemplateMetaData{MetaData: domains.MetaData{CreatedAt: base}, ID: older.ID(), Title: "replaced"})
	c.Add(replacement)
	assert.Equal(t, 2, c.Len())
	got, _ = c.Get(older.ID())
	assert.Equal(t, "replaced", got.Title())
}
