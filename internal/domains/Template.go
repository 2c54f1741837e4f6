package domains

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type TemplateCreate struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Labels      []string `json:"labels"`
}

type TemplateUpdate struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Labels      *[]string `json:"labels,omitempty"`
}

// TemplateMetaData is the content of a template's meta.yaml. Versions is kept
// sorted from the highest tag to the lowest.
type TemplateMetaData struct {
	MetaData
	ID          uuid.UUID
	Title       string
	Description string
	Labels      []string
	Versions    []VersionTag
}

func NewTemplateMetaData(create TemplateCreate) TemplateMetaData {
	labels := create.Labels
	if labels == nil {
		labels = []string{}
	}
	return TemplateMetaData{
		MetaData:    newMetaData(),
		ID:          uuid.New(),
		Title:       create.Title,
		Description: create.Description,
		Labels:      slices.Clone(labels),
		Versions:    []VersionTag{},
	}
}

type rawTemplateMetaData struct {
	ID          *string     `yaml:"id"`
	Title       *string     `yaml:"title"`
	Description *string     `yaml:"description"`
	Labels      *[]string   `yaml:"labels"`
	Versions    *[]string   `yaml:"versions"`
	Stamps      rawMetaData `yaml:",inline"`
}

// DecodeTemplateMetaData parses a template meta.yaml. A missing id gets a
// fresh one and a missing created_at defaults to now.
func DecodeTemplateMetaData(data []byte) (TemplateMetaData, error) {
	var raw rawTemplateMetaData
	if err := decodeYAML(data, &raw); err != nil {
		return TemplateMetaData{}, err
	}

	switch {
	case raw.Title == nil:
		return TemplateMetaData{}, missingField("title")
	case raw.Description == nil:
		return TemplateMetaData{}, missingField("description")
	case raw.Labels == nil:
		return TemplateMetaData{}, missingField("labels")
	case raw.Versions == nil:
		return TemplateMetaData{}, missingField("versions")
	}

	meta := TemplateMetaData{
		ID:          uuid.New(),
		Title:       *raw.Title,
		Description: *raw.Description,
		Labels:      *raw.Labels,
		Versions:    make([]VersionTag, 0, len(*raw.Versions)),
	}
	if raw.ID != nil {
		id, err := uuid.Parse(*raw.ID)
		if err != nil {
			return TemplateMetaData{}, fmt.Errorf("%w: id: %v", ErrMetadataInvalid, err)
		}
		meta.ID = id
	}
	if err := meta.MetaData.fromRaw(raw.Stamps); err != nil {
		return TemplateMetaData{}, fmt.Errorf("%w: %v", ErrMetadataInvalid, err)
	}

	for _, s := range *raw.Versions {
		tag, err := ParseVersionTag(s)
		if err != nil {
			return TemplateMetaData{}, fmt.Errorf("%w: versions: %v", ErrMetadataInvalid, err)
		}
		if err := meta.AddVersion(tag); err != nil {
			return TemplateMetaData{}, fmt.Errorf("%w: versions: %v", ErrMetadataInvalid, err)
		}
	}

	return meta, nil
}

func (m TemplateMetaData) Encode() ([]byte, error) {
	id := m.ID.String()
	labels := m.Labels
	if labels == nil {
		labels = []string{}
	}
	versions := make([]string, len(m.Versions))
	for i, v := range m.Versions {
		versions[i] = v.String()
	}
	return encodeYAML(rawTemplateMetaData{
		ID:          &id,
		Title:       &m.Title,
		Description: &m.Description,
		Labels:      &labels,
		Versions:    &versions,
		Stamps:      m.MetaData.toRaw(),
	})
}

// AddVersion inserts tag keeping Versions in descending order.
func (m *TemplateMetaData) AddVersion(tag VersionTag) error {
	low, high := 0, len(m.Versions)-1
	for low <= high {
		mid := (low + high) / 2
		switch c := m.Versions[mid].Compare(tag); {
		case c == 0:
			return fmt.Errorf("%w: %s", ErrDuplicateVersion, tag)
		case c < 0:
			high = mid - 1
		default:
			low = mid + 1
		}
	}
	m.Versions = slices.Insert(m.Versions, low, tag)
	return nil
}

// Template aggregates the versions of one document template. The version map
// may lag behind meta.Versions while loading but never holds a tag that the
// metadata does not list.
type Template struct {
	mu       sync.RWMutex
	meta     TemplateMetaData
	versions map[string]*TemplateVersion
}

func NewTemplate(meta TemplateMetaData) *Template {
	return &Template{
		meta:     meta,
		versions: make(map[string]*TemplateVersion),
	}
}

func (t *Template) ID() uuid.UUID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.meta.ID
}

func (t *Template) Title() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.meta.Title
}

func (t *Template) Description() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.meta.Description
}

func (t *Template) Labels() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.meta.Labels)
}

// VersionTags returns the tags listed in the metadata, latest first.
func (t *Template) VersionTags() []VersionTag {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.meta.Versions)
}

func (t *Template) CreatedAt() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.meta.CreatedAt
}

func (t *Template) UpdatedAt() *time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.meta.UpdatedAt
}

func (t *Template) SetTitle(title string) {
	t.mu.Lock()
	t.meta.Title = title
	t.mu.Unlock()
}

func (t *Template) SetDescription(description string) {
	t.mu.Lock()
	t.meta.Description = description
	t.mu.Unlock()
}

func (t *Template) SetLabels(labels []string) {
	t.mu.Lock()
	t.meta.Labels = slices.Clone(labels)
	t.mu.Unlock()
}

func (t *Template) Touch(now time.Time) {
	t.mu.Lock()
	t.meta.UpdatedAt = &now
	t.mu.Unlock()
}

// Version looks up a loaded version by its tag string. The boolean is false
// when the template has no such version.
func (t *Template) Version(tag string) (*TemplateVersion, bool, error) {
	if !IsVersion(tag) {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidVersionFormat, tag)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.versions[tag]
	return v, ok, nil
}

func (t *Template) LatestVersion() (*TemplateVersion, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.meta.Versions) == 0 {
		return nil, false
	}
	v, ok := t.versions[t.meta.Versions[0].String()]
	return v, ok
}

// Versions returns the loaded versions, latest first.
func (t *Template) Versions() []*TemplateVersion {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*TemplateVersion, 0, len(t.versions))
	for _, tag := range t.meta.Versions {
		if v, ok := t.versions[tag.String()]; ok {
			out = append(out, v)
		}
	}
	return out
}

// AddVersion attaches v to the template. With updateMeta the tag is also
// inserted into the metadata version list; loaders that already read the list
// from meta.yaml pass false.
func (t *Template) AddVersion(v *TemplateVersion, updateMeta bool) error {
	tag := v.Tag()
	key := tag.String()

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.versions[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateVersion, key)
	}
	if updateMeta {
		if err := t.meta.AddVersion(tag); err != nil {
			return err
		}
	} else if !slices.ContainsFunc(t.meta.Versions, tag.Equal) {
		return fmt.Errorf("version %s is not listed in template metadata", key)
	}
	t.versions[key] = v
	return nil
}

// RemoveVersion detaches tag from the version map and the metadata list. It
// reports whether anything was removed.
func (t *Template) RemoveVersion(tag VersionTag) bool {
	key := tag.String()

	t.mu.Lock()
	defer t.mu.Unlock()
	_, loaded := t.versions[key]
	delete(t.versions, key)
	n := len(t.meta.Versions)
	t.meta.Versions = slices.DeleteFunc(t.meta.Versions, tag.Equal)
	return loaded || len(t.meta.Versions) != n
}

func (t *Template) MetaBytes() ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.meta.Encode()
}
