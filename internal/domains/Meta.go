package domains

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Layouts accepted when reading created_at/updated_at. Files written by this
// service use RFC 3339; older files carry naive ISO timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// MetaData holds the timestamps shared by template and version metadata.
type MetaData struct {
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func newMetaData() MetaData {
	return MetaData{CreatedAt: time.Now().UTC()}
}

// rawMetaData is the on-disk form of MetaData.
type rawMetaData struct {
	CreatedAt *string `yaml:"created_at"`
	UpdatedAt *string `yaml:"updated_at"`
}

func (m *MetaData) fromRaw(raw rawMetaData) error {
	if raw.CreatedAt == nil || *raw.CreatedAt == "" {
		m.CreatedAt = time.Now().UTC()
	} else {
		t, err := parseTimestamp(*raw.CreatedAt)
		if err != nil {
			return fmt.Errorf("created_at: %w", err)
		}
		m.CreatedAt = t
	}

	m.UpdatedAt = nil
	if raw.UpdatedAt != nil && *raw.UpdatedAt != "" {
		t, err := parseTimestamp(*raw.UpdatedAt)
		if err != nil {
			return fmt.Errorf("updated_at: %w", err)
		}
		m.UpdatedAt = &t
	}
	return nil
}

func (m MetaData) toRaw() rawMetaData {
	created := formatTimestamp(m.CreatedAt)
	raw := rawMetaData{CreatedAt: &created}
	if m.UpdatedAt != nil {
		updated := formatTimestamp(*m.UpdatedAt)
		raw.UpdatedAt = &updated
	}
	return raw
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp %q", s)
}

func formatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func decodeYAML(data []byte, out interface{}) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(false)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMetadataInvalid, err)
	}
	return nil
}

func encodeYAML(in interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(in); err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	return buf.Bytes(), nil
}

func missingField(name string) error {
	return fmt.Errorf("%w: field %q is required", ErrMetadataInvalid, name)
}
