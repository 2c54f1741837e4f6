package domains

import (
	"fmt"
	"sync"
	"time"
)

type TemplateVersionCreate struct {
	Tag     VersionTag
	Message string
	Docx    []byte
	JSON    []byte
}

type TemplateVersionUpdate struct {
	Message *string `json:"message,omitempty"`
}

// TemplateVersionMetaData is the content of a version's meta.yaml.
type TemplateVersionMetaData struct {
	MetaData
	Tag     VersionTag
	Message string
}

func NewTemplateVersionMetaData(tag VersionTag, message string) TemplateVersionMetaData {
	return TemplateVersionMetaData{
		MetaData: newMetaData(),
		Tag:      tag,
		Message:  message,
	}
}

type rawTemplateVersionMetaData struct {
	Tag     *string     `yaml:"tag"`
	Message *string     `yaml:"message"`
	Stamps  rawMetaData `yaml:",inline"`
}

func DecodeTemplateVersionMetaData(data []byte) (TemplateVersionMetaData, error) {
	var raw rawTemplateVersionMetaData
	if err := decodeYAML(data, &raw); err != nil {
		return TemplateVersionMetaData{}, err
	}
	if raw.Tag == nil {
		return TemplateVersionMetaData{}, missingField("tag")
	}
	if raw.Message == nil {
		return TemplateVersionMetaData{}, missingField("message")
	}

	tag, err := ParseVersionTag(*raw.Tag)
	if err != nil {
		return TemplateVersionMetaData{}, fmt.Errorf("%w: tag: %v", ErrMetadataInvalid, err)
	}
	meta := TemplateVersionMetaData{Tag: tag, Message: *raw.Message}
	if err := meta.MetaData.fromRaw(raw.Stamps); err != nil {
		return TemplateVersionMetaData{}, fmt.Errorf("%w: %v", ErrMetadataInvalid, err)
	}
	return meta, nil
}

func (m TemplateVersionMetaData) Encode() ([]byte, error) {
	tag := m.Tag.String()
	return encodeYAML(rawTemplateVersionMetaData{
		Tag:     &tag,
		Message: &m.Message,
		Stamps:  m.MetaData.toRaw(),
	})
}

type TemplateVersion struct {
	mu   sync.RWMutex
	meta TemplateVersionMetaData
}

func NewTemplateVersion(meta TemplateVersionMetaData) *TemplateVersion {
	return &TemplateVersion{meta: meta}
}

// Tag is immutable and read without locking.
func (v *TemplateVersion) Tag() VersionTag {
	return v.meta.Tag
}

func (v *TemplateVersion) TagString() string {
	return v.meta.Tag.String()
}

func (v *TemplateVersion) Message() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.meta.Message
}

func (v *TemplateVersion) CreatedAt() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.meta.CreatedAt
}

func (v *TemplateVersion) UpdatedAt() *time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.meta.UpdatedAt
}

func (v *TemplateVersion) SetMessage(message string) {
	v.mu.Lock()
	v.meta.Message = message
	v.mu.Unlock()
}

func (v *TemplateVersion) Touch(now time.Time) {
	v.mu.Lock()
	v.meta.UpdatedAt = &now
	v.mu.Unlock()
}

func (v *TemplateVersion) MetaBytes() ([]byte, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.meta.Encode()
}
