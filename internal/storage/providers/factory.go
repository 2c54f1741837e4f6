package providers

import (
	"fmt"

	"doctemplates/internal/domains"
	"doctemplates/internal/storage"
)

type Factory interface {
	CreateTemplate(path string) (*domains.Template, error)
	CreateTemplateVersion(path string) (*domains.TemplateVersion, error)
}

// StorageFactory builds entities from directories that pass its validator.
type StorageFactory struct {
	storage   storage.Storage
	validator Validator
}

func NewStorageFactory(s storage.Storage, validator Validator) *StorageFactory {
	return &StorageFactory{storage: s, validator: validator}
}

func (f *StorageFactory) CreateTemplate(dir string) (*domains.Template, error) {
	meta, err := f.validator.ValidateTemplateDir(dir)
	if err != nil {
		return nil, err
	}
	template := domains.NewTemplate(meta)

	versionsDir := VersionsPath(dir)
	entries, err := f.storage.ListDir(versionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", versionsDir, err)
	}
	for _, entry := range entries {
		version, err := f.CreateTemplateVersion(entry)
		if err != nil {
			return nil, err
		}
		if err := template.AddVersion(version, false); err != nil {
			return nil, err
		}
	}
	return template, nil
}

func (f *StorageFactory) CreateTemplateVersion(dir string) (*domains.TemplateVersion, error) {
	meta, err := f.validator.ValidateVersionDir(dir)
	if err != nil {
		return nil, err
	}
	return domains.NewTemplateVersion(meta), nil
}
