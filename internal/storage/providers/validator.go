package providers

import (
	"fmt"
	"path"

	"doctemplates/internal/domains"
	"doctemplates/internal/storage"
)

// Validator checks that a directory follows the template layout and returns
// its parsed metadata. It only reads from storage.
type Validator interface {
	ValidateTemplateDir(path string) (domains.TemplateMetaData, error)
	ValidateVersionDir(path string) (domains.TemplateVersionMetaData, error)
}

type StorageValidator struct {
	storage storage.Storage
}

func NewStorageValidator(s storage.Storage) *StorageValidator {
	return &StorageValidator{storage: s}
}

func (v *StorageValidator) ValidateTemplateDir(dir string) (domains.TemplateMetaData, error) {
	if !v.storage.IsDir(dir) {
		return domains.TemplateMetaData{}, structureErr(dir, ErrDirectoryNotFound)
	}

	data, err := v.loadMeta(dir)
	if err != nil {
		return domains.TemplateMetaData{}, err
	}
	meta, err := domains.DecodeTemplateMetaData(data)
	if err != nil {
		return domains.TemplateMetaData{}, structureErr(MetaPath(dir), err)
	}

	versionsDir := VersionsPath(dir)
	if !v.storage.IsDir(versionsDir) {
		return domains.TemplateMetaData{}, structureErr(versionsDir, ErrVersionsDirNotFound)
	}
	entries, err := v.storage.ListDir(versionsDir)
	if err != nil {
		return domains.TemplateMetaData{}, fmt.Errorf("failed to list %s: %w", versionsDir, err)
	}
	for _, entry := range entries {
		if _, err := v.ValidateVersionDir(entry); err != nil {
			return domains.TemplateMetaData{}, err
		}
	}

	if err := checkCoherence(meta.Versions, entries); err != nil {
		return domains.TemplateMetaData{}, structureErr(versionsDir, err)
	}
	return meta, nil
}

func (v *StorageValidator) ValidateVersionDir(dir string) (domains.TemplateVersionMetaData, error) {
	name := path.Base(dir)
	if !domains.IsVersion(name) {
		return domains.TemplateVersionMetaData{}, structureErr(dir, fmt.Errorf("%w: %s", ErrInvalidVersionDirName, name))
	}

	data, err := v.loadMeta(dir)
	if err != nil {
		return domains.TemplateVersionMetaData{}, err
	}
	meta, err := domains.DecodeTemplateVersionMetaData(data)
	if err != nil {
		return domains.TemplateVersionMetaData{}, structureErr(MetaPath(dir), err)
	}
	if meta.Tag.String() != name {
		return domains.TemplateVersionMetaData{}, structureErr(dir,
			fmt.Errorf("%w: %s != %s", ErrVersionTagMismatch, name, meta.Tag))
	}

	if !v.storage.IsFile(TemplateDocxPath(dir)) {
		return domains.TemplateVersionMetaData{}, structureErr(dir, ErrDocxMissing)
	}
	if !v.storage.IsFile(TemplateJSONPath(dir)) {
		return domains.TemplateVersionMetaData{}, structureErr(dir, ErrJSONMissing)
	}
	return meta, nil
}

func (v *StorageValidator) loadMeta(dir string) ([]byte, error) {
	metaPath := MetaPath(dir)
	if !v.storage.IsFile(metaPath) {
		return nil, structureErr(metaPath, ErrMetaFileNotFound)
	}
	data, err := v.storage.LoadFile(metaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", metaPath, err)
	}
	return data, nil
}

// checkCoherence compares the tags listed in meta.yaml with the version
// directories as sets.
func checkCoherence(listed []domains.VersionTag, dirs []string) error {
	inMeta := make(map[string]struct{}, len(listed))
	for _, tag := range listed {
		inMeta[tag.String()] = struct{}{}
	}
	inDir := make(map[string]struct{}, len(dirs))
	for _, dir := range dirs {
		inDir[path.Base(dir)] = struct{}{}
	}

	if len(inMeta) != len(inDir) {
		return fmt.Errorf("%w: %d listed, %d on disk", ErrVersionsCoherence, len(inMeta), len(inDir))
	}
	for tag := range inMeta {
		if _, ok := inDir[tag]; !ok {
			return fmt.Errorf("%w: %s has no directory", ErrVersionsCoherence, tag)
		}
	}
	return nil
}
