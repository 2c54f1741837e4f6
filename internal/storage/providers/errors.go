package providers

import (
	"errors"
	"fmt"

	"doctemplates/internal/domains"
)

var (
	ErrDirectoryNotFound     = errors.New("template directory not found")
	ErrMetaFileNotFound      = errors.New("meta.yaml not found")
	ErrVersionsDirNotFound   = errors.New("versions directory not found")
	ErrDocxMissing           = errors.New("template.docx not found")
	ErrJSONMissing           = errors.New("template.json not found")
	ErrVersionTagMismatch    = errors.New("version tag in directory name and in meta.yaml do not match")
	ErrVersionsCoherence     = errors.New("versions in meta.yaml and in versions directory do not match")
	ErrInvalidVersionDirName = errors.New("version directory name is not a valid version")
	ErrTemplateIDMismatch    = errors.New("template directory name and id in meta.yaml do not match")

	ErrMetadataInvalid = domains.ErrMetadataInvalid
	ErrDuplication     = errors.New("already exists")
)

// StructureError reports a directory that does not follow the template
// layout. Err is one of the sentinel errors above.
type StructureError struct {
	Path string
	Err  error
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("template structure is invalid: %s: %v", e.Path, e.Err)
}

func (e *StructureError) Unwrap() error {
	return e.Err
}

func IsStructureError(err error) bool {
	var se *StructureError
	return errors.As(err, &se)
}

func structureErr(path string, err error) error {
	return &StructureError{Path: path, Err: err}
}
