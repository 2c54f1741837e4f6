package domains

import "errors"

var (
	ErrInvalidVersionFormat = errors.New("invalid version tag format")
	ErrMetadataInvalid      = errors.New("metadata is not valid")
	ErrDuplicateVersion     = errors.New("version already exists")
)
