package storage

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrNotADirectory   = errors.New("not a directory")
	ErrNotAFile        = errors.New("not a file")
	ErrPathOutsideRoot = errors.New("path is outside the storage root")
	ErrInvalidArchive  = errors.New("invalid zip archive")
)
