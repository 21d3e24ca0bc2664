package entity

import "errors"

var (
	ErrMissingField        = errors.New("missing required field")
	ErrInvalidPlatform     = errors.New("unknown platform")
	ErrInvalidDeleted      = errors.New("deleted must be 0 or 1")
	ErrUnrecognizedChannel = errors.New("unrecognized channel url")
	ErrDuplicateBookmark   = errors.New("channel is already bookmarked")
	ErrUnknownKind         = errors.New("unknown entity kind")
)
