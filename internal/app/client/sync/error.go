package sync

import "errors"

var (
	ErrNotSignedIn = errors.New("not signed in")
	ErrNotFound    = errors.New("entity not found locally")
)
