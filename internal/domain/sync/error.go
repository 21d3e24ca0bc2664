package sync

import "errors"

var ErrInvalidCursor = errors.New("invalid since cursor")
