package db

import "errors"

// ErrNotFound is returned by every store when a record does not exist.
var ErrNotFound = errors.New("record not found")
