// Package journal owns the entry lifecycle and builds period summaries on top
// of the analysis and insights packages.
package journal

import (
	"errors"

	"github.com/spacesedan/dreamflow/internal/db"
)

var (
	// ErrNotFound is returned when an entry does not exist. API maps it to 404.
	ErrNotFound = db.ErrNotFound

	// ErrValidation wraps every rejected input. API maps it to 400.
	ErrValidation = errors.New("validation failed")

	// ErrNoEntries is returned when a summary window holds no entries.
	ErrNoEntries = errors.New("no entries in period")
)
