package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/spacesedan/dreamflow/internal/journal"
)

const dateLayout = "2006-01-02"

// intParam reads a positive integer query parameter, falling back to def
// when it is absent.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", journal.ErrValidation, name)
	}
	return n, nil
}

// timeParam accepts RFC 3339 timestamps or plain dates. A plain date is UTC
// midnight, or the following midnight when endOfDay is set so that an end
// date covers the whole day.
func timeParam(r *http.Request, name string, endOfDay bool) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %s must be RFC 3339 or YYYY-MM-DD", journal.ErrValidation, name)
}
