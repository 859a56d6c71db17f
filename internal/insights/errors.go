// Package insights folds analyzed entries into period statistics, recurring
// patterns, mood forecasts and recommendations.
package insights

import "errors"

var (
	// ErrInvalidPeriodBounds is returned when a window's start is not before its end.
	ErrInvalidPeriodBounds = errors.New("period start must be before period end")

	// ErrInsufficientHistory is returned when a window holds no entries at all.
	ErrInsufficientHistory = errors.New("not enough history in window")
)
