package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsume(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	testCases := []struct {
		name     string
		startErr error
		expected int
	}{
		{"clean shutdown", nil, 0},
		{"broker failure", errors.New("broker unreachable"), 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			released := false
			code := consume(context.Background(), logger, func(context.Context) error {
				assert.False(t, released, "resources stay open while consuming")
				return tc.startErr
			}, func() { released = true })

			assert.Equal(t, tc.expected, code)
			assert.True(t, released)
		})
	}
}
