package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthenticated", Unauthenticated("no token"), http.StatusUnauthorized},
		{"forbidden", Forbidden("admin required"), http.StatusForbidden},
		{"not found", NotFound("club not found"), http.StatusNotFound},
		{"validation", Validation("bad status"), http.StatusBadRequest},
		{"conflict", Conflict("exists"), http.StatusConflict},
		{"capacity", CapacityExceeded("full"), http.StatusBadRequest},
		{"signature", New(ErrInvalidSignature, "bad sig"), http.StatusBadRequest},
		{"unavailable", Wrap(ErrUnavailable, "db down", errors.New("dial tcp")), http.StatusServiceUnavailable},
		{"wrapped with fmt", fmt.Errorf("loading club: %w", NotFound("club not found")), http.StatusNotFound},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestMessageHidesInternals(t *testing.T) {
	assert.Equal(t, "club not found", Message(NotFound("club not found")))
	assert.Equal(t, "Internal server error", Message(errors.New("mongo: connection refused on 10.0.0.3")))
	assert.Equal(t, "Service temporarily unavailable", Message(Wrap(ErrUnavailable, "users lookup", errors.New("socket closed"))))
}

func TestErrorIsKind(t *testing.T) {
	err := Wrap(ErrConflict, "membership exists", errors.New("E11000 duplicate key"))
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "E11000")
}
