package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(ErrKindConnectionFailed, "ping failed", cause)

	assert.Equal(t, "[connection_failed] ping failed: dial tcp: connection refused", err.Error())
	assert.Equal(t, "[invalid_input] bad table name", New(ErrKindInvalidInput, "bad table name").Error())
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"connection failed", Wrap(ErrKindConnectionFailed, "ping", nil), IsConnectionFailed, true},
		{"query failed", Wrap(ErrKindQueryFailed, "syntax", nil), IsQueryFailed, true},
		{"load failed", Wrap(ErrKindLoadFailed, "bad parquet", nil), IsLoadFailed, true},
		{"not found", New(ErrKindNotFound, "no such table"), IsNotFound, true},
		{"invalid input", New(ErrKindInvalidInput, "bad identifier"), IsInvalidInput, true},
		{"timeout", Wrap(ErrKindTimeout, "deadline", nil), IsTimeout, true},
		{"plain error is not connectivity", errors.New("boom"), IsConnectionFailed, false},
		{"kind mismatch", New(ErrKindQueryFailed, "x"), IsConnectionFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestPredicatesTraverseWrapping(t *testing.T) {
	inner := Wrap(ErrKindQueryFailed, "bad SQL", errors.New("syntax error near FROM"))
	outer := fmt.Errorf("running ad-hoc query: %w", inner)

	assert.True(t, IsQueryFailed(outer))
	assert.Equal(t, ErrKindQueryFailed, KindOf(outer))
}

func TestDetailOf(t *testing.T) {
	cause := errors.New("Unknown column 'nope'")
	assert.Equal(t, "Unknown column 'nope'", DetailOf(Wrap(ErrKindQueryFailed, "query failed", cause)))
	assert.Equal(t, "query failed", DetailOf(New(ErrKindQueryFailed, "query failed")))
	assert.Equal(t, "plain", DetailOf(errors.New("plain")))
	assert.Equal(t, "", DetailOf(nil))
}
