package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClassString(t *testing.T) {
	tests := []struct {
		class ErrorClass
		want  string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.class.String())
	}
}

func TestWrapFormat(t *testing.T) {
	base := errors.New("boom")
	err := Wrap(base, "Reader", "Poll", "tail read")
	require.Error(t, err)
	assert.Equal(t, "Reader.Poll: tail read failed: boom", err.Error())
	assert.True(t, errors.Is(err, base))
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "c", "m", "a"))
	assert.NoError(t, WrapTransient(nil, "c", "m", "a"))
	assert.NoError(t, WrapInvalid(nil, "c", "m", "a"))
	assert.NoError(t, WrapFatal(nil, "c", "m", "a"))
}

func TestClassifiedErrorUnwrap(t *testing.T) {
	err := WrapFatal(ErrEncoding, "Reader", "Open", "header decode")

	var ce *ClassifiedError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrorFatal, ce.Class)
	assert.Equal(t, "Reader", ce.Component)
	assert.True(t, errors.Is(err, ErrEncoding))
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"wrapped transient", WrapTransient(errors.New("hiccup"), "c", "m", "a"), ErrorTransient},
		{"wrapped invalid", WrapInvalid(errors.New("bad row"), "c", "m", "a"), ErrorInvalid},
		{"wrapped fatal", WrapFatal(errors.New("dead"), "c", "m", "a"), ErrorFatal},
		{"file access sentinel", fmt.Errorf("open: %w", ErrFileAccess), ErrorFatal},
		{"encoding sentinel", ErrEncoding, ErrorFatal},
		{"no match sentinel", ErrNoMatch, ErrorFatal},
		{"parse sentinel", ErrParseFailed, ErrorInvalid},
		{"unit conflict sentinel", ErrUnitConflict, ErrorInvalid},
		{"unknown error defaults transient", errors.New("who knows"), ErrorTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestIsFatalStartupErrors(t *testing.T) {
	assert.True(t, IsFatal(ErrFileAccess))
	assert.True(t, IsFatal(ErrEncoding))
	assert.True(t, IsFatal(ErrNoMatch))
	assert.False(t, IsFatal(ErrParseFailed))
	assert.False(t, IsFatal(nil))
}

func TestIsInvalidRowLocalErrors(t *testing.T) {
	assert.True(t, IsInvalid(ErrParseFailed))
	assert.True(t, IsInvalid(ErrUnitConflict))
	assert.False(t, IsInvalid(ErrEncoding))
	assert.False(t, IsInvalid(nil))
}
