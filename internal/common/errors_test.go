package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractionErrorKinds(t *testing.T) {
	cause := errors.New("exit status 1")
	err := ExtractionErrorf(KindEngineFailure, cause, "tesseract on %s", "a.png")

	assert.ErrorIs(t, err, ErrEngineFailure)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrLoadFailure)
	assert.Equal(t, "tesseract on a.png: exit status 1", err.Error())

	wrapped := fmt.Errorf("extract: %w", err)
	assert.Equal(t, KindEngineFailure, KindOf(wrapped))
	assert.ErrorIs(t, wrapped, ErrEngineFailure)

	assert.Equal(t, ErrorKind(""), KindOf(cause))
	assert.Equal(t, "no file selected", NewExtractionError(KindNoInput, "no file selected", nil).Error())
}

func TestAppError(t *testing.T) {
	err := NewAppError("NOT_FOUND", "extraction missing", ErrNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "NOT_FOUND: extraction missing: resource not found", err.Error())
	assert.Nil(t, WrapError(nil, "x"))
}
