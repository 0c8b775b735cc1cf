package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/notebot/internal/errors"
)

func TestAppError_WrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := errors.NewStorageError("upsert flashcard", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, errors.ErrCodeStorageFailure, err.Code)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, err.Error(), "upsert flashcard")
}

func TestHasCode_ThroughFmtWrap(t *testing.T) {
	sentinel := errors.New("already active")
	err := fmt.Errorf("start: %w", errors.NewStateConflictError("conversation in progress", sentinel))

	assert.True(t, errors.HasCode(err, errors.ErrCodeStateConflict))
	assert.False(t, errors.HasCode(err, errors.ErrCodeValidation))
	assert.True(t, errors.Is(err, sentinel))
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, "", errors.CodeOf(errors.New("plain")))
	assert.False(t, errors.HasCode(nil, errors.ErrCodeNotFound))
}

func TestNewNotFoundError(t *testing.T) {
	err := errors.NewNotFoundError("flashcard", 42)
	assert.Equal(t, 404, err.Status)
	assert.Equal(t, "NOT_FOUND: flashcard not found: 42", err.Error())
}
