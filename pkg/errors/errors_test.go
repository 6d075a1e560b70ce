package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsIdentity(t *testing.T) {
	err := Clone(ErrNotFound, "file not found")

	assert.Equal(t, "file not found", err.Message)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.True(t, stdErrors.Is(err, ErrNotFound))
	assert.False(t, stdErrors.Is(err, ErrConflict))
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	raw := fmt.Errorf("disk full")
	appErr := FromError(raw)

	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.ErrorIs(t, appErr, raw)
	assert.Nil(t, FromError(nil))

	typed := Clone(ErrValidation, "bad rating")
	assert.Same(t, typed, FromError(fmt.Errorf("rate: %w", typed)))
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusOK, StatusOf(nil))
	assert.Equal(t, http.StatusConflict, StatusOf(Clone(ErrLastUser, "")))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(fmt.Errorf("boom")))
	assert.False(t, stdErrors.Is(ErrLastUser, ErrConflict))
}
