package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeStorageUnavailable, "blob store unavailable")

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, HasCode(err, CodeStorageUnavailable))
}

func TestHasCodeThroughChain(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeNotFound, "application not found"))

	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeForbidden))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
}

func TestIsMatchesByCode(t *testing.T) {
	err := New(CodeAlreadySubmitted, "application has already been submitted")

	assert.True(t, errors.Is(err, New(CodeAlreadySubmitted, "different message")))
	assert.False(t, errors.Is(err, New(CodeConflict, "")))
}

func TestWithDetailsDoesNotMutate(t *testing.T) {
	base := New(CodeProfileIncomplete, "profile below threshold")
	detailed := base.WithDetails(map[string]any{"percentage": 75})

	assert.Nil(t, base.Details)
	require.NotNil(t, detailed.Details)
	assert.Equal(t, 75, detailed.Details["percentage"])
	assert.Equal(t, base.Code, detailed.Code)
}

func TestFrom(t *testing.T) {
	derr := From(fmt.Errorf("wrapped: %w", New(CodeForbidden, "staff only")))
	assert.Equal(t, CodeForbidden, derr.Code)

	internal := From(errors.New("disk on fire"))
	assert.Equal(t, CodeInternal, internal.Code)
	assert.Contains(t, internal.Error(), "disk on fire")
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeNotFound:              http.StatusNotFound,
		CodeForbidden:             http.StatusForbidden,
		CodeUnauthorized:          http.StatusUnauthorized,
		CodeDuplicateApplication:  http.StatusConflict,
		CodeAlreadySubmitted:      http.StatusConflict,
		CodeInvalidTransition:     http.StatusConflict,
		CodeIncompleteApplication: http.StatusUnprocessableEntity,
		CodeProfileIncomplete:     http.StatusUnprocessableEntity,
		CodeUnsupportedFile:       http.StatusUnsupportedMediaType,
		CodeFileTooLarge:          http.StatusRequestEntityTooLarge,
		CodeValidation:            http.StatusBadRequest,
		CodeStorageUnavailable:    http.StatusServiceUnavailable,
		CodeInternal:              http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(New(code, "x")), "code %s", code)
	}
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(errors.New("plain")))
}
