package errors

import (
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	err := Clone(ErrNotFound, "assignment not found")
	got := FromError(err)
	assert.Equal(t, "NOT_FOUND", got.Code)
	assert.Equal(t, "assignment not found", got.Message)
	assert.Equal(t, http.StatusNotFound, got.Status)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	got := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.ErrorIs(t, got, sql.ErrConnDone)
}

func TestClonedSentinelMatchesWithErrorsIs(t *testing.T) {
	err := Store(sql.ErrConnDone, "failed to delete assignment")
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, http.StatusBadGateway, err.Status)
}
