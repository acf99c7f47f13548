package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientAnalyzePostsUserID(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"user_id": "user-1"}, body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	require.NoError(t, client.Analyze(context.Background(), "user-1"))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestClientAnalyzeNonSuccessIsErrorWithoutRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "agent crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, time.Second, nil).Analyze(context.Background(), "user-1")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "agent crashed")
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestClientAnalyzeTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	err := NewClient(srv.URL, 50*time.Millisecond, nil).Analyze(context.Background(), "user-1")
	require.Error(t, err)
}

func TestClientNotConfigured(t *testing.T) {
	assert.ErrorIs(t, NewClient("  ", time.Second, nil).Analyze(context.Background(), "user-1"), ErrNotConfigured)
}
