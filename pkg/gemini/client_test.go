package gemini_test

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

	"github.com/evgeniy-krivenko/notepad/pkg/gemini"
)

func newClient(t *testing.T, url string) *gemini.Client {
	t.Helper()

	c, err := gemini.New(gemini.NewOptions(
		"test-key",
		gemini.WithBaseURL(url),
		gemini.WithModel("test-model"),
		gemini.WithRetryDelay(time.Millisecond),
	))
	require.NoError(t, err)

	return c
}

func TestNew_Validates(t *testing.T) {
	_, err := gemini.New(gemini.NewOptions(""))
	assert.Error(t, err)

	_, err = gemini.New(gemini.NewOptions("k", gemini.WithAttempts(0)))
	assert.Error(t, err)
}

func TestClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "systemInstruction")
		assert.Equal(t, map[string]any{"thinkingConfig": map[string]any{"thinkingBudget": float64(0)}}, body["generationConfig"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hello "},{"text":"world"}]}}]}`))
	}))
	defer server.Close()

	out, err := newClient(t, server.URL).Complete(context.Background(), "hi", "be nice")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", out)
}

func TestClient_Complete_RetriesTransient(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer server.Close()

	out, err := newClient(t, server.URL).Complete(context.Background(), "hi", "")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Complete_PermanentError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad key"))
	}))
	defer server.Close()

	_, err := newClient(t, server.URL).Complete(context.Background(), "hi", "")
	require.Error(t, err)

	var se *gemini.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Complete_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	_, err := newClient(t, server.URL).Complete(context.Background(), "hi", "")
	assert.ErrorIs(t, err, gemini.ErrNoCandidates)
}
