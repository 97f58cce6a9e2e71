package driver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(Config{
		BaseURL:        server.URL,
		RequestTimeout: 5 * time.Second,
		RetryAttempts:  3,
		RetryDelay:     time.Millisecond,
	}, zerolog.Nop())
}

func TestStartSession(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/session", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Contains(t, body, "capabilities")

		json.NewEncoder(w).Encode(map[string]any{
			"value": map[string]any{"sessionId": "abc123"},
		})
	}))

	err := client.StartSession(context.Background(), map[string]any{"platformName": "Android"})
	require.NoError(t, err)
	assert.Equal(t, "abc123", client.SessionID())
}

func TestSourceRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]any{
				"value": map[string]string{"error": "unknown error", "message": "hierarchy busy"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"value": "<hierarchy/>"})
	}))
	client.sessionID = "abc123"

	source, err := client.Source(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "<hierarchy/>", source)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClickIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"value": map[string]string{"error": "stale element reference", "message": "gone"},
		})
	}))
	client.sessionID = "abc123"

	err := client.Click(context.Background(), "el-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stale element reference")
	assert.Equal(t, int32(1), calls.Load())
}

func TestFindElement(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/session/abc123/element", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, ByUIAutomator, body["using"])

		json.NewEncoder(w).Encode(map[string]any{
			"value": map[string]string{"element-6066-11e4-a52e-4f735466cecf": "el-42"},
		})
	}))
	client.sessionID = "abc123"

	id, err := client.FindElement(context.Background(), ByUIAutomator, `new UiSelector().textStartsWith("Booking #MJR")`)
	require.NoError(t, err)
	assert.Equal(t, "el-42", id)
}

func TestEndSessionWithoutSession(t *testing.T) {
	client := New(Config{BaseURL: "http://localhost:1"}, zerolog.Nop())

	assert.NoError(t, client.EndSession(context.Background()))
}

func TestSourceContextCancelled(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	client.sessionID = "abc123"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Source(ctx)
	assert.Error(t, err)
}
