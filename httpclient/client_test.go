package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wizarding-anonymous/cryo-sub004/log"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(server.URL, 2*time.Second, "community-service", &log.NoneLogger{})
	require.NoError(t, err)

	return client
}

func TestClient_GetDecodesResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/users/42", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"username":"zoe"}`))
	})

	var got struct {
		Username string `json:"username"`
	}

	require.NoError(t, client.Get(context.Background(), "/api/v1/users/42", nil, &got))
	assert.Equal(t, "zoe", got.Username)
}

func TestClient_SetsIdentityHeaders(t *testing.T) {
	var callingService, requestID, accept string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		callingService = r.Header.Get("X-Calling-Service")
		requestID = r.Header.Get("X-Request-Id")
		accept = r.Header.Get("Accept")

		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.Get(context.Background(), "/health", nil, nil))

	assert.Equal(t, "community-service", callingService)
	assert.NotEmpty(t, requestID)
	assert.Equal(t, "application/json", accept)
}

func TestClient_RequestIDChangesPerRequest(t *testing.T) {
	seen := make(map[string]bool)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen[r.Header.Get("X-Request-Id")] = true
		w.WriteHeader(http.StatusNoContent)
	})

	for i := 0; i < 3; i++ {
		require.NoError(t, client.Get(context.Background(), "/health", nil, nil))
	}

	assert.Len(t, seen, 3)
}

func TestClient_BaseURLPathPrefixIsKept(t *testing.T) {
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	// Peers behind a gateway carry a path prefix on their base URL.
	client, err := New(server.URL+"/users-api", 2*time.Second, "community-service", &log.NoneLogger{})
	require.NoError(t, err)

	require.NoError(t, client.Get(context.Background(), "/api/v1/users/42", nil, nil))
	assert.Equal(t, "/users-api/api/v1/users/42", gotPath)
}

func TestClient_GetEncodesQuery(t *testing.T) {
	var gotQuery url.Values

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.WriteHeader(http.StatusNoContent)
	})

	query := url.Values{}
	query.Set("q", "zoe smith")
	query.Set("limit", "20")

	require.NoError(t, client.Get(context.Background(), "/api/v1/users/search", query, nil))

	assert.Equal(t, "zoe smith", gotQuery.Get("q"))
	assert.Equal(t, "20", gotQuery.Get("limit"))
}

func TestClient_PostSendsJSONBody(t *testing.T) {
	var gotBody map[string]any
	var contentType string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.WriteHeader(http.StatusAccepted)
	})

	body := map[string]any{"type": "friend_request", "title": "hi"}
	require.NoError(t, client.Post(context.Background(), "/api/v1/notifications", body, nil))

	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "friend_request", gotBody["type"])
}

func TestClient_NonSuccessStatusBecomesStatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"user not found"}`, http.StatusNotFound)
	})

	err := client.Get(context.Background(), "/api/v1/users/missing", nil, nil)
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode())
	assert.Contains(t, statusErr.Body, "user not found")
}

func TestClient_ErrorBodyIsTruncated(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
	})

	err := client.Get(context.Background(), "/big", nil, nil)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Len(t, statusErr.Body, errorBodySnippet)
}

func TestClient_ContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := client.Get(ctx, "/slow", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_MalformedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	})

	var out map[string]any
	err := client.Get(context.Background(), "/broken", nil, &out)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestNew_RejectsInvalidBaseURL(t *testing.T) {
	_, err := New("http://bad url:port", time.Second, "svc", nil)
	assert.Error(t, err)
}
