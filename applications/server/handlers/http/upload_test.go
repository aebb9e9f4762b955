package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chunkd/chunkd/applications/server/adapters/inmemory"
	"github.com/chunkd/chunkd/applications/server/services"
)

func newTestServer(t *testing.T) (*httptest.Server, *inmemory.InMemoryDestinationStore) {
	t.Helper()

	logger := log.NewNopLogger()
	staging := inmemory.NewStagingStore(logger)
	destination := inmemory.NewDestinationStore()
	svc := services.NewService(staging, destination, services.NewPathNamer(""), nil, 0, logger)

	ts := httptest.NewServer(NewRouter(svc, logger))
	t.Cleanup(ts.Close)

	return ts, destination
}

func putChunk(t *testing.T, ts *httptest.Server, sessionID string, index any, payload []byte) *http.Response {
	t.Helper()

	url := fmt.Sprintf("%s/sessions/%s/chunks/%v", ts.URL, sessionID, index)
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func finalize(t *testing.T, ts *httptest.Server, sessionID, destination string, total int) *http.Response {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"destination_name": destination,
		"total_chunks":     total,
	})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/sessions/"+sessionID+"/finalize", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func TestUploadAndFinalizeOverHTTP(t *testing.T) {
	ts, destination := newTestServer(t)

	resp := putChunk(t, ts, "abc-1", 0, []byte("AAAA"))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = putChunk(t, ts, "abc-1", 1, []byte("BB"))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = finalize(t, ts, "abc-1", "out.bin", 2)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Path string `json:"path"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "/uploads/out.bin", out.Path)

	data, ok := destination.Bytes("out.bin")
	require.True(t, ok)
	assert.Equal(t, []byte("AAAABB"), data)
}

func TestChunkEndpointRejectsBadInput(t *testing.T) {
	ts, _ := newTestServer(t)

	// Session id with a disallowed character.
	resp := putChunk(t, ts, "a%20b", 0, []byte("x"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Chunk index with stray characters.
	resp = putChunk(t, ts, "sess", "12abc", []byte("x"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Signed index is not pure digits either.
	resp = putChunk(t, ts, "sess", "+1", []byte("x"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Empty payload.
	resp = putChunk(t, ts, "sess", 0, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFinalizeEndpointErrorMapping(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := finalize(t, ts, "ghost", "out.bin", 1)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body struct {
		Error string `json:"error"`
		Kind  string `json:"kind"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "session_not_found", body.Kind)

	resp = putChunk(t, ts, "sess", 0, []byte("x"))
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = finalize(t, ts, "sess", "out.bin", 0)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Missing chunk 1 of 2 surfaces as a conflict with a generic kind.
	resp = finalize(t, ts, "sess", "out.bin", 2)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "assembly_failed", body.Kind)
	assert.NotContains(t, body.Error, "chunk_", "public error must not leak storage layout")
}

func TestNewSessionEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/sessions", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NotEmpty(t, out.SessionID)

	// The allocated id must itself pass chunk upload validation.
	chunkResp := putChunk(t, ts, out.SessionID, 0, []byte("x"))
	assert.Equal(t, http.StatusNoContent, chunkResp.StatusCode)
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
