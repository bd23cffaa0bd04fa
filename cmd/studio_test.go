package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/relgraph/store"
)

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) store.State {
	t.Helper()
	var state store.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	return state
}

func nodeIDs(state store.State) []string {
	var ids []string
	for _, n := range state.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestStudioBuild(t *testing.T) {
	t.Run("builds graph from root", func(t *testing.T) {
		server := NewStudioServer(newTestStore(t))

		rec := do(t, server, http.MethodPost, "/api/graph", `{"root":"Quote"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		state := decodeState(t, rec)
		assert.Equal(t, "Quote", state.CurrentObject)
		assert.Equal(t, []string{"Quote", "Opportunity", "Account"}, nodeIDs(state))
		assert.Len(t, state.Edges, 2)
		assert.Contains(t, state.Error, "Missing")
	})

	t.Run("depth is applied", func(t *testing.T) {
		server := NewStudioServer(newTestStore(t))

		rec := do(t, server, http.MethodPost, "/api/graph", `{"root":"Quote","depth":2}`)

		require.Equal(t, http.StatusOK, rec.Code)
		state := decodeState(t, rec)
		assert.Equal(t, 2, state.Depth)
		assert.Contains(t, nodeIDs(state), "Pricebook2")
	})

	t.Run("bad requests", func(t *testing.T) {
		server := NewStudioServer(newTestStore(t))

		assert.Equal(t, http.StatusBadRequest, do(t, server, http.MethodPost, "/api/graph", `{`).Code)
		assert.Equal(t, http.StatusBadRequest, do(t, server, http.MethodPost, "/api/graph", `{}`).Code)
		assert.Equal(t, http.StatusBadRequest, do(t, server, http.MethodPost, "/api/graph", `{"root":"Quote","depth":9}`).Code)
	})

	t.Run("unknown root", func(t *testing.T) {
		server := NewStudioServer(newTestStore(t))

		rec := do(t, server, http.MethodPost, "/api/graph", `{"root":"Nope"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Nope")
	})

	t.Run("failed build keeps the previous depth", func(t *testing.T) {
		s := newTestStore(t)
		server := NewStudioServer(s)

		rec := do(t, server, http.MethodPost, "/api/graph", `{"root":"Nope","depth":3}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, store.DefaultDepth, s.Snapshot().Depth)

		rec = do(t, server, http.MethodPost, "/api/graph", `{"root":"Quote","depth":9}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Nope", s.Snapshot().CurrentObject)
		assert.Equal(t, store.DefaultDepth, s.Snapshot().Depth)
	})

	t.Run("wrong method", func(t *testing.T) {
		server := NewStudioServer(newTestStore(t))
		assert.Equal(t, http.StatusMethodNotAllowed, do(t, server, http.MethodDelete, "/api/graph", "").Code)
	})
}

func TestStudioToggle(t *testing.T) {
	s := newTestStore(t)
	require.Error(t, s.SetRoot(context.Background(), "Quote"))
	server := NewStudioServer(s)

	rec := do(t, server, http.MethodPost, "/api/nodes/Opportunity/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec)
	assert.Contains(t, nodeIDs(state), "Pricebook2")

	rec = do(t, server, http.MethodPost, "/api/nodes/Opportunity/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	state = decodeState(t, rec)
	assert.NotContains(t, nodeIDs(state), "Pricebook2")
	assert.Contains(t, nodeIDs(state), "Account")

	assert.Equal(t, http.StatusNotFound, do(t, server, http.MethodPost, "/api/nodes/Nope/toggle", "").Code)
}

func TestStudioViewState(t *testing.T) {
	s := newTestStore(t)
	require.Error(t, s.SetRoot(context.Background(), "Quote"))
	server := NewStudioServer(s)

	rec := do(t, server, http.MethodPost, "/api/nodes/Account/position", `{"x":12,"y":-4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	account, ok := s.Graph().Node("Account")
	require.True(t, ok)
	assert.Equal(t, 12.0, account.Position.X)
	assert.Equal(t, -4.0, account.Position.Y)

	assert.Equal(t, http.StatusNotFound, do(t, server, http.MethodPost, "/api/nodes/Nope/position", `{"x":1}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, server, http.MethodPost, "/api/nodes/Account/position", `nope`).Code)

	rec = do(t, server, http.MethodPost, "/api/nodes/Account/select", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Account", decodeState(t, rec).SelectedNode)

	rec = do(t, server, http.MethodPost, "/api/edges/Quote-AccountId-Account/select", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Quote-AccountId-Account", decodeState(t, rec).SelectedEdge)
	assert.Equal(t, http.StatusNotFound, do(t, server, http.MethodPost, "/api/edges/nope/select", "").Code)

	rec = do(t, server, http.MethodPut, "/api/viewport", `{"x":5,"y":6,"zoom":1.5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, store.Viewport{X: 5, Y: 6, Zoom: 1.5}, decodeState(t, rec).Viewport)
}

func TestStudioReset(t *testing.T) {
	s := newTestStore(t)
	require.Error(t, s.SetRoot(context.Background(), "Quote"))
	server := NewStudioServer(s)
	before := s.Snapshot().SessionID

	rec := do(t, server, http.MethodPost, "/api/reset", "")

	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec)
	assert.Empty(t, state.Nodes)
	assert.Empty(t, state.CurrentObject)
	assert.NotEqual(t, before, state.SessionID)
}

func TestStudioObjectsAndExport(t *testing.T) {
	s := newTestStore(t)
	require.Error(t, s.SetRoot(context.Background(), "Quote"))
	server := NewStudioServer(s)

	rec := do(t, server, http.MethodGet, "/api/objects", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var objects struct {
		Objects []struct {
			Name string `json:"name"`
		} `json:"objects"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &objects))
	assert.Len(t, objects.Objects, 4)
	assert.Equal(t, "Account", objects.Objects[0].Name)

	rec = do(t, server, http.MethodGet, "/api/export/graphviz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Quote" -> "Opportunity"`)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "graph.dot")

	rec = do(t, server, http.MethodGet, "/api/export/d3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	assert.Equal(t, http.StatusBadRequest, do(t, server, http.MethodGet, "/api/export/svg", "").Code)
}

func TestStudioGraphAndHealth(t *testing.T) {
	server := NewStudioServer(newTestStore(t))
	require.Equal(t, http.StatusOK, do(t, server, http.MethodPost, "/api/graph", `{"root":"Opportunity"}`).Code)

	rec := do(t, server, http.MethodGet, "/api/graph?pretty=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "\n  \"sessionId\"")

	rec = do(t, server, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, server, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "relgraph_describe_total")
}
