package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"codeclinic/internal/analysis"
	"codeclinic/internal/auth"
	"codeclinic/internal/config"
	apperrors "codeclinic/internal/errors"
	"codeclinic/internal/history"
	"codeclinic/internal/notify"
	"codeclinic/internal/user"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	response string
	err      error
}

func (s *stubCompleter) Complete(_ context.Context, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func newTestApp(t *testing.T, completer *stubCompleter) *App {
	t.Helper()

	cfg := config.Load()
	cfg.Gemini.APIKey = "test-key"

	historyStore := history.NewStore(nil)
	userStore := user.NewStore(nil)

	return &App{
		Config:      cfg,
		Analyzer:    analysis.NewAnalyzer(completer, historyStore, 0),
		History:     historyStore,
		Users:       userStore,
		AuthService: auth.NewService("jwt-secret", "session-secret", userStore),
		Broadcaster: notify.NewBroadcaster(),
	}
}

func newTestRouter(t *testing.T, completer *stubCompleter) (*mux.Router, *App) {
	t.Helper()

	app := newTestApp(t, completer)
	router := mux.NewRouter()
	setupRoutes(router, app)
	return router, app
}

func doJSON(router *mux.Router, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apperrors.APIResponse {
	t.Helper()

	var resp apperrors.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleHealth(t *testing.T) {
	router, _ := newTestRouter(t, &stubCompleter{})

	rec := doJSON(router, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestHandleVerify(t *testing.T) {
	completer := &stubCompleter{response: "Syntax Errors:\nMissing colon.\n\nSuggestions:\nAdd it."}
	router, _ := newTestRouter(t, completer)

	rec := doJSON(router, "POST", "/api/v1/verify", `{"code":"while True print(1)","language":"python"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeEnvelope(t, rec)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "## Syntax Errors\nMissing colon.", data["changes"])
	assert.Equal(t, "## Suggestions\nAdd it.", data["suggestions"])
}

func TestHandleVerify_ValidationError(t *testing.T) {
	router, _ := newTestRouter(t, &stubCompleter{response: "unused"})

	rec := doJSON(router, "POST", "/api/v1/verify", `{"code":"","language":"python"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeEnvelope(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
}

func TestHandleVerify_MalformedBody(t *testing.T) {
	router, _ := newTestRouter(t, &stubCompleter{})

	rec := doJSON(router, "POST", "/api/v1/verify", `{"code": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleVerify_UpstreamTimeout(t *testing.T) {
	router, _ := newTestRouter(t, &stubCompleter{err: apperrors.NewUpstreamTimeout(nil)})

	rec := doJSON(router, "POST", "/api/v1/verify", `{"code":"x = 1","language":"python"}`)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)

	resp := decodeEnvelope(t, rec)
	assert.Equal(t, "ANALYSIS_FAILED", resp.Error.Code)
	assert.Equal(t, "timeout", resp.Error.Details["kind"])
}

func TestHandleDebug_RecordsHistory(t *testing.T) {
	completer := &stubCompleter{response: "Output:\n42\n\nIssues:\nNone.\n\nFixed Code:\nprint(42)\n\nSuggestions:\nNone."}
	router, app := newTestRouter(t, completer)

	rec := doJSON(router, "POST", "/api/v1/debug", `{"code":"print(42)","language":"python","userId":"user-9"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeEnvelope(t, rec)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "## Output\n42", data["output"])

	records, err := app.History.List(context.Background(), "user-9", 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "print(42)", records[0].Code)
}

func TestHandleDebug_AnonymousNotRecorded(t *testing.T) {
	completer := &stubCompleter{response: "Output:\nok"}
	router, app := newTestRouter(t, completer)

	rec := doJSON(router, "POST", "/api/v1/debug", `{"code":"x = 1","language":"python"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// No user in the request and no auth context, so nothing is written
	_, err := app.History.List(context.Background(), "", 5)
	assert.Error(t, err)
}

func TestHandleHistory(t *testing.T) {
	router, app := newTestRouter(t, &stubCompleter{})

	for i := 0; i < 7; i++ {
		require.NoError(t, app.History.Record(context.Background(), &history.Record{
			UserID:   "user-1",
			Code:     fmt.Sprintf("snippet %d", i),
			Language: "python",
		}))
	}

	rec := doJSON(router, "GET", "/api/v1/history/user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeEnvelope(t, rec)
	records := resp.Data.([]interface{})
	assert.Len(t, records, 5)

	// Explicit limit overrides the default window
	rec = doJSON(router, "GET", "/api/v1/history/user-1?limit=2", "")
	resp = decodeEnvelope(t, rec)
	assert.Len(t, resp.Data.([]interface{}), 2)
}

func TestHandleHistory_InvalidLimit(t *testing.T) {
	router, _ := newTestRouter(t, &stubCompleter{})

	rec := doJSON(router, "GET", "/api/v1/history/user-1?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreateUser(t *testing.T) {
	router, _ := newTestRouter(t, &stubCompleter{})

	rec := doJSON(router, "POST", "/api/v1/users", `{"username":"ada","firstName":"Ada","lastName":"Lovelace","email":"ada@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeEnvelope(t, rec)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "ada", data["username"])
	assert.NotEmpty(t, data["id"])

	// Duplicate email is rejected with a conflict
	rec = doJSON(router, "POST", "/api/v1/users", `{"username":"ada2","email":"ada@example.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleGetUser(t *testing.T) {
	router, app := newTestRouter(t, &stubCompleter{})

	created, err := app.Users.Create(context.Background(), &user.CreateRequest{Username: "ada", Email: "ada@example.com"})
	require.NoError(t, err)

	rec := doJSON(router, "GET", "/api/v1/users/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	// Email in the path resolves the same profile
	rec = doJSON(router, "GET", "/api/v1/users/ada@example.com", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, created.ID, resp.Data.(map[string]interface{})["id"])

	rec = doJSON(router, "GET", "/api/v1/users/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleLogin(t *testing.T) {
	router, app := newTestRouter(t, &stubCompleter{})

	_, err := app.Users.Create(context.Background(), &user.CreateRequest{Username: "ada", Email: "ada@example.com"})
	require.NoError(t, err)

	rec := doJSON(router, "POST", "/api/v1/auth/login", `{"email":"ada@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeEnvelope(t, rec)
	data := resp.Data.(map[string]interface{})
	assert.NotEmpty(t, data["token"])

	// Unknown email
	rec = doJSON(router, "POST", "/api/v1/auth/login", `{"email":"nobody@example.com"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Missing email
	rec = doJSON(router, "POST", "/api/v1/auth/login", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDebug_AuthenticatedUserFromToken(t *testing.T) {
	completer := &stubCompleter{response: "Output:\nok"}
	router, app := newTestRouter(t, completer)

	profile, err := app.Users.Create(context.Background(), &user.CreateRequest{Username: "ada", Email: "ada@example.com"})
	require.NoError(t, err)

	token, err := app.AuthService.GenerateJWT(profile)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/debug", strings.NewReader(`{"code":"x = 1","language":"python"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	records, err := app.History.List(context.Background(), profile.ID, 5)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
