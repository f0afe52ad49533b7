package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"codeclinic/internal/auth"
	apperrors "codeclinic/internal/errors"
	"codeclinic/internal/user"

	"github.com/gorilla/mux"
)

// analyzeRequest is the payload for the verify and debug endpoints
type analyzeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	UserID   string `json:"userId,omitempty"`
}

// handleVerify runs a static analysis without persisting anything
func handleVerify(w http.ResponseWriter, r *http.Request, app *App) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.SendError(w, apperrors.NewValidationError("invalid request body", nil))
		return
	}

	result, err := app.Analyzer.Verify(r.Context(), req.Code, req.Language)
	if err != nil {
		sendError(w, err)
		return
	}

	apperrors.SendSuccess(w, result)
}

// handleDebug runs a debug analysis and records it in the caller's history.
// The user is taken from the request body, falling back to the authenticated
// identity; an anonymous request is analyzed but not recorded.
func handleDebug(w http.ResponseWriter, r *http.Request, app *App) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.SendError(w, apperrors.NewValidationError("invalid request body", nil))
		return
	}

	userID := req.UserID
	if userID == "" {
		if authID, ok := auth.UserIDFromContext(r.Context()); ok {
			userID = authID
		}
	}

	result, err := app.Analyzer.DebugAndRun(r.Context(), req.Code, req.Language, userID)
	if err != nil {
		sendError(w, err)
		return
	}

	apperrors.SendSuccess(w, result)
}

// handleHistory lists a user's recent analyses, most recent first
func handleHistory(w http.ResponseWriter, r *http.Request, app *App) {
	userID := mux.Vars(r)["userId"]

	limit := app.Config.History.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			apperrors.SendError(w, apperrors.NewValidationError("limit must be an integer", map[string]interface{}{
				"limit": raw,
			}))
			return
		}
		limit = parsed
	}

	records, err := app.History.List(r.Context(), userID, limit)
	if err != nil {
		apperrors.SendError(w, apperrors.NewPersistenceError("failed to load history", err))
		return
	}

	apperrors.SendSuccess(w, records)
}

// handleCreateUser registers a new user profile
func handleCreateUser(w http.ResponseWriter, r *http.Request, app *App) {
	var req user.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.SendError(w, apperrors.NewValidationError("invalid request body", nil))
		return
	}

	profile, err := app.Users.Create(r.Context(), &req)
	if err != nil {
		sendError(w, err)
		return
	}

	apperrors.SendSuccess(w, profile)
}

// handleListUsers returns all registered profiles
func handleListUsers(w http.ResponseWriter, r *http.Request, app *App) {
	profiles, err := app.Users.List(r.Context())
	if err != nil {
		sendError(w, err)
		return
	}
	apperrors.SendSuccess(w, profiles)
}

// handleGetUser returns one profile, addressed by ID or email
func handleGetUser(w http.ResponseWriter, r *http.Request, app *App) {
	key := mux.Vars(r)["id"]

	var (
		profile *user.Profile
		err     error
	)
	if strings.Contains(key, "@") {
		profile, err = app.Users.GetByEmail(r.Context(), key)
	} else {
		profile, err = app.Users.Get(r.Context(), key)
	}
	if err != nil {
		sendError(w, err)
		return
	}
	apperrors.SendSuccess(w, profile)
}

// handleLogin issues a JWT for a registered email
func handleLogin(w http.ResponseWriter, r *http.Request, app *App) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.SendError(w, apperrors.NewValidationError("invalid request body", nil))
		return
	}
	if req.Email == "" {
		apperrors.SendError(w, apperrors.NewValidationError("email is required", nil))
		return
	}

	resp, err := app.AuthService.Login(r.Context(), w, r, req.Email)
	if err != nil {
		sendError(w, err)
		return
	}

	apperrors.SendSuccess(w, resp)
}

// handleLogout clears the caller's session
func handleLogout(w http.ResponseWriter, r *http.Request, app *App) {
	app.AuthService.Logout(w, r)
	apperrors.SendSuccess(w, map[string]interface{}{"message": "logged out"})
}

// sendError maps any service error onto the API error envelope
func sendError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		apperrors.SendError(w, appErr)
		return
	}
	apperrors.SendError(w, apperrors.NewInternalError("request failed", err))
}
