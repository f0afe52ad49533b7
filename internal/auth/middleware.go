package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// RequireAuth validates the bearer token or session and rejects the request
// when neither identifies a user.
func (s *Service) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if userID, ok := s.authenticate(r); ok {
			next(w, r.WithContext(context.WithValue(r.Context(), userContextKey, userID)))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":   "Unauthorized",
			"message": "Authentication required",
		})
	}
}

// OptionalAuth adds the user ID to the context when authentication is
// present, but lets anonymous requests through.
func (s *Service) OptionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if userID, ok := s.authenticate(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), userContextKey, userID))
		}
		next(w, r)
	}
}

// authenticate resolves the request to a user ID via JWT, then session
func (s *Service) authenticate(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if claims, err := s.ValidateJWT(tokenString); err == nil {
			return claims.UserID, true
		}
	}

	return s.sessionUserID(r)
}

// UserIDFromContext retrieves the authenticated user ID from request context
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userContextKey).(string)
	return userID, ok && userID != ""
}
