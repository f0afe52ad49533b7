package auth

import (
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/sessions"

	"codeclinic/internal/user"
)

// sessionName is the cookie under which login state is kept.
const sessionName = "codeclinic-session"

// Service handles token issuance and validation. Tokens identify a profile
// from the user store; there is no separate credential database.
type Service struct {
	jwtSecret    []byte
	sessionStore *sessions.CookieStore
	users        *user.Store
	mutex        sync.RWMutex
}

// contextKey represents custom context key types to avoid collisions
type contextKey string

const (
	userContextKey contextKey = "user"
)

// Claims is the JWT claims structure
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// LoginRequest is the payload for a login attempt
type LoginRequest struct {
	Email string `json:"email"`
}

// LoginResponse carries the issued token and the matched profile
type LoginResponse struct {
	Token string        `json:"token"`
	User  *user.Profile `json:"user"`
}
