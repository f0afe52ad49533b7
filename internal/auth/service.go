package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/sessions"

	"codeclinic/internal/user"
)

// NewService creates an authentication service backed by the user store
func NewService(jwtSecret, sessionSecret string, users *user.Store) *Service {
	return &Service{
		jwtSecret:    []byte(jwtSecret),
		sessionStore: sessions.NewCookieStore([]byte(sessionSecret)),
		users:        users,
	}
}

// Login issues a JWT for the profile registered under the given email and
// records the login in the request session.
func (s *Service) Login(ctx context.Context, w http.ResponseWriter, r *http.Request, email string) (*LoginResponse, error) {
	profile, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	token, err := s.GenerateJWT(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	session, _ := s.sessionStore.Get(r, sessionName)
	session.Values["user_id"] = profile.ID
	if err := session.Save(r, w); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return &LoginResponse{Token: token, User: profile}, nil
}

// Logout clears the request session
func (s *Service) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := s.sessionStore.Get(r, sessionName)
	session.Values = make(map[interface{}]interface{})
	session.Options.MaxAge = -1
	session.Save(r, w)
}

// GenerateJWT generates a signed token for the profile
func (s *Service) GenerateJWT(profile *user.Profile) (string, error) {
	claims := Claims{
		UserID:   profile.ID,
		Username: profile.Username,
		Email:    profile.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateJWT validates a token and returns its claims
func (s *Service) ValidateJWT(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("user_id claim not found")
	}
	return claims, nil
}

// sessionUserID extracts the logged-in user ID from the request session
func (s *Service) sessionUserID(r *http.Request) (string, bool) {
	session, err := s.sessionStore.Get(r, sessionName)
	if err != nil {
		return "", false
	}
	userID, ok := session.Values["user_id"].(string)
	return userID, ok && userID != ""
}
