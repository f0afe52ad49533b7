package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"codeclinic/internal/analysis"
	"codeclinic/internal/auth"
	"codeclinic/internal/config"
	"codeclinic/internal/history"
	"codeclinic/internal/notify"
	"codeclinic/internal/user"

	"github.com/gorilla/mux"
)

// Server represents the HTTP server
type Server struct {
	router *mux.Router
	server *http.Server
}

// App bundles the service dependencies the HTTP layer serves
type App struct {
	Config      *config.Config
	Analyzer    *analysis.Analyzer
	History     *history.Store
	Users       *user.Store
	AuthService *auth.Service
	Broadcaster *notify.Broadcaster
}

// NewServer creates a new HTTP server
func NewServer(port int) *Server {
	router := mux.NewRouter()

	// Create server with timeouts. WriteTimeout must cover a full analysis
	// round trip to the completion backend.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{
		router: router,
		server: server,
	}
}

// Start runs the server until it fails or ctx is cancelled
func Start(ctx context.Context, app *App) error {
	port := app.Config.ServerPort
	server := NewServer(port)

	// Apply global middleware
	rateLimiter := NewRateLimiter(time.Minute, 100)
	server.router.Use(corsMiddleware)
	server.router.Use(securityHeadersMiddleware)
	server.router.Use(rateLimitMiddleware(rateLimiter))
	server.router.Use(jsonBodyMiddleware)

	setupRoutes(server.router, app)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.server.Shutdown(shutdownCtx); err != nil {
			log.Printf("⚠️  Server shutdown error: %v", err)
		}
	}()

	log.Printf("🌐 Starting CodeClinic server on port %d...", port)
	log.Printf("✅ Server started on http://localhost:%d", port)
	log.Printf("📊 API endpoints available on http://localhost:%d/api/v1/", port)
	log.Printf("🔗 WebSocket available on ws://localhost:%d/ws", port)

	if err := server.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// setupRoutes configures all the HTTP routes
func setupRoutes(router *mux.Router, app *App) {
	api := router.PathPrefix("/api/v1").Subrouter()

	// WebSocket endpoint for analysis notifications
	router.HandleFunc("/ws", app.Broadcaster.HandleConnection)

	// Health check
	router.HandleFunc("/health", handleHealth).Methods("GET")

	// Analysis routes
	api.HandleFunc("/verify", func(w http.ResponseWriter, r *http.Request) {
		handleVerify(w, r, app)
	}).Methods("POST")

	api.HandleFunc("/debug", app.AuthService.OptionalAuth(func(w http.ResponseWriter, r *http.Request) {
		handleDebug(w, r, app)
	})).Methods("POST")

	// History routes
	api.HandleFunc("/history/{userId}", func(w http.ResponseWriter, r *http.Request) {
		handleHistory(w, r, app)
	}).Methods("GET")

	// User routes
	api.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		handleCreateUser(w, r, app)
	}).Methods("POST")

	api.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		handleListUsers(w, r, app)
	}).Methods("GET")

	api.HandleFunc("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		handleGetUser(w, r, app)
	}).Methods("GET")

	// Authentication routes
	api.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		handleLogin(w, r, app)
	}).Methods("POST")

	api.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		handleLogout(w, r, app)
	}).Methods("POST")

	// System metrics endpoint
	api.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		handleSystemMetrics(w, r)
	}).Methods("GET")
}

// handleHealth returns health check status
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `","version":"1.0.0"}`))
}
