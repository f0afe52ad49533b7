package user

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"codeclinic/internal/docstore"
	apperrors "codeclinic/internal/errors"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
)

const collectionName = "user-profiles"

// Store holds registered user profiles. Profiles live in memory for serving
// and in the document store for durability across restarts.
type Store struct {
	db      *chromem.DB
	byID    map[string]*Profile
	byEmail map[string]string
	mutex   sync.RWMutex
}

// NewStore creates a user store backed by the given database and loads
// existing profiles into memory. A nil db yields a memory-only store.
func NewStore(db *chromem.DB) *Store {
	s := &Store{
		db:      db,
		byID:    make(map[string]*Profile),
		byEmail: make(map[string]string),
	}

	s.loadProfiles()

	return s
}

// Create registers a new user. Email addresses are unique; a duplicate
// registration is rejected with a conflict.
func (s *Store) Create(ctx context.Context, req *CreateRequest) (*Profile, error) {
	details := make(map[string]interface{})
	if strings.TrimSpace(req.Username) == "" {
		details["username"] = "required"
	}
	if strings.TrimSpace(req.Email) == "" {
		details["email"] = "required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("username and email are required", details)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	profile := &Profile{
		ID:          uuid.NewString(),
		Username:    strings.TrimSpace(req.Username),
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Email:       email,
		DateOfBirth: strings.TrimSpace(req.DateOfBirth),
		CreatedAt:   time.Now(),
	}

	s.mutex.Lock()
	if _, exists := s.byEmail[email]; exists {
		s.mutex.Unlock()
		return nil, apperrors.NewConflictError(fmt.Sprintf("user with email %s already exists", email))
	}
	s.byID[profile.ID] = profile
	s.byEmail[email] = profile.ID
	s.mutex.Unlock()

	if s.db != nil {
		if err := s.persistProfile(ctx, profile); err != nil {
			log.Printf("⚠️  Failed to persist user profile %s: %v", profile.ID, err)
		}
	}

	return profile, nil
}

// Get returns the profile with the given ID
func (s *Store) Get(_ context.Context, id string) (*Profile, error) {
	s.mutex.RLock()
	profile, ok := s.byID[id]
	s.mutex.RUnlock()

	if !ok {
		return nil, apperrors.NewNotFoundError("user")
	}
	return profile, nil
}

// GetByEmail returns the profile registered under the given email
func (s *Store) GetByEmail(_ context.Context, email string) (*Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mutex.RLock()
	id, ok := s.byEmail[email]
	var profile *Profile
	if ok {
		profile = s.byID[id]
	}
	s.mutex.RUnlock()

	if profile == nil {
		return nil, apperrors.NewNotFoundError("user")
	}
	return profile, nil
}

// List returns all registered profiles, oldest first
func (s *Store) List(_ context.Context) ([]*Profile, error) {
	s.mutex.RLock()
	out := make([]*Profile, 0, len(s.byID))
	for _, profile := range s.byID {
		out = append(out, profile)
	}
	s.mutex.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// loadProfiles loads all persisted profiles into memory on startup
func (s *Store) loadProfiles() {
	if s.db == nil {
		log.Printf("⚠️  Database not available, user profiles will not persist")
		return
	}

	embeddingFunc := docstore.EmbeddingFunc()

	collection, err := s.db.GetOrCreateCollection(collectionName, map[string]string{"type": "user"}, embeddingFunc)
	if err != nil {
		log.Printf("⚠️  Failed to open user collection: %v", err)
		return
	}

	results, err := docstore.LoadAll(collection, "user")
	if err != nil {
		log.Printf("⚠️  Failed to load user profiles: %v", err)
		return
	}

	loaded := 0
	for _, result := range results {
		var profile Profile
		if err := json.Unmarshal([]byte(result.Content), &profile); err != nil {
			log.Printf("⚠️  Failed to parse user profile: %v", err)
			continue
		}
		s.byID[profile.ID] = &profile
		s.byEmail[profile.Email] = profile.ID
		loaded++
	}

	log.Printf("✅ Loaded %d user profiles from document store", loaded)
}

// persistProfile writes one profile to the document store
func (s *Store) persistProfile(ctx context.Context, profile *Profile) error {
	embeddingFunc := docstore.EmbeddingFunc()

	collection, err := s.db.GetOrCreateCollection(collectionName, map[string]string{"type": "user"}, embeddingFunc)
	if err != nil {
		return fmt.Errorf("failed to open user collection: %w", err)
	}

	content, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal user profile: %w", err)
	}

	embedding, err := embeddingFunc(ctx, string(content))
	if err != nil {
		return fmt.Errorf("failed to embed user profile: %w", err)
	}

	metadata := map[string]string{
		"email":      profile.Email,
		"created_at": profile.CreatedAt.Format(time.RFC3339Nano),
	}

	docID := fmt.Sprintf("user_%s", profile.ID)
	if err := collection.Add(ctx, []string{docID}, [][]float32{embedding}, []map[string]string{metadata}, []string{string(content)}); err != nil {
		return fmt.Errorf("failed to persist user profile: %w", err)
	}

	return nil
}
