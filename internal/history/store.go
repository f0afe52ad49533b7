package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"codeclinic/internal/docstore"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
)

// collectionName is the chromem collection holding analysis history records.
const collectionName = "analysis-history"

// Store is the per-user analysis history log. Reads are served from an
// in-memory index; every write is also persisted to the document store.
// The retention cap is enforced at read time: records accumulate in the log
// and only the listing window is bounded.
type Store struct {
	db     *chromem.DB
	byUser map[string][]*Record
	mutex  sync.RWMutex
}

// NewStore creates a history store backed by the given database and loads
// existing records into memory. A nil db yields a memory-only store.
func NewStore(db *chromem.DB) *Store {
	s := &Store{
		db:     db,
		byUser: make(map[string][]*Record),
	}

	s.loadRecords()

	return s
}

// Record appends a completed analysis to the user's log. The append is
// ordered by the record's timestamp, not by call order; concurrent writes
// from the same user may interleave. Returns a storage error on persistence
// failure; callers on the write path log it and move on.
func (s *Store) Record(ctx context.Context, rec *Record) error {
	if rec.UserID == "" {
		return fmt.Errorf("record has no user id")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	s.mutex.Lock()
	s.byUser[rec.UserID] = append(s.byUser[rec.UserID], rec)
	s.mutex.Unlock()

	if s.db == nil {
		return nil
	}
	return s.persistRecord(ctx, rec)
}

// List returns at most limit records for the user, most recent first.
// A limit below 1 falls back to 1.
func (s *Store) List(_ context.Context, userID string, limit int) ([]*Record, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if limit < 1 {
		limit = 1
	}

	s.mutex.RLock()
	records := s.byUser[userID]
	out := make([]*Record, len(records))
	copy(out, records)
	s.mutex.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// loadRecords loads all persisted records into the in-memory index on startup
func (s *Store) loadRecords() {
	if s.db == nil {
		log.Printf("⚠️  Database not available, analysis history will not persist")
		return
	}

	embeddingFunc := docstore.EmbeddingFunc()

	collection, err := s.db.GetOrCreateCollection(collectionName, map[string]string{"type": "history"}, embeddingFunc)
	if err != nil {
		log.Printf("⚠️  Failed to open history collection: %v", err)
		return
	}

	results, err := docstore.LoadAll(collection, "analysis")
	if err != nil {
		log.Printf("⚠️  Failed to load history records: %v", err)
		return
	}

	loaded := 0
	for _, result := range results {
		var rec Record
		if err := json.Unmarshal([]byte(result.Content), &rec); err != nil {
			log.Printf("⚠️  Failed to parse history record: %v", err)
			continue
		}
		s.byUser[rec.UserID] = append(s.byUser[rec.UserID], &rec)
		loaded++
	}

	log.Printf("✅ Loaded %d history records from document store", loaded)
}

// persistRecord writes one record to the document store
func (s *Store) persistRecord(ctx context.Context, rec *Record) error {
	embeddingFunc := docstore.EmbeddingFunc()

	collection, err := s.db.GetOrCreateCollection(collectionName, map[string]string{"type": "history"}, embeddingFunc)
	if err != nil {
		return fmt.Errorf("failed to open history collection: %w", err)
	}

	content, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal history record: %w", err)
	}

	embedding, err := embeddingFunc(ctx, string(content))
	if err != nil {
		return fmt.Errorf("failed to embed history record: %w", err)
	}

	metadata := map[string]string{
		"user_id":   rec.UserID,
		"language":  rec.Language,
		"timestamp": rec.Timestamp.Format(time.RFC3339Nano),
	}

	docID := fmt.Sprintf("history_%s", rec.ID)
	if err := collection.Add(ctx, []string{docID}, [][]float32{embedding}, []map[string]string{metadata}, []string{string(content)}); err != nil {
		return fmt.Errorf("failed to persist history record: %w", err)
	}

	return nil
}
