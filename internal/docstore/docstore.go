package docstore

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/philippgille/chromem-go"
)

// embeddingDim is the dimension of the locally computed document vectors.
const embeddingDim = 128

// Open initializes the persistent chromem-go database under dataDir. When
// dataDir is empty the OS user config directory is used.
func Open(dataDir string) (*chromem.DB, error) {
	if dataDir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve data directory: %w", err)
		}
		dataDir = filepath.Join(configDir, "codeclinic")
	}

	dbPath := filepath.Join(dataDir, "chromem-db")
	db, err := chromem.NewPersistentDB(dbPath, true)
	if err != nil {
		return nil, fmt.Errorf("failed to open document store at %s: %w", dbPath, err)
	}

	log.Printf("📁 Document store opened at: %s", dbPath)
	return db, nil
}

// EmbeddingFunc returns a local, deterministic embedding function. The
// stores use chromem as a durable document log, not for semantic search, so
// a cheap character-frequency vector is sufficient and keeps startup free of
// network calls.
func EmbeddingFunc() chromem.EmbeddingFunc {
	return func(_ context.Context, text string) ([]float32, error) {
		embedding := make([]float32, embeddingDim)
		if len(text) == 0 {
			embedding[0] = 1
			return embedding, nil
		}

		embedding[0] = float32(len(text)) / 1000.0

		commonChars := []rune{'a', 'e', 'i', 'o', 'u', ' ', '.', ',', '\n'}
		counts := make(map[rune]int)
		for _, r := range text {
			counts[r]++
		}
		for i, r := range commonChars {
			embedding[i+1] = float32(counts[r]) / float32(len(text)+1)
		}

		hash := 0
		for _, r := range text {
			hash = (hash*31 + int(r)) % 100003
		}
		for i := len(commonChars) + 1; i < embeddingDim; i++ {
			hash = (hash*31 + i) % 100003
			embedding[i] = float32(hash%100) / 100.0
		}

		return embedding, nil
	}
}

// LoadAll returns every document in the collection. chromem-go rejects
// queries whose nResults exceeds the collection size, so the limit is pinned
// to the current document count.
func LoadAll(collection *chromem.Collection, searchTerm string) ([]chromem.Result, error) {
	count := collection.Count()
	if count == 0 {
		return nil, nil
	}

	results, err := collection.Query(context.Background(), searchTerm, count, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection documents: %w", err)
	}
	return results, nil
}
