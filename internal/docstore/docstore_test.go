package docstore

import (
	"context"
	"testing"

	"github.com/philippgille/chromem-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingFunc_Deterministic(t *testing.T) {
	embed := EmbeddingFunc()

	a, err := embed(context.Background(), "some document text")
	require.NoError(t, err)
	b, err := embed(context.Background(), "some document text")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, embeddingDim)
}

func TestEmbeddingFunc_EmptyText(t *testing.T) {
	embed := EmbeddingFunc()

	v, err := embed(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, v, embeddingDim)
	assert.NotZero(t, v[0])
}

func TestLoadAll(t *testing.T) {
	db := chromem.NewDB()
	embed := EmbeddingFunc()

	collection, err := db.GetOrCreateCollection("test-docs", nil, embed)
	require.NoError(t, err)

	// Empty collection yields no results and no error
	results, err := LoadAll(collection, "anything")
	require.NoError(t, err)
	assert.Empty(t, results)

	ctx := context.Background()
	docs := []string{"first document", "second document", "third document"}
	for i, content := range docs {
		embedding, err := embed(ctx, content)
		require.NoError(t, err)
		require.NoError(t, collection.Add(ctx,
			[]string{string(rune('a' + i))},
			[][]float32{embedding},
			[]map[string]string{{"idx": content}},
			[]string{content},
		))
	}

	results, err = LoadAll(collection, "document")
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestOpen(t *testing.T) {
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	assert.NotNil(t, db)
}
