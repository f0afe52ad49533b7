package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RecordAndList(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	rec := &Record{
		UserID:      "user-1",
		Code:        "print(1)",
		Language:    "python",
		Output:      "## Output\n1",
		Changes:     "No issues found in your code.",
		Suggestions: "## Suggestions\nNone.",
	}
	require.NoError(t, store.Record(ctx, rec))

	// ID and timestamp are assigned on write
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.Timestamp.IsZero())

	records, err := store.List(ctx, "user-1", 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "print(1)", records[0].Code)
}

func TestStore_Record_RequiresUserID(t *testing.T) {
	store := NewStore(nil)
	err := store.Record(context.Background(), &Record{Code: "x = 1"})
	assert.Error(t, err)
}

func TestStore_List_WindowAndOrder(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 7; i++ {
		require.NoError(t, store.Record(ctx, &Record{
			UserID:    "user-1",
			Code:      fmt.Sprintf("run %d", i),
			Language:  "python",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	records, err := store.List(ctx, "user-1", 5)
	require.NoError(t, err)
	require.Len(t, records, 5)

	// Most recent first; the two oldest fall outside the window
	assert.Equal(t, "run 6", records[0].Code)
	assert.Equal(t, "run 2", records[4].Code)
	for i := 1; i < len(records); i++ {
		assert.False(t, records[i].Timestamp.After(records[i-1].Timestamp))
	}
}

func TestStore_List_OrderedByTimestampNotInsertion(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, store.Record(ctx, &Record{UserID: "u", Code: "newer", Timestamp: now}))
	require.NoError(t, store.Record(ctx, &Record{UserID: "u", Code: "older", Timestamp: now.Add(-time.Minute)}))

	records, err := store.List(ctx, "u", 5)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "newer", records[0].Code)
	assert.Equal(t, "older", records[1].Code)
}

func TestStore_List_LimitFloor(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Record(ctx, &Record{UserID: "u", Code: fmt.Sprintf("%d", i)}))
	}

	records, err := store.List(ctx, "u", 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	records, err = store.List(ctx, "u", -3)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestStore_List_UnknownUserIsEmpty(t *testing.T) {
	store := NewStore(nil)

	records, err := store.List(context.Background(), "nobody", 5)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStore_List_RequiresUserID(t *testing.T) {
	store := NewStore(nil)
	_, err := store.List(context.Background(), "", 5)
	assert.Error(t, err)
}

func TestStore_UsersAreIsolated(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, &Record{UserID: "alice", Code: "a"}))
	require.NoError(t, store.Record(ctx, &Record{UserID: "bob", Code: "b"}))

	records, err := store.List(ctx, "alice", 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].Code)
}
