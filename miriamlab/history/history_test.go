package history

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateDeletesOldestAtLimit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		err := store.Create(ctx, &Session{
			UserID:    "u1",
			Mode:      ModeCompare,
			Title:     fmt.Sprintf("run %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}, 3)
		require.NoError(t, err)
	}

	sessions, err := store.List(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "run 3", sessions[0].Title)
	assert.Equal(t, "run 1", sessions[2].Title)
}

func TestMemoryStore_ListIsPerUserAndBounded(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Create(ctx, &Session{UserID: "u1", Mode: ModeChat}, 10))
	}
	require.NoError(t, store.Create(ctx, &Session{UserID: "u2", Mode: ModeChat}, 10))

	sessions, err := store.List(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	sessions, err = store.List(ctx, "nobody", 2)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestPrepare(t *testing.T) {
	s := &Session{UserID: "u1", Mode: ModeJudge, Title: "   "}
	require.NoError(t, prepare(s, 5))

	assert.NotEmpty(t, s.ID)
	assert.False(t, s.CreatedAt.IsZero())
	assert.Equal(t, "Untitled judge", s.Title)
	assert.NotNil(t, s.Metadata)

	long := &Session{Mode: ModeChat, Title: strings.Repeat("x", 300)}
	require.NoError(t, prepare(long, 5))
	assert.Len(t, long.Title, maxTitleLength)

	assert.ErrorIs(t, prepare(&Session{Mode: "poetry"}, 5), ErrInvalidMode)
	assert.ErrorIs(t, prepare(&Session{Mode: ModeChat}, 0), ErrInvalidLimit)
}
