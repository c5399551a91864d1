package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyfeed/quiz-service/internal/models"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	store := NewSessionStore(NewMemoryCache())
	ctx := context.Background()

	session := &models.QuizSession{
		ID:     "session-1",
		Status: models.SessionInProgress,
		Answers: map[string]models.UserAnswer{
			"q1": {Format: models.TrueOrFalse},
		},
		StartTime: 1700000000000,
	}

	require.NoError(t, store.SaveSession(ctx, session))

	got, err := store.GetSession(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, session.Status, got.Status)
	assert.Equal(t, session.StartTime, got.StartTime)
	assert.Contains(t, got.Answers, "q1")
}

func TestSessionStoreMissingSession(t *testing.T) {
	store := NewSessionStore(NewMemoryCache())

	_, err := store.GetSession(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestSessionStoreDelete(t *testing.T) {
	store := NewSessionStore(NewMemoryCache())
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, &models.QuizSession{ID: "session-2"}))
	require.NoError(t, store.DeleteSession(ctx, "session-2"))

	_, err := store.GetSession(ctx, "session-2")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestProgressDefaultsToEmpty(t *testing.T) {
	store := NewSessionStore(NewMemoryCache())

	progress, err := store.GetProgress(context.Background())
	require.NoError(t, err)
	assert.Empty(t, progress)
}

func TestProgressRoundTrip(t *testing.T) {
	store := NewSessionStore(NewMemoryCache())
	ctx := context.Background()

	require.NoError(t, store.SaveProgress(ctx, models.StudyProgress{"sub-1": 3}))

	progress, err := store.GetProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, progress["sub-1"])
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	var out string
	assert.ErrorIs(t, c.Get(ctx, "k", &out), ErrCacheMiss)
}

func TestMemoryCacheDeletePattern(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "quiz:session:a", 1, 0))
	require.NoError(t, c.Set(ctx, "quiz:session:b", 2, 0))
	require.NoError(t, c.Set(ctx, "study:progress", 3, 0))

	require.NoError(t, c.DeletePattern(ctx, "quiz:session:*"))

	var out int
	assert.ErrorIs(t, c.Get(ctx, "quiz:session:a", &out), ErrCacheMiss)
	assert.NoError(t, c.Get(ctx, "study:progress", &out))
}
