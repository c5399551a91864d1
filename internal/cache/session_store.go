package cache

import (
	"context"
	"time"

	"github.com/studyfeed/quiz-service/internal/models"
)

const (
	sessionKeyPrefix = "quiz:session:"
	progressKey      = "study:progress"

	// Abandoned sessions expire after a day.
	sessionTTL = 24 * time.Hour
)

// SessionStore holds in-flight quiz sessions and study progress. Both live in
// the cache rather than Postgres: sessions are mutable and short-lived, and
// only the final result is worth persisting.
type SessionStore struct {
	cache CacheService
}

func NewSessionStore(cache CacheService) *SessionStore {
	return &SessionStore{cache: cache}
}

func (s *SessionStore) SaveSession(ctx context.Context, session *models.QuizSession) error {
	return s.cache.Set(ctx, sessionKeyPrefix+session.ID, session, sessionTTL)
}

func (s *SessionStore) GetSession(ctx context.Context, sessionID string) (*models.QuizSession, error) {
	var session models.QuizSession
	if err := s.cache.Get(ctx, sessionKeyPrefix+sessionID, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, sessionKeyPrefix+sessionID)
}

// SaveProgress stores the reading position map. Progress never expires.
func (s *SessionStore) SaveProgress(ctx context.Context, progress models.StudyProgress) error {
	return s.cache.Set(ctx, progressKey, progress, 0)
}

func (s *SessionStore) GetProgress(ctx context.Context) (models.StudyProgress, error) {
	var progress models.StudyProgress
	if err := s.cache.Get(ctx, progressKey, &progress); err != nil {
		if err == ErrCacheMiss {
			return models.StudyProgress{}, nil
		}
		return nil, err
	}
	return progress, nil
}
