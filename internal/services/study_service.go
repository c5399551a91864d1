package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/studyfeed/quiz-service/internal/cache"
	"github.com/studyfeed/quiz-service/internal/models"
	"github.com/studyfeed/quiz-service/internal/repositories"
	"github.com/studyfeed/quiz-service/internal/validator"
)

type studyService struct {
	repo      repositories.Repository
	sessions  *cache.SessionStore
	logger    *slog.Logger
	validator *validator.Validator
}

func NewStudyService(repo repositories.Repository, sessions *cache.SessionStore, logger *slog.Logger, validator *validator.Validator) StudyService {
	return &studyService{
		repo:      repo,
		sessions:  sessions,
		logger:    logger,
		validator: validator,
	}
}

func (s *studyService) ListTopics(ctx context.Context) ([]*models.Topic, error) {
	records, err := s.repo.Topic().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}

	topics := make([]*models.Topic, len(records))
	for i, record := range records {
		topic, err := record.ToTopic()
		if err != nil {
			return nil, err
		}
		topics[i] = topic
	}

	return topics, nil
}

func (s *studyService) GetTopic(ctx context.Context, id string) (*models.Topic, error) {
	record, err := s.repo.Topic().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	return record.ToTopic()
}

func (s *studyService) CreateTopic(ctx context.Context, topic *models.Topic) error {
	if topic.ID == "" || topic.Title == "" {
		return NewValidationError("topic", "id and title are required", nil)
	}

	record, err := models.NewTopicRecord(topic)
	if err != nil {
		return err
	}

	if err := s.repo.Topic().Create(ctx, record); err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}

	s.logger.Info("Topic created", "topic_id", topic.ID, "subtopics", len(topic.Subtopics))
	return nil
}

func (s *studyService) GetProgress(ctx context.Context) (models.StudyProgress, error) {
	progress, err := s.sessions.GetProgress(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get study progress: %w", err)
	}
	return progress, nil
}

// SaveProgress records the furthest page reached in a subtopic. Moving
// backwards through pages never lowers the stored position.
func (s *studyService) SaveProgress(ctx context.Context, req *SaveProgressRequest) (models.StudyProgress, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	progress, err := s.sessions.GetProgress(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get study progress: %w", err)
	}

	if current, ok := progress[req.SubtopicID]; !ok || req.PageIndex > current {
		progress[req.SubtopicID] = req.PageIndex
		if err := s.sessions.SaveProgress(ctx, progress); err != nil {
			return nil, fmt.Errorf("failed to save study progress: %w", err)
		}
	}

	return progress, nil
}
