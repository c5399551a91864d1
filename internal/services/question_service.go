package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/studyfeed/quiz-service/internal/models"
	"github.com/studyfeed/quiz-service/internal/repositories"
	"github.com/studyfeed/quiz-service/internal/validator"
)

type questionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *questionService) Create(ctx context.Context, req *CreateQuestionRequest) (*models.Question, error) {
	question, err := s.buildQuestion(req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Question().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question created",
		"question_id", question.ID,
		"format", question.Format)

	return question, nil
}

func (s *questionService) CreateBatch(ctx context.Context, reqs []*CreateQuestionRequest) ([]*models.Question, error) {
	if len(reqs) == 0 {
		return nil, NewValidationError("questions", "batch cannot be empty", nil)
	}

	questions := make([]*models.Question, 0, len(reqs))
	for i, req := range reqs {
		question, err := s.buildQuestion(req)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		questions = append(questions, question)
	}

	if err := s.validator.Question().ValidateQuestionBatch(questions); err != nil {
		return nil, NewValidationError("questions", err.Error(), nil)
	}

	if err := s.repo.Question().CreateBatch(ctx, questions); err != nil {
		return nil, fmt.Errorf("failed to create questions: %w", err)
	}

	s.logger.Info("Question batch created", "count", len(questions))

	return questions, nil
}

func (s *questionService) GetByID(ctx context.Context, id string) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

func (s *questionService) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	questions, total, err := s.repo.Question().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, total, nil
}

func (s *questionService) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Question().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.logger.Info("Question deleted", "question_id", id)
	return nil
}

func (s *questionService) GetFormatCounts(ctx context.Context) (map[models.QuestionFormat]int, error) {
	counts, err := s.repo.Question().GetFormatCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get format counts: %w", err)
	}
	return counts, nil
}

func (s *questionService) GetCategories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Question().GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// buildQuestion validates the request and assembles the model, including the
// format-specific content check.
func (s *questionService) buildQuestion(req *CreateQuestionRequest) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	content, err := json.Marshal(req.Content)
	if err != nil {
		return nil, NewValidationError("content", "failed to serialize content", nil)
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	points := req.Points
	if points <= 0 {
		points = models.DefaultPoints
	}

	question := &models.Question{
		ID:          id,
		Format:      req.Format,
		Text:        req.Text,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		Points:      points,
		Explanation: req.Explanation,
		Content:     content,
	}

	if err := s.validator.Question().ValidateContent(question); err != nil {
		return nil, NewValidationError("content", err.Error(), nil)
	}

	return question, nil
}
