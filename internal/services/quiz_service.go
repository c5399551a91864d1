package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/studyfeed/quiz-service/internal/cache"
	"github.com/studyfeed/quiz-service/internal/events"
	"github.com/studyfeed/quiz-service/internal/models"
	"github.com/studyfeed/quiz-service/internal/repositories"
	"github.com/studyfeed/quiz-service/internal/scoring"
	"github.com/studyfeed/quiz-service/internal/validator"
)

// DefaultQuestionCount is how many questions a session gets when the caller
// does not ask for a specific count.
const DefaultQuestionCount = 10

type quizService struct {
	repo      repositories.Repository
	sessions  *cache.SessionStore
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuizService(repo repositories.Repository, sessions *cache.SessionStore, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) QuizService {
	return &quizService{
		repo:      repo,
		sessions:  sessions,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== SESSION LIFECYCLE =====

func (s *quizService) Start(ctx context.Context, req *StartQuizRequest) (*models.QuizSession, error) {
	s.logger.Info("Starting quiz session",
		"question_count", req.QuestionCount,
		"category", req.Category,
		"difficulty", req.Difficulty)

	// Validate request
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	count := req.QuestionCount
	if count <= 0 {
		count = DefaultQuestionCount
	}

	questions, err := s.repo.Question().GetRandom(ctx, repositories.RandomQuestionFilters{
		Category:   req.Category,
		Difficulty: req.Difficulty,
		Count:      count,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to select questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrQuestionBankEmpty
	}

	startTime := req.StartTime
	if startTime <= 0 {
		startTime = time.Now().UnixMilli()
	}

	session := &models.QuizSession{
		ID:                   uuid.NewString(),
		Questions:            make([]models.Question, len(questions)),
		CurrentQuestionIndex: 0,
		Answers:              make(map[string]models.UserAnswer),
		Status:               models.SessionInProgress,
		StartTime:            startTime,
	}
	for i, q := range questions {
		session.Questions[i] = *q
	}

	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.publishEvent(ctx, events.NewQuizStartedEvent(session.ID, len(session.Questions), time.UnixMilli(startTime)))

	s.logger.Info("Quiz session started",
		"session_id", session.ID,
		"question_count", len(session.Questions))

	return session, nil
}

func (s *quizService) GetSession(ctx context.Context, sessionID string) (*models.QuizSession, error) {
	return s.getSession(ctx, sessionID)
}

func (s *quizService) SubmitAnswer(ctx context.Context, sessionID string, req *SubmitAnswerRequest) (*models.QuizSession, error) {
	// Validate request
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Status == models.SessionCompleted {
		return nil, ErrSessionAlreadyCompleted
	}
	if session.Status != models.SessionInProgress {
		return nil, ErrSessionNotActive
	}

	question := session.QuestionByID(req.QuestionID)
	if question == nil {
		return nil, ErrQuestionNotInSession
	}

	if req.Answer.Format != question.Format {
		return nil, ErrAnswerFormatMismatch
	}

	// Re-submitting replaces the previous answer for the question.
	session.Answers[req.QuestionID] = req.Answer

	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.Info("Answer submitted",
		"session_id", sessionID,
		"question_id", req.QuestionID,
		"answered", len(session.Answers))

	return session, nil
}

func (s *quizService) NextQuestion(ctx context.Context, sessionID string) (*models.QuizSession, error) {
	return s.moveTo(ctx, sessionID, +1)
}

func (s *quizService) PreviousQuestion(ctx context.Context, sessionID string) (*models.QuizSession, error) {
	return s.moveTo(ctx, sessionID, -1)
}

func (s *quizService) Finish(ctx context.Context, sessionID string, req *FinishQuizRequest) (*models.QuizResult, error) {
	s.logger.Info("Finishing quiz session", "session_id", sessionID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Status == models.SessionCompleted {
		return nil, ErrSessionAlreadyCompleted
	}
	if session.Status != models.SessionInProgress {
		return nil, ErrSessionNotActive
	}

	endTime := req.EndTime
	if endTime <= 0 {
		endTime = time.Now().UnixMilli()
	}
	session.EndTime = endTime

	result, err := scoring.CalculateFinalResult(session)
	if err != nil {
		return nil, fmt.Errorf("failed to score session: %w", err)
	}

	// Persist the result before marking the session completed so a failed
	// insert leaves the session in progress and Finish can be retried.
	record, err := models.NewQuizResultRecord(&result)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Result().Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist result: %w", err)
	}

	session.Status = models.SessionCompleted
	session.Results = result.QuestionResults

	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.publishEvent(ctx, events.NewQuizCompletedEvent(&result))

	s.logger.Info("Quiz session finished",
		"session_id", sessionID,
		"percentage", result.Percentage,
		"earned_points", result.EarnedPoints,
		"total_points", result.TotalPoints)

	return &result, nil
}

func (s *quizService) Reset(ctx context.Context, sessionID string) error {
	if _, err := s.getSession(ctx, sessionID); err != nil {
		return err
	}

	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.publishEvent(ctx, events.NewQuizResetEvent(sessionID))

	s.logger.Info("Quiz session reset", "session_id", sessionID)
	return nil
}

// ===== RESULTS =====

func (s *quizService) GetResult(ctx context.Context, sessionID string) (*models.QuizResult, error) {
	record, err := s.repo.Result().GetBySessionID(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return record.ToResult()
}

func (s *quizService) ListResults(ctx context.Context, filters repositories.ResultFilters) ([]*models.QuizResult, int64, error) {
	records, total, err := s.repo.Result().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list results: %w", err)
	}

	results := make([]*models.QuizResult, len(records))
	for i, record := range records {
		result, err := record.ToResult()
		if err != nil {
			return nil, 0, err
		}
		results[i] = result
	}

	return results, total, nil
}

func (s *quizService) GetStats(ctx context.Context) (*repositories.ResultStats, error) {
	stats, err := s.repo.Result().GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get result stats: %w", err)
	}
	return stats, nil
}

// ===== HELPERS =====

func (s *quizService) getSession(ctx context.Context, sessionID string) (*models.QuizSession, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if err == cache.ErrCacheMiss {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// moveTo shifts the current question index by delta, clamped to the valid
// range.
func (s *quizService) moveTo(ctx context.Context, sessionID string, delta int) (*models.QuizSession, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Status != models.SessionInProgress {
		return nil, ErrSessionNotActive
	}

	index := session.CurrentQuestionIndex + delta
	if index < 0 {
		index = 0
	}
	if max := len(session.Questions) - 1; index > max {
		index = max
	}

	if index == session.CurrentQuestionIndex {
		return session, nil
	}
	session.CurrentQuestionIndex = index

	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return session, nil
}

// publishEvent is best-effort: a broker outage must not fail the quiz flow.
func (s *quizService) publishEvent(ctx context.Context, event *events.QuizEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishQuizEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish quiz event",
			"event_type", event.Type,
			"error", err)
	}
}
