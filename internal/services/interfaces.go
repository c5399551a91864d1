package services

import (
	"context"

	"github.com/studyfeed/quiz-service/internal/models"
	"github.com/studyfeed/quiz-service/internal/repositories"
)

// ===== REQUEST STRUCTS =====

type StartQuizRequest struct {
	QuestionCount int                     `json:"question_count" validate:"omitempty,min=1,max=50"`
	Category      *string                 `json:"category" validate:"omitempty,max=100"`
	Difficulty    *models.DifficultyLevel `json:"difficulty" validate:"omitempty,difficulty_level"`
	StartTime     int64                   `json:"start_time" validate:"omitempty,min=0"` // ms epoch, defaults to now
}

type SubmitAnswerRequest struct {
	QuestionID string            `json:"question_id" validate:"required,max=64"`
	Answer     models.UserAnswer `json:"answer" validate:"required"`
}

type FinishQuizRequest struct {
	EndTime int64 `json:"end_time" validate:"omitempty,min=0"` // ms epoch, defaults to now
}

type CreateQuestionRequest struct {
	ID          string                  `json:"id" validate:"omitempty,max=64"`
	Format      models.QuestionFormat   `json:"format" validate:"required,question_format"`
	Text        string                  `json:"question" validate:"required,min=1"`
	Category    *string                 `json:"category" validate:"omitempty,max=100"`
	Difficulty  *models.DifficultyLevel `json:"difficulty" validate:"omitempty,difficulty_level"`
	Points      int                     `json:"points" validate:"omitempty,min=1,max=100"`
	Explanation *string                 `json:"explanation" validate:"omitempty,max=2000"`
	Content     interface{}             `json:"content" validate:"required"`
}

type SaveProgressRequest struct {
	SubtopicID string `json:"subtopic_id" validate:"required,max=64"`
	PageIndex  int    `json:"page_index" validate:"min=0"`
}

// ===== SERVICE INTERFACES =====

// QuizService drives a quiz session from question selection through final
// scoring.
type QuizService interface {
	// Session lifecycle
	Start(ctx context.Context, req *StartQuizRequest) (*models.QuizSession, error)
	GetSession(ctx context.Context, sessionID string) (*models.QuizSession, error)
	SubmitAnswer(ctx context.Context, sessionID string, req *SubmitAnswerRequest) (*models.QuizSession, error)
	NextQuestion(ctx context.Context, sessionID string) (*models.QuizSession, error)
	PreviousQuestion(ctx context.Context, sessionID string) (*models.QuizSession, error)
	Finish(ctx context.Context, sessionID string, req *FinishQuizRequest) (*models.QuizResult, error)
	Reset(ctx context.Context, sessionID string) error

	// Results
	GetResult(ctx context.Context, sessionID string) (*models.QuizResult, error)
	ListResults(ctx context.Context, filters repositories.ResultFilters) ([]*models.QuizResult, int64, error)
	GetStats(ctx context.Context) (*repositories.ResultStats, error)
}

// QuestionService manages the question bank.
type QuestionService interface {
	Create(ctx context.Context, req *CreateQuestionRequest) (*models.Question, error)
	CreateBatch(ctx context.Context, reqs []*CreateQuestionRequest) ([]*models.Question, error)
	GetByID(ctx context.Context, id string) (*models.Question, error)
	List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error)
	Delete(ctx context.Context, id string) error
	GetFormatCounts(ctx context.Context) (map[models.QuestionFormat]int, error)
	GetCategories(ctx context.Context) ([]string, error)
}

// StudyService exposes the study feed and reading position.
type StudyService interface {
	ListTopics(ctx context.Context) ([]*models.Topic, error)
	GetTopic(ctx context.Context, id string) (*models.Topic, error)
	CreateTopic(ctx context.Context, topic *models.Topic) error
	GetProgress(ctx context.Context) (models.StudyProgress, error)
	SaveProgress(ctx context.Context, req *SaveProgressRequest) (models.StudyProgress, error)
}
