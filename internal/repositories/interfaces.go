package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/studyfeed/quiz-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	Format     *models.QuestionFormat  `json:"format"`
	Difficulty *models.DifficultyLevel `json:"difficulty"`
	Category   *string                 `json:"category"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
	SortBy     string                  `json:"sort_by"`    // "created_at", "format", "difficulty"
	SortOrder  string                  `json:"sort_order"` // "asc", "desc"
}

type RandomQuestionFilters struct {
	Category   *string                 `json:"category"`
	Difficulty *models.DifficultyLevel `json:"difficulty"`
	Format     *models.QuestionFormat  `json:"format"`
	ExcludeIDs []string                `json:"exclude_ids"`
	Count      int                     `json:"count"`
}

type ResultFilters struct {
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`    // "completed_at", "percentage"
	SortOrder string     `json:"sort_order"` // "asc", "desc"
}

// ===== REPOSITORY INTERFACES =====

// QuestionRepository interface for question bank operations
type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id string) (*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id string) error

	// Bulk operations
	CreateBatch(ctx context.Context, questions []*models.Question) error
	GetByIDs(ctx context.Context, ids []string) ([]*models.Question, error)

	// Query operations
	List(ctx context.Context, filters QuestionFilters) ([]*models.Question, int64, error)
	GetRandom(ctx context.Context, filters RandomQuestionFilters) ([]*models.Question, error)
	Count(ctx context.Context) (int64, error)

	// Aggregations
	GetFormatCounts(ctx context.Context) (map[models.QuestionFormat]int, error)
	GetCategories(ctx context.Context) ([]string, error)
}

// ResultRepository interface for persisted quiz results
type ResultRepository interface {
	Create(ctx context.Context, record *models.QuizResultRecord) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.QuizResultRecord, error)
	List(ctx context.Context, filters ResultFilters) ([]*models.QuizResultRecord, int64, error)
	GetStats(ctx context.Context) (*ResultStats, error)
}

// TopicRepository interface for study content
type TopicRepository interface {
	Create(ctx context.Context, record *models.TopicRecord) error
	GetByID(ctx context.Context, id string) (*models.TopicRecord, error)
	List(ctx context.Context) ([]*models.TopicRecord, error)
}

// Repository aggregates access to all stores behind one handle.
type Repository interface {
	Question() QuestionRepository
	Result() ResultRepository
	Topic() TopicRepository
}

// ===== SHARED STATISTICS STRUCTS =====

type ResultStats struct {
	TotalQuizzes      int     `json:"total_quizzes"`
	AveragePercentage float64 `json:"average_percentage"`
	BestPercentage    int     `json:"best_percentage"`
	AverageTimeTaken  int     `json:"average_time_taken"`
	TotalTimeTaken    int     `json:"total_time_taken"`
}

// IsNotFoundError reports whether err means the record does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
