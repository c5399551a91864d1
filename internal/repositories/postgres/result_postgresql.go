package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/studyfeed/quiz-service/internal/models"
	"github.com/studyfeed/quiz-service/internal/repositories"
)

type ResultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{db: db}
}

func (r ResultPostgreSQL) Create(ctx context.Context, record *models.QuizResultRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r ResultPostgreSQL) GetBySessionID(ctx context.Context, sessionID string) (*models.QuizResultRecord, error) {
	var record models.QuizResultRecord
	if err := r.db.WithContext(ctx).First(&record, "session_id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r ResultPostgreSQL) List(ctx context.Context, filters repositories.ResultFilters) ([]*models.QuizResultRecord, int64, error) {
	var records []*models.QuizResultRecord
	var total int64

	// apply filter first
	query := r.db.WithContext(ctx).Model(&models.QuizResultRecord{})
	if filters.DateFrom != nil {
		query = query.Where("completed_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("completed_at <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	sortBy := filters.SortBy
	if sortBy != "completed_at" && sortBy != "percentage" {
		sortBy = "completed_at"
	}
	sortOrder := filters.SortOrder
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}
	query = query.Order(sortBy + " " + sortOrder)

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r ResultPostgreSQL) GetStats(ctx context.Context) (*repositories.ResultStats, error) {
	var row struct {
		TotalQuizzes      int
		AveragePercentage float64
		BestPercentage    int
		AverageTimeTaken  float64
		TotalTimeTaken    int
	}

	err := r.db.WithContext(ctx).
		Model(&models.QuizResultRecord{}).
		Select(`COUNT(*) as total_quizzes,
			COALESCE(AVG(percentage), 0) as average_percentage,
			COALESCE(MAX(percentage), 0) as best_percentage,
			COALESCE(AVG(time_taken), 0) as average_time_taken,
			COALESCE(SUM(time_taken), 0) as total_time_taken`).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &repositories.ResultStats{
		TotalQuizzes:      row.TotalQuizzes,
		AveragePercentage: row.AveragePercentage,
		BestPercentage:    row.BestPercentage,
		AverageTimeTaken:  int(row.AverageTimeTaken),
		TotalTimeTaken:    row.TotalTimeTaken,
	}, nil
}
