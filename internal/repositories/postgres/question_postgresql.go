package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/studyfeed/quiz-service/internal/models"
	"github.com/studyfeed/quiz-service/internal/repositories"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (q QuestionPostgreSQL) Create(ctx context.Context, question *models.Question) error {
	return q.db.WithContext(ctx).Create(question).Error
}

func (q QuestionPostgreSQL) GetByID(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).First(&question, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q QuestionPostgreSQL) Update(ctx context.Context, question *models.Question) error {
	return q.db.WithContext(ctx).Save(question).Error
}

func (q QuestionPostgreSQL) Delete(ctx context.Context, id string) error {
	return q.db.WithContext(ctx).Delete(&models.Question{}, "id = ?", id).Error
}

func (q QuestionPostgreSQL) CreateBatch(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return q.db.WithContext(ctx).CreateInBatches(questions, 100).Error
}

func (q QuestionPostgreSQL) GetByIDs(ctx context.Context, ids []string) ([]*models.Question, error) {
	var questions []*models.Question
	if len(ids) == 0 {
		return questions, nil
	}
	if err := q.db.WithContext(ctx).Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (q QuestionPostgreSQL) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	var questions []*models.Question
	var total int64

	// apply filter first
	query := q.db.WithContext(ctx).Model(&models.Question{})
	query = q.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = q.applyPaginationAndSort(query, filters)

	if err := query.Find(&questions).Error; err != nil {
		return nil, 0, err
	}

	return questions, total, nil
}

// GetRandom selects up to Count distinct questions matching the filters.
// Selection happens in the database so the whole bank never has to be loaded.
func (q QuestionPostgreSQL) GetRandom(ctx context.Context, filters repositories.RandomQuestionFilters) ([]*models.Question, error) {
	var questions []*models.Question

	query := q.db.WithContext(ctx).Model(&models.Question{})
	if filters.Format != nil {
		query = query.Where("format = ?", *filters.Format)
	}
	if filters.Difficulty != nil {
		query = query.Where("difficulty = ?", *filters.Difficulty)
	}
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if len(filters.ExcludeIDs) > 0 {
		query = query.Where("id NOT IN ?", filters.ExcludeIDs)
	}

	count := filters.Count
	if count <= 0 {
		count = 10
	}

	if err := query.Order("RANDOM()").Limit(count).Find(&questions).Error; err != nil {
		return nil, err
	}

	return questions, nil
}

func (q QuestionPostgreSQL) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := q.db.WithContext(ctx).Model(&models.Question{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (q QuestionPostgreSQL) GetFormatCounts(ctx context.Context) (map[models.QuestionFormat]int, error) {
	var rows []struct {
		Format models.QuestionFormat
		Count  int
	}

	if err := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Select("format, COUNT(*) as count").
		Group("format").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[models.QuestionFormat]int, len(rows))
	for _, row := range rows {
		counts[row.Format] = row.Count
	}
	return counts, nil
}

func (q QuestionPostgreSQL) GetCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Distinct("category").
		Where("category IS NOT NULL").
		Order("category").
		Pluck("category", &categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// ===== QUERY HELPERS =====

func (q QuestionPostgreSQL) applyFilters(query *gorm.DB, filters repositories.QuestionFilters) *gorm.DB {
	if filters.Format != nil {
		query = query.Where("format = ?", *filters.Format)
	}
	if filters.Difficulty != nil {
		query = query.Where("difficulty = ?", *filters.Difficulty)
	}
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	return query
}

func (q QuestionPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.QuestionFilters) *gorm.DB {
	sortBy := filters.SortBy
	switch sortBy {
	case "created_at", "format", "difficulty":
	default:
		sortBy = "created_at"
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
	return query
}
