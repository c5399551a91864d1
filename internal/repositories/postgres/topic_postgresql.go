package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/studyfeed/quiz-service/internal/models"
	"github.com/studyfeed/quiz-service/internal/repositories"
)

type TopicPostgreSQL struct {
	db *gorm.DB
}

func NewTopicPostgreSQL(db *gorm.DB) repositories.TopicRepository {
	return &TopicPostgreSQL{db: db}
}

func (t TopicPostgreSQL) Create(ctx context.Context, record *models.TopicRecord) error {
	return t.db.WithContext(ctx).Create(record).Error
}

func (t TopicPostgreSQL) GetByID(ctx context.Context, id string) (*models.TopicRecord, error) {
	var record models.TopicRecord
	if err := t.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (t TopicPostgreSQL) List(ctx context.Context) ([]*models.TopicRecord, error) {
	var records []*models.TopicRecord
	if err := t.db.WithContext(ctx).Order("title asc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
