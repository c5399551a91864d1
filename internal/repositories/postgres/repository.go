package postgres

import (
	"gorm.io/gorm"

	"github.com/studyfeed/quiz-service/internal/repositories"
)

type repository struct {
	question repositories.QuestionRepository
	result   repositories.ResultRepository
	topic    repositories.TopicRepository
}

// NewRepository builds the aggregate store over a single gorm connection.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		question: NewQuestionPostgreSQL(db),
		result:   NewResultPostgreSQL(db),
		topic:    NewTopicPostgreSQL(db),
	}
}

func (r *repository) Question() repositories.QuestionRepository {
	return r.question
}

func (r *repository) Result() repositories.ResultRepository {
	return r.result
}

func (r *repository) Topic() repositories.TopicRepository {
	return r.topic
}
