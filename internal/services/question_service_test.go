package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/studyfeed/quiz-service/internal/models"
	"github.com/studyfeed/quiz-service/internal/validator"
)

func newQuestionServiceFixture() (QuestionService, *mockRepository) {
	repo := newMockRepository()
	service := NewQuestionService(repo, testLogger(), validator.New())
	return service, repo
}

func mcsRequest(id string) *CreateQuestionRequest {
	return &CreateQuestionRequest{
		ID:     id,
		Format: models.MultipleChoiceSingle,
		Text:   "Which organelle produces ATP?",
		Content: models.MultipleChoiceSingleContent{
			Options:            []string{"Nucleus", "Mitochondrion", "Ribosome", "Golgi apparatus"},
			CorrectAnswerIndex: 1,
		},
	}
}

func TestQuestionServiceCreate(t *testing.T) {
	service, repo := newQuestionServiceFixture()

	repo.question.On("Create", mock.Anything, mock.MatchedBy(func(q *models.Question) bool {
		return q.ID == "q1" && q.Format == models.MultipleChoiceSingle
	})).Return(nil).Once()

	question, err := service.Create(context.Background(), mcsRequest("q1"))
	require.NoError(t, err)

	assert.Equal(t, "q1", question.ID)
	assert.Equal(t, models.DefaultPoints, question.Points)

	var content models.MultipleChoiceSingleContent
	require.NoError(t, question.DecodeContent(&content))
	assert.Equal(t, 1, content.CorrectAnswerIndex)
	repo.question.AssertExpectations(t)
}

func TestQuestionServiceCreateGeneratesID(t *testing.T) {
	service, repo := newQuestionServiceFixture()

	repo.question.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	req := mcsRequest("")
	question, err := service.Create(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, question.ID)
}

func TestQuestionServiceCreateRejectsInvalidContent(t *testing.T) {
	service, _ := newQuestionServiceFixture()

	req := mcsRequest("q1")
	req.Content = models.MultipleChoiceSingleContent{
		Options:            []string{"Only", "Two"},
		CorrectAnswerIndex: 0,
	}

	_, err := service.Create(context.Background(), req)
	assert.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestQuestionServiceCreateRejectsUnknownFormat(t *testing.T) {
	service, _ := newQuestionServiceFixture()

	req := mcsRequest("q1")
	req.Format = "ESSAY"

	_, err := service.Create(context.Background(), req)
	assert.Error(t, err)
}

func TestQuestionServiceCreateBatch(t *testing.T) {
	service, repo := newQuestionServiceFixture()

	repo.question.On("CreateBatch", mock.Anything, mock.Anything).Return(nil).Once()

	questions, err := service.CreateBatch(context.Background(), []*CreateQuestionRequest{
		mcsRequest("q1"),
		mcsRequest("q2"),
	})
	require.NoError(t, err)
	assert.Len(t, questions, 2)
	repo.question.AssertExpectations(t)
}

func TestQuestionServiceCreateBatchRejectsDuplicateIDs(t *testing.T) {
	service, _ := newQuestionServiceFixture()

	_, err := service.CreateBatch(context.Background(), []*CreateQuestionRequest{
		mcsRequest("q1"),
		mcsRequest("q1"),
	})
	assert.Error(t, err)
}

func TestQuestionServiceCreateBatchRejectsEmpty(t *testing.T) {
	service, _ := newQuestionServiceFixture()

	_, err := service.CreateBatch(context.Background(), nil)
	assert.Error(t, err)
}

func TestQuestionServiceGetByIDNotFound(t *testing.T) {
	service, repo := newQuestionServiceFixture()

	repo.question.On("GetByID", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound).Once()

	_, err := service.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestQuestionServiceDeleteChecksExistence(t *testing.T) {
	service, repo := newQuestionServiceFixture()

	repo.question.On("GetByID", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound).Once()

	err := service.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrQuestionNotFound)
	repo.question.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
