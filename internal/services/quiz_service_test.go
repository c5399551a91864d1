package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/studyfeed/quiz-service/internal/cache"
	"github.com/studyfeed/quiz-service/internal/events"
	"github.com/studyfeed/quiz-service/internal/models"
	"github.com/studyfeed/quiz-service/internal/repositories"
	"github.com/studyfeed/quiz-service/internal/validator"
)

// MockQuestionRepository is a mock implementation of QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id string) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) Update(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuestionRepository) CreateBatch(ctx context.Context, questions []*models.Question) error {
	args := m.Called(ctx, questions)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Question, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Question), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuestionRepository) GetRandom(ctx context.Context, filters repositories.RandomQuestionFilters) ([]*models.Question, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionRepository) GetFormatCounts(ctx context.Context) (map[models.QuestionFormat]int, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[models.QuestionFormat]int), args.Error(1)
}

func (m *MockQuestionRepository) GetCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

// MockResultRepository is a mock implementation of ResultRepository
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) Create(ctx context.Context, record *models.QuizResultRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockResultRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.QuizResultRecord, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizResultRecord), args.Error(1)
}

func (m *MockResultRepository) List(ctx context.Context, filters repositories.ResultFilters) ([]*models.QuizResultRecord, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.QuizResultRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockResultRepository) GetStats(ctx context.Context) (*repositories.ResultStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(*repositories.ResultStats), args.Error(1)
}

// MockTopicRepository is a mock implementation of TopicRepository
type MockTopicRepository struct {
	mock.Mock
}

func (m *MockTopicRepository) Create(ctx context.Context, record *models.TopicRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockTopicRepository) GetByID(ctx context.Context, id string) (*models.TopicRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TopicRecord), args.Error(1)
}

func (m *MockTopicRepository) List(ctx context.Context) ([]*models.TopicRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.TopicRecord), args.Error(1)
}

type mockRepository struct {
	question *MockQuestionRepository
	result   *MockResultRepository
	topic    *MockTopicRepository
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		question: new(MockQuestionRepository),
		result:   new(MockResultRepository),
		topic:    new(MockTopicRepository),
	}
}

func (r *mockRepository) Question() repositories.QuestionRepository { return r.question }
func (r *mockRepository) Result() repositories.ResultRepository     { return r.result }
func (r *mockRepository) Topic() repositories.TopicRepository       { return r.topic }

// ===== TEST HELPERS =====

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func trueOrFalseQuestion(t *testing.T, id string, points int, answer bool) *models.Question {
	t.Helper()
	q := &models.Question{
		ID:     id,
		Format: models.TrueOrFalse,
		Text:   "Is the sky blue?",
		Points: points,
	}
	require.NoError(t, q.SetContent(models.TrueOrFalseContent{CorrectAnswer: answer}))
	return q
}

type quizServiceFixture struct {
	service   QuizService
	repo      *mockRepository
	publisher *events.MockEventPublisher
}

func newQuizServiceFixture() *quizServiceFixture {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	sessions := cache.NewSessionStore(cache.NewMemoryCache())
	service := NewQuizService(repo, sessions, publisher, testLogger(), validator.New())
	return &quizServiceFixture{service: service, repo: repo, publisher: publisher}
}

func (f *quizServiceFixture) startSession(t *testing.T, questions ...*models.Question) *models.QuizSession {
	t.Helper()
	f.repo.question.On("GetRandom", mock.Anything, mock.Anything).Return(questions, nil).Once()
	session, err := f.service.Start(context.Background(), &StartQuizRequest{QuestionCount: len(questions)})
	require.NoError(t, err)
	return session
}

func boolPtrSvc(b bool) *bool { return &b }

// ===== TESTS =====

func TestQuizServiceStart(t *testing.T) {
	f := newQuizServiceFixture()

	q1 := trueOrFalseQuestion(t, "q1", 1, true)
	q2 := trueOrFalseQuestion(t, "q2", 1, false)

	session := f.startSession(t, q1, q2)

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, models.SessionInProgress, session.Status)
	assert.Equal(t, 0, session.CurrentQuestionIndex)
	assert.Len(t, session.Questions, 2)
	assert.Empty(t, session.Answers)
	assert.Greater(t, session.StartTime, int64(0))

	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventQuizStarted, published[0].Type)
}

func TestQuizServiceStartEmptyBank(t *testing.T) {
	f := newQuizServiceFixture()
	f.repo.question.On("GetRandom", mock.Anything, mock.Anything).Return([]*models.Question{}, nil).Once()

	_, err := f.service.Start(context.Background(), &StartQuizRequest{})
	assert.ErrorIs(t, err, ErrQuestionBankEmpty)
}

func TestQuizServiceSubmitAnswer(t *testing.T) {
	f := newQuizServiceFixture()
	session := f.startSession(t, trueOrFalseQuestion(t, "q1", 1, true))
	ctx := context.Background()

	updated, err := f.service.SubmitAnswer(ctx, session.ID, &SubmitAnswerRequest{
		QuestionID: "q1",
		Answer:     models.UserAnswer{Format: models.TrueOrFalse, SelectedAnswer: boolPtrSvc(false)},
	})
	require.NoError(t, err)
	assert.False(t, *updated.Answers["q1"].SelectedAnswer)

	// Re-submitting replaces the stored answer.
	updated, err = f.service.SubmitAnswer(ctx, session.ID, &SubmitAnswerRequest{
		QuestionID: "q1",
		Answer:     models.UserAnswer{Format: models.TrueOrFalse, SelectedAnswer: boolPtrSvc(true)},
	})
	require.NoError(t, err)
	assert.True(t, *updated.Answers["q1"].SelectedAnswer)
	assert.Len(t, updated.Answers, 1)
}

func TestQuizServiceSubmitAnswerUnknownQuestion(t *testing.T) {
	f := newQuizServiceFixture()
	session := f.startSession(t, trueOrFalseQuestion(t, "q1", 1, true))

	_, err := f.service.SubmitAnswer(context.Background(), session.ID, &SubmitAnswerRequest{
		QuestionID: "other",
		Answer:     models.UserAnswer{Format: models.TrueOrFalse, SelectedAnswer: boolPtrSvc(true)},
	})
	assert.ErrorIs(t, err, ErrQuestionNotInSession)
}

func TestQuizServiceSubmitAnswerFormatMismatch(t *testing.T) {
	f := newQuizServiceFixture()
	session := f.startSession(t, trueOrFalseQuestion(t, "q1", 1, true))

	_, err := f.service.SubmitAnswer(context.Background(), session.ID, &SubmitAnswerRequest{
		QuestionID: "q1",
		Answer:     models.UserAnswer{Format: models.TypeAnswer, EnteredText: "blue"},
	})
	assert.ErrorIs(t, err, ErrAnswerFormatMismatch)
}

func TestQuizServiceSessionNotFound(t *testing.T) {
	f := newQuizServiceFixture()

	_, err := f.service.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestQuizServiceNavigation(t *testing.T) {
	f := newQuizServiceFixture()
	session := f.startSession(t,
		trueOrFalseQuestion(t, "q1", 1, true),
		trueOrFalseQuestion(t, "q2", 1, true),
		trueOrFalseQuestion(t, "q3", 1, true))
	ctx := context.Background()

	// Previous at the first question stays put.
	updated, err := f.service.PreviousQuestion(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.CurrentQuestionIndex)

	updated, err = f.service.NextQuestion(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.CurrentQuestionIndex)

	updated, err = f.service.NextQuestion(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.CurrentQuestionIndex)

	// Next at the last question stays put.
	updated, err = f.service.NextQuestion(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.CurrentQuestionIndex)

	updated, err = f.service.PreviousQuestion(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.CurrentQuestionIndex)
}

func TestQuizServiceFinish(t *testing.T) {
	f := newQuizServiceFixture()
	session := f.startSession(t,
		trueOrFalseQuestion(t, "q1", 1, true),
		trueOrFalseQuestion(t, "q2", 1, true))
	ctx := context.Background()

	_, err := f.service.SubmitAnswer(ctx, session.ID, &SubmitAnswerRequest{
		QuestionID: "q1",
		Answer:     models.UserAnswer{Format: models.TrueOrFalse, SelectedAnswer: boolPtrSvc(true)},
	})
	require.NoError(t, err)

	f.repo.result.On("Create", mock.Anything, mock.AnythingOfType("*models.QuizResultRecord")).Return(nil).Once()

	result, err := f.service.Finish(ctx, session.ID, &FinishQuizRequest{})
	require.NoError(t, err)

	assert.Equal(t, session.ID, result.SessionID)
	assert.Equal(t, 2, result.TotalQuestions)
	assert.Equal(t, 1, result.CorrectAnswers)
	assert.Equal(t, 1, result.IncorrectAnswers)
	assert.Equal(t, 50, result.Percentage)
	// The unanswered question still shows up in the breakdown.
	assert.Len(t, result.QuestionResults, 2)

	f.repo.result.AssertExpectations(t)

	// quiz.started followed by quiz.completed.
	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 2)
	assert.Equal(t, events.EventQuizCompleted, published[1].Type)

	stored, err := f.service.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, stored.Status)
	assert.Len(t, stored.Results, 2)
}

func TestQuizServiceFinishTwice(t *testing.T) {
	f := newQuizServiceFixture()
	session := f.startSession(t, trueOrFalseQuestion(t, "q1", 1, true))
	ctx := context.Background()

	f.repo.result.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := f.service.Finish(ctx, session.ID, &FinishQuizRequest{})
	require.NoError(t, err)

	_, err = f.service.Finish(ctx, session.ID, &FinishQuizRequest{})
	assert.ErrorIs(t, err, ErrSessionAlreadyCompleted)
}

func TestQuizServiceSubmitAfterFinish(t *testing.T) {
	f := newQuizServiceFixture()
	session := f.startSession(t, trueOrFalseQuestion(t, "q1", 1, true))
	ctx := context.Background()

	f.repo.result.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	_, err := f.service.Finish(ctx, session.ID, &FinishQuizRequest{})
	require.NoError(t, err)

	_, err = f.service.SubmitAnswer(ctx, session.ID, &SubmitAnswerRequest{
		QuestionID: "q1",
		Answer:     models.UserAnswer{Format: models.TrueOrFalse, SelectedAnswer: boolPtrSvc(true)},
	})
	assert.ErrorIs(t, err, ErrSessionAlreadyCompleted)
}

func TestQuizServiceReset(t *testing.T) {
	f := newQuizServiceFixture()
	session := f.startSession(t, trueOrFalseQuestion(t, "q1", 1, true))
	ctx := context.Background()

	require.NoError(t, f.service.Reset(ctx, session.ID))

	_, err := f.service.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 2)
	assert.Equal(t, events.EventQuizReset, published[1].Type)
}

func TestQuizServiceGetResultNotFound(t *testing.T) {
	f := newQuizServiceFixture()
	f.repo.result.On("GetBySessionID", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound).Once()

	_, err := f.service.GetResult(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrResultNotFound)
}

func TestQuizServiceStartShortBank(t *testing.T) {
	f := newQuizServiceFixture()

	// A bank smaller than the requested count yields all available questions
	available := []*models.Question{
		trueOrFalseQuestion(t, "q1", 1, true),
		trueOrFalseQuestion(t, "q2", 1, false),
	}
	f.repo.question.On("GetRandom", mock.Anything, mock.MatchedBy(func(filters repositories.RandomQuestionFilters) bool {
		return filters.Count == 5
	})).Return(available, nil).Once()

	session, err := f.service.Start(context.Background(), &StartQuizRequest{QuestionCount: 5})
	require.NoError(t, err)

	assert.Len(t, session.Questions, 2)
	f.repo.question.AssertExpectations(t)
}

func TestQuizServiceFinishRetriesAfterPersistFailure(t *testing.T) {
	f := newQuizServiceFixture()
	ctx := context.Background()

	q := trueOrFalseQuestion(t, "q1", 1, true)
	session := f.startSession(t, q)

	_, err := f.service.SubmitAnswer(ctx, session.ID, &SubmitAnswerRequest{
		QuestionID: "q1",
		Answer:     models.UserAnswer{Format: models.TrueOrFalse, SelectedAnswer: boolPtrSvc(true)},
	})
	require.NoError(t, err)

	f.repo.result.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused")).Once()

	_, err = f.service.Finish(ctx, session.ID, &FinishQuizRequest{})
	require.Error(t, err)

	// The session stays in progress when the result could not be persisted
	stored, err := f.service.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionInProgress, stored.Status)

	// Retrying completes normally once the store recovers
	f.repo.result.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	result, err := f.service.Finish(ctx, session.ID, &FinishQuizRequest{})
	require.NoError(t, err)
	assert.Equal(t, 100, result.Percentage)

	stored, err = f.service.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, stored.Status)
}
