package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/studyfeed/quiz-service/internal/cache"
	"github.com/studyfeed/quiz-service/internal/models"
	"github.com/studyfeed/quiz-service/internal/validator"
)

type studyServiceFixture struct {
	service StudyService
	repo    *mockRepository
}

func newStudyServiceFixture() *studyServiceFixture {
	repo := newMockRepository()
	sessions := cache.NewSessionStore(cache.NewMemoryCache())
	service := NewStudyService(repo, sessions, testLogger(), validator.New())
	return &studyServiceFixture{service: service, repo: repo}
}

func sampleTopic(t *testing.T, id string) *models.TopicRecord {
	t.Helper()
	record, err := models.NewTopicRecord(&models.Topic{
		ID:    id,
		Title: "Cell Biology",
		Subtopics: []models.SubTopic{
			{
				ID:    "sub-1",
				Title: "The Cell Membrane",
				Pages: []models.StudyPage{
					{ID: "page-1", Title: "Structure", Content: "Lipid bilayer basics."},
					{ID: "page-2", Title: "Transport", Content: "Passive and active transport."},
				},
			},
		},
	})
	require.NoError(t, err)
	return record
}

func TestStudyServiceListTopics(t *testing.T) {
	f := newStudyServiceFixture()

	records := []*models.TopicRecord{sampleTopic(t, "topic-1"), sampleTopic(t, "topic-2")}
	f.repo.topic.On("List", mock.Anything).Return(records, nil).Once()

	topics, err := f.service.ListTopics(context.Background())
	require.NoError(t, err)

	require.Len(t, topics, 2)
	assert.Equal(t, "topic-1", topics[0].ID)
	assert.Len(t, topics[0].Subtopics, 1)
	assert.Len(t, topics[0].Subtopics[0].Pages, 2)
	f.repo.topic.AssertExpectations(t)
}

func TestStudyServiceGetTopic(t *testing.T) {
	f := newStudyServiceFixture()

	f.repo.topic.On("GetByID", mock.Anything, "topic-1").Return(sampleTopic(t, "topic-1"), nil).Once()

	topic, err := f.service.GetTopic(context.Background(), "topic-1")
	require.NoError(t, err)

	assert.Equal(t, "Cell Biology", topic.Title)
	assert.Equal(t, "sub-1", topic.Subtopics[0].ID)
}

func TestStudyServiceGetTopicNotFound(t *testing.T) {
	f := newStudyServiceFixture()

	f.repo.topic.On("GetByID", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound).Once()

	_, err := f.service.GetTopic(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTopicNotFound)
}

func TestStudyServiceCreateTopicRequiresIDAndTitle(t *testing.T) {
	f := newStudyServiceFixture()

	err := f.service.CreateTopic(context.Background(), &models.Topic{Title: "No ID"})
	assert.Error(t, err)

	err = f.service.CreateTopic(context.Background(), &models.Topic{ID: "no-title"})
	assert.Error(t, err)
}

func TestStudyServiceProgressDefaultsEmpty(t *testing.T) {
	f := newStudyServiceFixture()

	progress, err := f.service.GetProgress(context.Background())
	require.NoError(t, err)
	assert.Empty(t, progress)
}

func TestStudyServiceSaveProgress(t *testing.T) {
	f := newStudyServiceFixture()
	ctx := context.Background()

	progress, err := f.service.SaveProgress(ctx, &SaveProgressRequest{SubtopicID: "sub-1", PageIndex: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, progress["sub-1"])

	// Progress from separate subtopics is tracked independently
	progress, err = f.service.SaveProgress(ctx, &SaveProgressRequest{SubtopicID: "sub-2", PageIndex: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, progress["sub-1"])
	assert.Equal(t, 1, progress["sub-2"])
}

func TestStudyServiceSaveProgressNeverMovesBackwards(t *testing.T) {
	f := newStudyServiceFixture()
	ctx := context.Background()

	_, err := f.service.SaveProgress(ctx, &SaveProgressRequest{SubtopicID: "sub-1", PageIndex: 5})
	require.NoError(t, err)

	// Re-reading an earlier page keeps the furthest position
	progress, err := f.service.SaveProgress(ctx, &SaveProgressRequest{SubtopicID: "sub-1", PageIndex: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, progress["sub-1"])

	progress, err = f.service.SaveProgress(ctx, &SaveProgressRequest{SubtopicID: "sub-1", PageIndex: 6})
	require.NoError(t, err)
	assert.Equal(t, 6, progress["sub-1"])
}

func TestStudyServiceSaveProgressValidation(t *testing.T) {
	f := newStudyServiceFixture()

	_, err := f.service.SaveProgress(context.Background(), &SaveProgressRequest{SubtopicID: "", PageIndex: 1})
	assert.Error(t, err)

	_, err = f.service.SaveProgress(context.Background(), &SaveProgressRequest{SubtopicID: "sub-1", PageIndex: -1})
	assert.Error(t, err)
}
