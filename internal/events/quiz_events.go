package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/studyfeed/quiz-service/internal/models"
)

// EventType represents different types of quiz events
type EventType string

const (
	// Session events
	EventQuizStarted   EventType = "quiz.started"
	EventQuizCompleted EventType = "quiz.completed"
	EventQuizReset     EventType = "quiz.reset"
)

// QuizEvent is the base event structure for all quiz events
type QuizEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Session event payloads

type QuizStartedEvent struct {
	SessionID     string    `json:"session_id"`
	QuestionCount int       `json:"question_count"`
	StartedAt     time.Time `json:"started_at"`
}

type QuizCompletedEvent struct {
	SessionID      string    `json:"session_id"`
	TotalQuestions int       `json:"total_questions"`
	CorrectAnswers int       `json:"correct_answers"`
	EarnedPoints   int       `json:"earned_points"`
	TotalPoints    int       `json:"total_points"`
	Percentage     int       `json:"percentage"`
	TimeTaken      int       `json:"time_taken"` // seconds
	CompletedAt    time.Time `json:"completed_at"`
}

type QuizResetEvent struct {
	SessionID string    `json:"session_id"`
	ResetAt   time.Time `json:"reset_at"`
}

// Event factory functions

func NewQuizStartedEvent(sessionID string, questionCount int, startedAt time.Time) *QuizEvent {
	return &QuizEvent{
		ID:        GenerateEventID(),
		Type:      EventQuizStarted,
		Timestamp: time.Now(),
		Source:    "quiz-service",
		Version:   "1.0",
		Data: QuizStartedEvent{
			SessionID:     sessionID,
			QuestionCount: questionCount,
			StartedAt:     startedAt,
		},
	}
}

func NewQuizCompletedEvent(result *models.QuizResult) *QuizEvent {
	return &QuizEvent{
		ID:        GenerateEventID(),
		Type:      EventQuizCompleted,
		Timestamp: time.Now(),
		Source:    "quiz-service",
		Version:   "1.0",
		Data: QuizCompletedEvent{
			SessionID:      result.SessionID,
			TotalQuestions: result.TotalQuestions,
			CorrectAnswers: result.CorrectAnswers,
			EarnedPoints:   result.EarnedPoints,
			TotalPoints:    result.TotalPoints,
			Percentage:     result.Percentage,
			TimeTaken:      result.TimeTaken,
			CompletedAt:    result.CompletedAt,
		},
	}
}

func NewQuizResetEvent(sessionID string) *QuizEvent {
	return &QuizEvent{
		ID:        GenerateEventID(),
		Type:      EventQuizReset,
		Timestamp: time.Now(),
		Source:    "quiz-service",
		Version:   "1.0",
		Data: QuizResetEvent{
			SessionID: sessionID,
			ResetAt:   time.Now(),
		},
	}
}

// GenerateEventID returns a unique id for a new event.
func GenerateEventID() string {
	return uuid.NewString()
}
