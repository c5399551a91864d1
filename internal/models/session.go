package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type SessionStatus string

const (
	SessionNotStarted SessionStatus = "not_started"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// QuizSession is one complete attempt at a quiz, from question selection
// through final scoring. The session owns its answers map and results list;
// QuizResult is derived from it and never written back.
//
// StartTime and EndTime are millisecond epoch timestamps supplied by the
// caller's clock; the engine only ever computes their difference.
type QuizSession struct {
	ID                   string                `json:"id"`
	Questions            []Question            `json:"questions"`
	CurrentQuestionIndex int                   `json:"current_question_index"`
	Answers              map[string]UserAnswer `json:"answers"`
	Results              []QuestionResult      `json:"results"`
	Status               SessionStatus         `json:"status"`
	StartTime            int64                 `json:"start_time,omitempty"`
	EndTime              int64                 `json:"end_time,omitempty"`
}

// QuestionByID returns the session question with the given id, or nil when
// the id is not part of this session.
func (s *QuizSession) QuestionByID(id string) *Question {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i]
		}
	}
	return nil
}

// QuestionResult records the graded outcome for a single question. It is
// created once at evaluation time and never mutated.
type QuestionResult struct {
	QuestionID   string     `json:"question_id"`
	IsCorrect    bool       `json:"is_correct"`
	PointsEarned int        `json:"points_earned"`
	UserAnswer   UserAnswer `json:"user_answer"`
}

// QuizResult is the aggregate outcome of a completed session. It is a
// read-only snapshot: recomputing it from the same session yields an
// identical value.
type QuizResult struct {
	SessionID        string           `json:"session_id"`
	TotalQuestions   int              `json:"total_questions"`
	CorrectAnswers   int              `json:"correct_answers"`
	IncorrectAnswers int              `json:"incorrect_answers"`
	TotalPoints      int              `json:"total_points"`
	EarnedPoints     int              `json:"earned_points"`
	Percentage       int              `json:"percentage"`
	TimeTaken        int              `json:"time_taken"` // seconds
	QuestionResults  []QuestionResult `json:"question_results"`
	CompletedAt      time.Time        `json:"completed_at"`
}

// QuizResultRecord is the persisted form of a QuizResult. The per-question
// breakdown is stored as JSONB rather than normalized rows; results are only
// ever read back whole.
type QuizResultRecord struct {
	SessionID        string         `json:"session_id" gorm:"primaryKey;size:64"`
	TotalQuestions   int            `json:"total_questions" gorm:"not null"`
	CorrectAnswers   int            `json:"correct_answers" gorm:"not null"`
	IncorrectAnswers int            `json:"incorrect_answers" gorm:"not null"`
	TotalPoints      int            `json:"total_points" gorm:"not null"`
	EarnedPoints     int            `json:"earned_points" gorm:"not null"`
	Percentage       int            `json:"percentage" gorm:"not null"`
	TimeTaken        int            `json:"time_taken" gorm:"not null"`
	Breakdown        datatypes.JSON `json:"breakdown" gorm:"type:jsonb"`
	CompletedAt      time.Time      `json:"completed_at" gorm:"index"`
}

func (QuizResultRecord) TableName() string {
	return "quiz_results"
}

// NewQuizResultRecord collapses a QuizResult into its persisted form.
func NewQuizResultRecord(result *QuizResult) (*QuizResultRecord, error) {
	breakdown, err := json.Marshal(result.QuestionResults)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result breakdown: %w", err)
	}
	return &QuizResultRecord{
		SessionID:        result.SessionID,
		TotalQuestions:   result.TotalQuestions,
		CorrectAnswers:   result.CorrectAnswers,
		IncorrectAnswers: result.IncorrectAnswers,
		TotalPoints:      result.TotalPoints,
		EarnedPoints:     result.EarnedPoints,
		Percentage:       result.Percentage,
		TimeTaken:        result.TimeTaken,
		Breakdown:        breakdown,
		CompletedAt:      result.CompletedAt,
	}, nil
}

// ToResult expands the record back into a QuizResult.
func (r *QuizResultRecord) ToResult() (*QuizResult, error) {
	result := &QuizResult{
		SessionID:        r.SessionID,
		TotalQuestions:   r.TotalQuestions,
		CorrectAnswers:   r.CorrectAnswers,
		IncorrectAnswers: r.IncorrectAnswers,
		TotalPoints:      r.TotalPoints,
		EarnedPoints:     r.EarnedPoints,
		Percentage:       r.Percentage,
		TimeTaken:        r.TimeTaken,
		CompletedAt:      r.CompletedAt,
	}
	if len(r.Breakdown) > 0 {
		if err := json.Unmarshal(r.Breakdown, &result.QuestionResults); err != nil {
			return nil, fmt.Errorf("failed to decode result breakdown: %w", err)
		}
	}
	return result, nil
}
