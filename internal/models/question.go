package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionFormat string

const (
	MultipleChoiceSingle QuestionFormat = "MULTIPLE_CHOICE_SINGLE"
	TrueOrFalse          QuestionFormat = "TRUE_OR_FALSE"
	FillInTheBlank       QuestionFormat = "FILL_IN_THE_BLANK"
	TypeAnswer           QuestionFormat = "TYPE_ANSWER"
	MultipleChoiceMulti  QuestionFormat = "MULTIPLE_CHOICE_MULTI"
	MatchTheFollowing    QuestionFormat = "MATCH_THE_FOLLOWING"
	TapToReveal          QuestionFormat = "TAP_TO_REVEAL"
	OrderItems           QuestionFormat = "ORDER_ITEMS"
)

// AllQuestionFormats lists every supported format. Evaluation dispatch and
// validation both range over this set; adding a format means extending both.
var AllQuestionFormats = []QuestionFormat{
	MultipleChoiceSingle,
	TrueOrFalse,
	FillInTheBlank,
	TypeAnswer,
	MultipleChoiceMulti,
	MatchTheFollowing,
	TapToReveal,
	OrderItems,
}

func (f QuestionFormat) Valid() bool {
	for _, known := range AllQuestionFormats {
		if f == known {
			return true
		}
	}
	return false
}

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

// DefaultPoints is awarded for a question that does not declare points.
const DefaultPoints = 1

// Question is the persisted form of a quiz question. The format-specific
// payload lives in Content as JSON and is decoded on demand into one of the
// typed content structs below.
type Question struct {
	ID          string           `json:"id" gorm:"primaryKey;size:64" validate:"required,max=64"`
	Format      QuestionFormat   `json:"format" gorm:"not null;index" validate:"required,question_format"`
	Text        string           `json:"question" gorm:"not null;type:text" validate:"required,min=1"`
	Category    *string          `json:"category,omitempty" gorm:"size:100;index" validate:"omitempty,max=100"`
	Difficulty  *DifficultyLevel `json:"difficulty,omitempty" gorm:"size:10" validate:"omitempty,difficulty_level"`
	Points      int              `json:"points" gorm:"default:1" validate:"min=1,max=100"`
	Explanation *string          `json:"explanation,omitempty" gorm:"type:text" validate:"omitempty,max=2000"`
	Content     datatypes.JSON   `json:"content" gorm:"type:jsonb;not null" validate:"required"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Question) TableName() string {
	return "questions"
}

// MaxPoints returns the points a fully correct answer earns.
func (q *Question) MaxPoints() int {
	if q.Points <= 0 {
		return DefaultPoints
	}
	return q.Points
}

// ===== FORMAT-SPECIFIC CONTENT =====

type MultipleChoiceSingleContent struct {
	Options            []string `json:"options"` // exactly 4, display order
	CorrectAnswerIndex int      `json:"correct_answer_index"`
}

type TrueOrFalseContent struct {
	CorrectAnswer bool `json:"correct_answer"`
}

type FillInTheBlankContent struct {
	QuestionWithBlank string   `json:"question_with_blank"`
	CorrectAnswer     string   `json:"correct_answer"`
	AcceptableAnswers []string `json:"acceptable_answers,omitempty"`
	CaseSensitive     bool     `json:"case_sensitive,omitempty"`
}

type TypeAnswerContent struct {
	CorrectAnswer     string   `json:"correct_answer"`
	AcceptableAnswers []string `json:"acceptable_answers,omitempty"`
	CaseSensitive     bool     `json:"case_sensitive,omitempty"`
}

type MultipleChoiceMultiContent struct {
	Options              []string `json:"options"`
	CorrectAnswerIndices []int    `json:"correct_answer_indices"`
}

type MatchPair struct {
	ID    string `json:"id"`
	Left  string `json:"left"`
	Right string `json:"right"`
}

// MatchTheFollowingContent holds the match pairs. The canonical pairing is
// identity on the shared id: left item X belongs with right item X.
type MatchTheFollowingContent struct {
	Pairs []MatchPair `json:"pairs"`
}

type TapToRevealContent struct {
	Answer string `json:"answer"`
}

type OrderItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type OrderItemsContent struct {
	Items        []OrderItem `json:"items"`
	Distractors  []OrderItem `json:"distractors,omitempty"`
	CorrectOrder []string    `json:"correct_order"`
}

// ===== CONTENT DECODING =====

// DecodeContent unmarshals the question's JSON content into the typed
// content struct for its format. dest must be a pointer to the matching
// *Content type.
func (q *Question) DecodeContent(dest interface{}) error {
	if err := json.Unmarshal(q.Content, dest); err != nil {
		return fmt.Errorf("invalid %s content for question %s: %w", q.Format, q.ID, err)
	}
	return nil
}

// SetContent marshals a typed content struct into the JSON column.
func (q *Question) SetContent(content interface{}) error {
	data, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal question content: %w", err)
	}
	q.Content = data
	return nil
}
