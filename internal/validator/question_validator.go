package validator

import (
	"fmt"
	"strings"

	"github.com/studyfeed/quiz-service/internal/models"
)

// BlankMarker is the placeholder that fill-in-the-blank prompts must contain
// exactly once.
const BlankMarker = "_____"

// QuestionValidator handles question-specific validation
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates a complete question object
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	if question.ID == "" {
		return fmt.Errorf("question id is required")
	}

	if question.Text == "" {
		return fmt.Errorf("question text is required")
	}

	if question.Points < 0 || question.Points > 100 {
		return fmt.Errorf("question points must be between 0 and 100")
	}

	return v.ValidateContent(question)
}

// ValidateQuestionBatch validates a batch of questions and checks id
// uniqueness across the batch.
func (v *QuestionValidator) ValidateQuestionBatch(questions []*models.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("question batch cannot be empty")
	}

	seen := make(map[string]bool, len(questions))
	for i, question := range questions {
		if err := v.ValidateQuestion(question); err != nil {
			return fmt.Errorf("validation failed for question %d: %w", i+1, err)
		}
		if seen[question.ID] {
			return fmt.Errorf("duplicate question id: %s", question.ID)
		}
		seen[question.ID] = true
	}

	return nil
}

// ValidateContent validates the format-specific content payload.
func (v *QuestionValidator) ValidateContent(question *models.Question) error {
	if len(question.Content) == 0 {
		return fmt.Errorf("content cannot be empty")
	}

	switch question.Format {
	case models.MultipleChoiceSingle:
		return v.validateMultipleChoiceSingle(question)
	case models.TrueOrFalse:
		return v.validateTrueOrFalse(question)
	case models.FillInTheBlank:
		return v.validateFillInTheBlank(question)
	case models.TypeAnswer:
		return v.validateTypeAnswer(question)
	case models.MultipleChoiceMulti:
		return v.validateMultipleChoiceMulti(question)
	case models.MatchTheFollowing:
		return v.validateMatchTheFollowing(question)
	case models.TapToReveal:
		return v.validateTapToReveal(question)
	case models.OrderItems:
		return v.validateOrderItems(question)
	default:
		return fmt.Errorf("unsupported question format: %s", question.Format)
	}
}

// ===== PRIVATE VALIDATION METHODS =====

func (v *QuestionValidator) validateMultipleChoiceSingle(question *models.Question) error {
	var content models.MultipleChoiceSingleContent
	if err := question.DecodeContent(&content); err != nil {
		return err
	}

	if len(content.Options) != 4 {
		return fmt.Errorf("single-answer multiple choice questions must have exactly 4 options")
	}

	for i, option := range content.Options {
		if option == "" {
			return fmt.Errorf("option %d cannot be empty", i+1)
		}
	}

	if content.CorrectAnswerIndex < 0 || content.CorrectAnswerIndex >= len(content.Options) {
		return fmt.Errorf("correct answer index %d is out of range", content.CorrectAnswerIndex)
	}

	return nil
}

func (v *QuestionValidator) validateTrueOrFalse(question *models.Question) error {
	var content models.TrueOrFalseContent
	return question.DecodeContent(&content)
}

func (v *QuestionValidator) validateFillInTheBlank(question *models.Question) error {
	var content models.FillInTheBlankContent
	if err := question.DecodeContent(&content); err != nil {
		return err
	}

	if content.QuestionWithBlank == "" {
		return fmt.Errorf("question with blank is required")
	}

	if strings.Count(content.QuestionWithBlank, BlankMarker) != 1 {
		return fmt.Errorf("question must contain exactly one blank marker %q", BlankMarker)
	}

	if content.CorrectAnswer == "" {
		return fmt.Errorf("correct answer is required")
	}

	for i, alt := range content.AcceptableAnswers {
		if alt == "" {
			return fmt.Errorf("acceptable answer %d cannot be empty", i+1)
		}
	}

	return nil
}

func (v *QuestionValidator) validateTypeAnswer(question *models.Question) error {
	var content models.TypeAnswerContent
	if err := question.DecodeContent(&content); err != nil {
		return err
	}

	if content.CorrectAnswer == "" {
		return fmt.Errorf("correct answer is required")
	}

	for i, alt := range content.AcceptableAnswers {
		if alt == "" {
			return fmt.Errorf("acceptable answer %d cannot be empty", i+1)
		}
	}

	return nil
}

func (v *QuestionValidator) validateMultipleChoiceMulti(question *models.Question) error {
	var content models.MultipleChoiceMultiContent
	if err := question.DecodeContent(&content); err != nil {
		return err
	}

	if len(content.Options) < 2 {
		return fmt.Errorf("multi-answer multiple choice questions must have at least 2 options")
	}

	if len(content.Options) > 10 {
		return fmt.Errorf("multi-answer multiple choice questions cannot have more than 10 options")
	}

	if len(content.CorrectAnswerIndices) == 0 {
		return fmt.Errorf("at least 1 correct answer index is required")
	}

	seen := make(map[int]bool, len(content.CorrectAnswerIndices))
	for _, idx := range content.CorrectAnswerIndices {
		if idx < 0 || idx >= len(content.Options) {
			return fmt.Errorf("correct answer index %d is out of range", idx)
		}
		if seen[idx] {
			return fmt.Errorf("duplicate correct answer index: %d", idx)
		}
		seen[idx] = true
	}

	return nil
}

func (v *QuestionValidator) validateMatchTheFollowing(question *models.Question) error {
	var content models.MatchTheFollowingContent
	if err := question.DecodeContent(&content); err != nil {
		return err
	}

	if len(content.Pairs) < 2 {
		return fmt.Errorf("matching questions must have at least 2 pairs")
	}

	if len(content.Pairs) > 10 {
		return fmt.Errorf("matching questions cannot have more than 10 pairs")
	}

	ids := make(map[string]bool, len(content.Pairs))
	for _, pair := range content.Pairs {
		if pair.ID == "" || pair.Left == "" || pair.Right == "" {
			return fmt.Errorf("match pairs must have id, left and right values")
		}
		if ids[pair.ID] {
			return fmt.Errorf("duplicate match pair id: %s", pair.ID)
		}
		ids[pair.ID] = true
	}

	return nil
}

func (v *QuestionValidator) validateTapToReveal(question *models.Question) error {
	var content models.TapToRevealContent
	if err := question.DecodeContent(&content); err != nil {
		return err
	}

	if content.Answer == "" {
		return fmt.Errorf("reveal answer is required")
	}

	return nil
}

func (v *QuestionValidator) validateOrderItems(question *models.Question) error {
	var content models.OrderItemsContent
	if err := question.DecodeContent(&content); err != nil {
		return err
	}

	if len(content.Items) < 2 {
		return fmt.Errorf("ordering questions must have at least 2 items")
	}

	if len(content.Items) > 10 {
		return fmt.Errorf("ordering questions cannot have more than 10 items")
	}

	itemIDs := make(map[string]bool, len(content.Items)+len(content.Distractors))
	for _, item := range content.Items {
		if item.ID == "" || item.Text == "" {
			return fmt.Errorf("items must have both id and text")
		}
		if itemIDs[item.ID] {
			return fmt.Errorf("duplicate item id: %s", item.ID)
		}
		itemIDs[item.ID] = true
	}

	// Distractors are shown but never part of the correct order.
	for _, item := range content.Distractors {
		if item.ID == "" || item.Text == "" {
			return fmt.Errorf("distractors must have both id and text")
		}
		if itemIDs[item.ID] {
			return fmt.Errorf("duplicate item id: %s", item.ID)
		}
		itemIDs[item.ID] = true
	}

	if len(content.CorrectOrder) != len(content.Items) {
		return fmt.Errorf("correct order must include every item exactly once")
	}

	orderIDs := make(map[string]bool, len(content.CorrectOrder))
	for _, orderID := range content.CorrectOrder {
		if !itemIDs[orderID] {
			return fmt.Errorf("correct order references non-existent item: %s", orderID)
		}
		if orderIDs[orderID] {
			return fmt.Errorf("correct order contains duplicate item: %s", orderID)
		}
		orderIDs[orderID] = true
	}

	// Distractor ids must not appear in the correct order.
	for _, d := range content.Distractors {
		if orderIDs[d.ID] {
			return fmt.Errorf("distractor %s cannot appear in the correct order", d.ID)
		}
	}

	return nil
}
