package services

import (
	"errors"
	"fmt"

	apperrors "github.com/studyfeed/quiz-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrValidationFailed = errors.New("validation failed")

	// Question specific errors
	ErrQuestionNotFound       = errors.New("question not found")
	ErrQuestionInvalidFormat  = errors.New("invalid question format")
	ErrQuestionInvalidContent = errors.New("invalid question content for format")
	ErrQuestionBankEmpty      = errors.New("question bank is empty")

	// Session specific errors
	ErrSessionNotFound         = errors.New("quiz session not found")
	ErrSessionNotActive        = errors.New("quiz session is not active")
	ErrSessionAlreadyCompleted = errors.New("quiz session already completed")
	ErrQuestionNotInSession    = errors.New("question is not part of this session")
	ErrAnswerFormatMismatch    = errors.New("answer format does not match question format")

	// Result specific errors
	ErrResultNotFound = errors.New("quiz result not found")

	// Topic/study specific errors
	ErrTopicNotFound = errors.New("topic not found")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrResultNotFound) ||
		errors.Is(err, ErrTopicNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrAnswerFormatMismatch) ||
		errors.Is(err, ErrQuestionInvalidFormat) ||
		errors.Is(err, ErrQuestionInvalidContent) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrSessionAlreadyCompleted) ||
		errors.Is(err, ErrSessionNotActive)
}
