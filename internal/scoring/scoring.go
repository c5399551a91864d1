// Package scoring implements the quiz answer-evaluation and scoring engine.
// Everything here is a pure computation over a session snapshot: no I/O, no
// clocks, no mutation of its inputs.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/studyfeed/quiz-service/internal/models"
)

var (
	// ErrAnswerFormatMismatch is returned when an answer's format tag does
	// not match its question's format. Answers arrive as dynamic JSON, so
	// this is checked rather than trusted.
	ErrAnswerFormatMismatch = errors.New("answer format does not match question format")

	ErrUnknownQuestionFormat = errors.New("unknown question format")
)

// Evaluation is the graded outcome for a single question.
type Evaluation struct {
	IsCorrect    bool `json:"is_correct"`
	PointsEarned int  `json:"points_earned"`
}

// Evaluate grades a single answer against its question. PointsEarned is 0
// whenever IsCorrect is false, except for the two partial-credit formats
// (multi-select and matching) where a proportional score may be earned.
func Evaluate(q *models.Question, a *models.UserAnswer) (Evaluation, error) {
	if a.Format != q.Format {
		return Evaluation{}, fmt.Errorf("%w: question %s is %s, answer is %s",
			ErrAnswerFormatMismatch, q.ID, q.Format, a.Format)
	}

	maxPoints := q.MaxPoints()

	switch q.Format {
	case models.MultipleChoiceSingle:
		var content models.MultipleChoiceSingleContent
		if err := q.DecodeContent(&content); err != nil {
			return Evaluation{}, err
		}
		correct := a.SelectedIndex != nil && *a.SelectedIndex == content.CorrectAnswerIndex
		return binary(correct, maxPoints), nil

	case models.TrueOrFalse:
		var content models.TrueOrFalseContent
		if err := q.DecodeContent(&content); err != nil {
			return Evaluation{}, err
		}
		correct := a.SelectedAnswer != nil && *a.SelectedAnswer == content.CorrectAnswer
		return binary(correct, maxPoints), nil

	case models.FillInTheBlank:
		var content models.FillInTheBlankContent
		if err := q.DecodeContent(&content); err != nil {
			return Evaluation{}, err
		}
		correct := checkTextAnswer(a.EnteredText, content.CorrectAnswer, content.AcceptableAnswers, content.CaseSensitive)
		return binary(correct, maxPoints), nil

	case models.TypeAnswer:
		var content models.TypeAnswerContent
		if err := q.DecodeContent(&content); err != nil {
			return Evaluation{}, err
		}
		correct := checkTextAnswer(a.EnteredText, content.CorrectAnswer, content.AcceptableAnswers, content.CaseSensitive)
		return binary(correct, maxPoints), nil

	case models.MultipleChoiceMulti:
		var content models.MultipleChoiceMultiContent
		if err := q.DecodeContent(&content); err != nil {
			return Evaluation{}, err
		}
		correct, partial := checkMultiSelect(a.SelectedIndices, content.CorrectAnswerIndices)
		return partialCredit(correct, partial, maxPoints), nil

	case models.MatchTheFollowing:
		var content models.MatchTheFollowingContent
		if err := q.DecodeContent(&content); err != nil {
			return Evaluation{}, err
		}
		correct, partial := checkMatches(a.Matches, content.Pairs)
		return partialCredit(correct, partial, maxPoints), nil

	case models.TapToReveal:
		// Not objectively gradable: correctness is the user's self-report.
		correct := a.SelfMarkedCorrect != nil && *a.SelfMarkedCorrect
		return binary(correct, maxPoints), nil

	case models.OrderItems:
		var content models.OrderItemsContent
		if err := q.DecodeContent(&content); err != nil {
			return Evaluation{}, err
		}
		return binary(checkOrder(a.OrderedItemIDs, content.CorrectOrder), maxPoints), nil

	default:
		return Evaluation{}, fmt.Errorf("%w: %s", ErrUnknownQuestionFormat, q.Format)
	}
}

// CalculateFinalResult aggregates a completed session into its final result.
// It walks session.Questions in order (not the answers map) so that every
// question is represented, answered or not, and question order is preserved
// in the breakdown. The caller is expected to have finalized the session
// (status completed, end time set) first.
//
// The function only reads session state, so recomputing on the same session
// yields an identical result.
func CalculateFinalResult(session *models.QuizSession) (models.QuizResult, error) {
	results := make([]models.QuestionResult, 0, len(session.Questions))
	totalPoints := 0
	earnedPoints := 0
	correctAnswers := 0

	for i := range session.Questions {
		question := &session.Questions[i]
		totalPoints += question.MaxPoints()

		answer, answered := session.Answers[question.ID]
		if !answered {
			// Never answered: zero credit, no evaluation.
			results = append(results, models.QuestionResult{
				QuestionID:   question.ID,
				IsCorrect:    false,
				PointsEarned: 0,
				UserAnswer:   models.EmptyAnswer(question.Format),
			})
			continue
		}

		eval, err := Evaluate(question, &answer)
		if err != nil {
			return models.QuizResult{}, fmt.Errorf("failed to evaluate question %s: %w", question.ID, err)
		}

		earnedPoints += eval.PointsEarned
		if eval.IsCorrect {
			correctAnswers++
		}
		results = append(results, models.QuestionResult{
			QuestionID:   question.ID,
			IsCorrect:    eval.IsCorrect,
			PointsEarned: eval.PointsEarned,
			UserAnswer:   answer,
		})
	}

	percentage := 0
	if totalPoints > 0 {
		percentage = int(math.Round(float64(earnedPoints) / float64(totalPoints) * 100))
	}

	timeTaken := 0
	if session.StartTime > 0 && session.EndTime > 0 {
		timeTaken = int(math.Round(float64(session.EndTime-session.StartTime) / 1000))
	}

	return models.QuizResult{
		SessionID:        session.ID,
		TotalQuestions:   len(session.Questions),
		CorrectAnswers:   correctAnswers,
		IncorrectAnswers: len(session.Questions) - correctAnswers,
		TotalPoints:      totalPoints,
		EarnedPoints:     earnedPoints,
		Percentage:       percentage,
		TimeTaken:        timeTaken,
		QuestionResults:  results,
		CompletedAt:      time.Now(),
	}, nil
}

// ===== PER-FORMAT CHECKS =====

func normalizeText(text string, caseSensitive bool) string {
	trimmed := strings.TrimSpace(text)
	if caseSensitive {
		return trimmed
	}
	return strings.ToLower(trimmed)
}

// checkTextAnswer compares the entered text against the correct answer and
// every acceptable alternate, after normalization on both sides.
func checkTextAnswer(entered, correctAnswer string, acceptableAnswers []string, caseSensitive bool) bool {
	normalized := normalizeText(entered, caseSensitive)
	for _, candidate := range append([]string{correctAnswer}, acceptableAnswers...) {
		if normalizeText(candidate, caseSensitive) == normalized {
			return true
		}
	}
	return false
}

// checkMultiSelect compares selected option indices against the correct set.
// An exact match is fully correct. Otherwise the partial score rewards
// precision and penalizes over-selection, floored at zero:
//
//	max(0, (correctSelections - incorrectSelections) / len(correct))
func checkMultiSelect(selected, correct []int) (isCorrect bool, partialScore float64) {
	selectedSet := make(map[int]struct{}, len(selected))
	for _, i := range selected {
		selectedSet[i] = struct{}{}
	}
	correctSet := make(map[int]struct{}, len(correct))
	for _, i := range correct {
		correctSet[i] = struct{}{}
	}

	if len(selectedSet) == len(correctSet) {
		allMatch := true
		for i := range selectedSet {
			if _, ok := correctSet[i]; !ok {
				allMatch = false
				break
			}
		}
		if allMatch {
			return true, 1
		}
	}

	correctSelections := 0
	incorrectSelections := 0
	for i := range selectedSet {
		if _, ok := correctSet[i]; ok {
			correctSelections++
		} else {
			incorrectSelections++
		}
	}

	if len(correctSet) == 0 {
		return false, 0
	}
	partialScore = math.Max(0, float64(correctSelections-incorrectSelections)/float64(len(correctSet)))
	return false, partialScore
}

// checkMatches counts pairs matched to their own id. The canonical pairing
// is identity on the shared pair id, independent of display order.
func checkMatches(userMatches map[string]string, pairs []models.MatchPair) (isCorrect bool, partialScore float64) {
	if len(pairs) == 0 {
		return true, 1
	}
	correctCount := 0
	for _, pair := range pairs {
		if userMatches[pair.ID] == pair.ID {
			correctCount++
		}
	}
	return correctCount == len(pairs), float64(correctCount) / float64(len(pairs))
}

// checkOrder is strictly binary: any length or positional mismatch fails.
func checkOrder(userOrder, correctOrder []string) bool {
	if len(userOrder) != len(correctOrder) {
		return false
	}
	for i, id := range userOrder {
		if id != correctOrder[i] {
			return false
		}
	}
	return true
}

// ===== SCORING HELPERS =====

func binary(correct bool, maxPoints int) Evaluation {
	if correct {
		return Evaluation{IsCorrect: true, PointsEarned: maxPoints}
	}
	return Evaluation{IsCorrect: false, PointsEarned: 0}
}

func partialCredit(correct bool, partialScore float64, maxPoints int) Evaluation {
	if correct {
		return Evaluation{IsCorrect: true, PointsEarned: maxPoints}
	}
	return Evaluation{
		IsCorrect:    false,
		PointsEarned: int(math.Floor(partialScore * float64(maxPoints))),
	}
}
