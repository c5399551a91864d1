package models

// UserAnswer captures a student's in-progress answer for a single question.
// Format must match the question's format; only the fields for that format
// are meaningful. Pointer fields distinguish "not answered yet" from a
// deliberate zero value (index 0, answer false).
type UserAnswer struct {
	Format QuestionFormat `json:"format" validate:"required,question_format"`

	// MULTIPLE_CHOICE_SINGLE
	SelectedIndex *int `json:"selected_index,omitempty"`

	// TRUE_OR_FALSE
	SelectedAnswer *bool `json:"selected_answer,omitempty"`

	// FILL_IN_THE_BLANK / TYPE_ANSWER
	EnteredText string `json:"entered_text,omitempty"`

	// MULTIPLE_CHOICE_MULTI
	SelectedIndices []int `json:"selected_indices,omitempty"`

	// MATCH_THE_FOLLOWING: left pair id -> right pair id
	Matches map[string]string `json:"matches,omitempty"`

	// TAP_TO_REVEAL
	Revealed          bool  `json:"revealed,omitempty"`
	SelfMarkedCorrect *bool `json:"self_marked_correct,omitempty"`

	// ORDER_ITEMS
	OrderedItemIDs []string `json:"ordered_item_ids,omitempty"`
}

// EmptyAnswer returns the placeholder recorded for a question that was never
// answered. Only the format tag is set.
func EmptyAnswer(format QuestionFormat) UserAnswer {
	return UserAnswer{Format: format}
}
