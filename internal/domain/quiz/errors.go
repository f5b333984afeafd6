package quiz

import "errors"

// Sentinel kinds for quiz errors.
var (
	ErrNoQuestions   = errors.New("no questions")
	ErrEffectArity   = errors.New("question effect does not match axis count")
	ErrInvalidAnswer = errors.New("invalid answer")
	ErrOutOfRange    = errors.New("no current question")
	ErrInvalidScore  = errors.New("invalid score")
)
