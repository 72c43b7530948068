package editor

import (
	"errors"
	"fmt"
)

// Code identifies a class of editor failure
type Code string

const (
	CodeMissingCallback         Code = "MISSING_CALLBACK"
	CodeEmptyQuestionText       Code = "EMPTY_QUESTION_TEXT"
	CodeInvalidOptions          Code = "INVALID_OPTIONS"
	CodeReconciliationAmbiguous Code = "RECONCILIATION_AMBIGUOUS"
)

var (
	ErrMissingCallback         = errors.New("editor: required callback is not wired")
	ErrEmptyQuestionText       = errors.New("editor: question text is empty")
	ErrInvalidOptions          = errors.New("editor: options are invalid")
	ErrReconciliationAmbiguous = errors.New("editor: canonical options trusted on first element only")
	ErrInvalidScore            = errors.New("editor: score must be a non-negative decimal")
	ErrOptionIndex             = errors.New("editor: option index out of range")
	ErrUnknownField            = errors.New("editor: unknown option field")
	ErrUnknownQuestionType     = errors.New("editor: unknown question type")
	ErrSessionClosed           = errors.New("editor: session is closed")
	ErrPartialCommit           = errors.New("editor: node updated but edge relabel failed")
)

// ValidationError is a recoverable commit failure. The draft stays
// editable; Field and Index point at the offending input.
type ValidationError struct {
	Code    Code
	Field   string
	Index   int // Option index, -1 when not about one option
	Message string
	err     error
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s (option %d)", e.Code, e.Message, e.Index)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.err
}

func emptyQuestionText() *ValidationError {
	return &ValidationError{
		Code:    CodeEmptyQuestionText,
		Field:   "questionText",
		Index:   -1,
		Message: "please enter a question",
		err:     ErrEmptyQuestionText,
	}
}

func invalidOptions(index int, message string) *ValidationError {
	return &ValidationError{
		Code:    CodeInvalidOptions,
		Field:   "options",
		Index:   index,
		Message: message,
		err:     ErrInvalidOptions,
	}
}
