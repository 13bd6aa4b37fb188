package question

import (
	"fmt"

	"gleamform/survey-backend/internal"
)

type ErrUnknownType struct {
	QuestionID string
	Type       string
}

func (e ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown question type %q for question %s", e.Type, e.QuestionID)
}

func (e ErrUnknownType) Unwrap() error {
	return internal.ErrValidationFailed
}

type ErrMissingOptions struct {
	QuestionID string
}

func (e ErrMissingOptions) Error() string {
	return fmt.Sprintf("question %s has no options but its type requires them", e.QuestionID)
}

func (e ErrMissingOptions) Unwrap() error {
	return internal.ErrValidationFailed
}

type ErrInvalidAnswerLength struct {
	Expected int
	Given    int
}

func (e ErrInvalidAnswerLength) Error() string {
	return fmt.Sprintf("invalid answer length, expected at most %d, got %d", e.Expected, e.Given)
}

func (e ErrInvalidAnswerLength) Unwrap() error {
	return internal.ErrValidationFailed
}

type ErrUnknownOption struct {
	QuestionID string
	Option     string
}

func (e ErrUnknownOption) Error() string {
	return fmt.Sprintf("option %q not declared on question %s", e.Option, e.QuestionID)
}

func (e ErrUnknownOption) Unwrap() error {
	return internal.ErrValidationFailed
}

type ErrInvalidRatingValue struct {
	QuestionID string
	RawValue   string
}

func (e ErrInvalidRatingValue) Error() string {
	return fmt.Sprintf("invalid rating value %q for question %s, expected an integer between %d and %d", e.RawValue, e.QuestionID, RatingMin, RatingMax)
}

func (e ErrInvalidRatingValue) Unwrap() error {
	return internal.ErrValidationFailed
}
