// Package qualification implements the quiz that gates access to a survey:
// authoring-time validation of the test itself, pure scoring of a
// respondent's attempt, and the attempt records that unlock submission.
package qualification

import (
	"math"

	"gleamform/survey-backend/internal"
)

// TestQuestion is one quiz question with its answer key. CorrectAnswer
// indexes into Options.
type TestQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// Test is the authored quiz attached to a survey.
type Test struct {
	Topic     string         `json:"topic"`
	Questions []TestQuestion `json:"questions"`
}

// Validate rejects malformed tests at authoring time so respondents never
// meet one: a test needs at least one question, every question at least two
// options, and every answer key must point at a real option.
func (t Test) Validate() error {
	if len(t.Questions) == 0 {
		return internal.ErrInvalidTest
	}
	for _, q := range t.Questions {
		if len(q.Options) < 2 {
			return internal.ErrInvalidTest
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return internal.ErrInvalidTest
		}
	}
	return nil
}

// Result is the outcome of scoring one attempt.
type Result struct {
	ScorePercent int
	Passed       bool
}

// Score grades an attempt against the answer key. Answers maps question index
// to chosen option index and must cover every question; partial attempts are
// refused rather than silently scored. The percentage rounds half up and the
// attempt passes when it meets the threshold.
func Score(questions []TestQuestion, answers map[int]int, passScorePercent int) (Result, error) {
	if len(questions) == 0 {
		return Result{}, internal.ErrInvalidTest
	}

	for i := range questions {
		if _, ok := answers[i]; !ok {
			return Result{}, internal.ErrIncompleteTestAnswers
		}
	}

	correct := 0
	for i, q := range questions {
		if answers[i] == q.CorrectAnswer {
			correct++
		}
	}

	scorePercent := int(math.Round(float64(correct) / float64(len(questions)) * 100))

	return Result{
		ScorePercent: scorePercent,
		Passed:       scorePercent >= passScorePercent,
	}, nil
}
