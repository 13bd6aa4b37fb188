// Package survey owns the survey definition: title, template, qualification
// settings, theme and the ordered question list, stored as one JSONB document
// per survey. Derived structure (sections, stats) lives in subpackages.
package survey

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"gleamform/survey-backend/internal/survey/question"
	"gleamform/survey-backend/internal/survey/section"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusClosed    Status = "closed"
)

// DefaultPassScore is the qualification threshold applied when the author
// does not set one.
const DefaultPassScore = 80

// Survey is the canonical in-memory shape of a survey definition.
type Survey struct {
	ID                     uuid.UUID
	OwnerID                uuid.UUID
	Title                  string
	Template               section.Template
	RequireQualification   bool
	QualificationPassScore int32
	ThemeColor             string
	Status                 Status
	Questions              []question.Question
	CreatedAt              pgtype.Timestamptz
	UpdatedAt              pgtype.Timestamptz
}

// Sections derives the navigable section list for the survey's template.
func (s Survey) Sections() []section.Section {
	if s.Template == section.TemplatePageByPage {
		return section.Pages(s.Questions)
	}
	return section.Partition(s.Questions, s.Template)
}

// QuestionByID finds a question in the definition.
func (s Survey) QuestionByID(id string) (question.Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return question.Question{}, false
}

// AnswerableQuestions returns the definition with section headers removed,
// in order. This is the question list reporting and export operate on.
func (s Survey) AnswerableQuestions() []question.Question {
	var out []question.Question
	for _, q := range s.Questions {
		if q.Type != question.TypeSectionHeader {
			out = append(out, q)
		}
	}
	return out
}

func encodeDefinition(questions []question.Question) (json.RawMessage, error) {
	if questions == nil {
		questions = []question.Question{}
	}
	return json.Marshal(questions)
}

func decodeDefinition(raw json.RawMessage) ([]question.Question, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var questions []question.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}
