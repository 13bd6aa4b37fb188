package response

import (
	"gleamform/survey-backend/internal/survey/question"
	"gleamform/survey-backend/internal/survey/section"
)

// AnswerMap is one respondent's in-progress answers, keyed by question id.
// Multi-select answers are stored delimiter-joined, ratings as their decimal
// string. Validation reads it and never mutates it.
type AnswerMap map[string]string

// ValidationResult reports completeness of required answers. Missing lists
// the offending questions in display order so the caller can point at them.
type ValidationResult struct {
	OK      bool
	Missing []question.Question
}

// ValidateSection checks a single section: a question is missing iff it is
// required and its answer is absent or blank. Section headers never carry
// answers and are always satisfied.
func ValidateSection(s section.Section, answers AnswerMap) ValidationResult {
	return validateQuestions(s.Questions, answers)
}

// ValidateSurvey applies the same rule across the whole question list. Used
// at final submission: a respondent can navigate backward and erase a
// required answer on a section that already passed, so the last gate has to
// look at everything again.
func ValidateSurvey(questions []question.Question, answers AnswerMap) ValidationResult {
	return validateQuestions(questions, answers)
}

func validateQuestions(questions []question.Question, answers AnswerMap) ValidationResult {
	var missing []question.Question
	for _, q := range questions {
		if q.Type == question.TypeSectionHeader {
			continue
		}
		if q.Required && !question.IsAnswered(answers[q.ID]) {
			missing = append(missing, q)
		}
	}

	return ValidationResult{OK: len(missing) == 0, Missing: missing}
}
