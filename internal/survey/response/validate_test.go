package response

import (
	"testing"

	"gleamform/survey-backend/internal/survey/question"
	"gleamform/survey-backend/internal/survey/section"
)

func textQuestion(id string, required bool) question.Question {
	return question.Question{
		Header: question.Header{ID: id, Text: "Question " + id, Required: required},
		Type:   question.TypeText,
	}
}

func TestValidateSection(t *testing.T) {
	tests := []struct {
		name        string
		questions   []question.Question
		answers     AnswerMap
		wantOK      bool
		wantMissing []string
	}{
		{
			name: "Should report missing required answer",
			questions: []question.Question{
				textQuestion("q1", true),
				{Header: question.Header{ID: "q2"}, Type: question.TypeMultipleChoice, Options: []string{"A", "B"}},
			},
			answers:     AnswerMap{},
			wantOK:      false,
			wantMissing: []string{"q1"},
		},
		{
			name: "Should pass once required answer present",
			questions: []question.Question{
				textQuestion("q1", true),
				{Header: question.Header{ID: "q2"}, Type: question.TypeMultipleChoice, Options: []string{"A", "B"}},
			},
			answers: AnswerMap{"q1": "hi"},
			wantOK:  true,
		},
		{
			name:      "Should pass trivially with no required questions",
			questions: []question.Question{textQuestion("q1", false), textQuestion("q2", false)},
			answers:   AnswerMap{},
			wantOK:    true,
		},
		{
			name: "Should reject blank-only answer for required question",
			questions: []question.Question{
				textQuestion("q1", true),
			},
			answers:     AnswerMap{"q1": "   "},
			wantOK:      false,
			wantMissing: []string{"q1"},
		},
		{
			name: "Should ignore section headers even when marked required",
			questions: []question.Question{
				{Header: question.Header{ID: "h1", Text: "Intro", Required: true}, Type: question.TypeSectionHeader},
				textQuestion("q1", true),
			},
			answers:     AnswerMap{},
			wantOK:      false,
			wantMissing: []string{"q1"},
		},
		{
			name: "Should list all missing questions in display order",
			questions: []question.Question{
				textQuestion("q1", true),
				textQuestion("q2", false),
				textQuestion("q3", true),
			},
			answers:     AnswerMap{"q2": "optional but answered"},
			wantOK:      false,
			wantMissing: []string{"q1", "q3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateSection(section.Section{Title: "Any", Questions: tt.questions}, tt.answers)

			if result.OK != tt.wantOK {
				t.Errorf("Expected ok=%v, got %v", tt.wantOK, result.OK)
			}
			if len(result.Missing) != len(tt.wantMissing) {
				t.Fatalf("Expected %d missing, got %d", len(tt.wantMissing), len(result.Missing))
			}
			for i, id := range tt.wantMissing {
				if result.Missing[i].ID != id {
					t.Errorf("Missing %d: expected %q, got %q", i, id, result.Missing[i].ID)
				}
			}
		})
	}
}

func TestValidateSurvey_CatchesErasedEarlierAnswer(t *testing.T) {
	questions := []question.Question{
		{Header: question.Header{ID: "h1", Text: "Part 1"}, Type: question.TypeSectionHeader},
		textQuestion("a", true),
		{Header: question.Header{ID: "h2", Text: "Part 2"}, Type: question.TypeSectionHeader},
		textQuestion("b", true),
	}

	// Respondent filled section 1, advanced, then went back and erased it.
	answers := AnswerMap{"a": "", "b": "done"}

	result := ValidateSurvey(questions, answers)
	if result.OK {
		t.Fatal("Expected whole-survey validation to fail")
	}
	if len(result.Missing) != 1 || result.Missing[0].ID != "a" {
		t.Errorf("Expected only question a to be missing, got %+v", result.Missing)
	}
}

func TestValidate_NeverMutatesAnswers(t *testing.T) {
	answers := AnswerMap{"q1": "value"}
	_ = ValidateSurvey([]question.Question{textQuestion("q1", true), textQuestion("q2", true)}, answers)

	if len(answers) != 1 || answers["q1"] != "value" {
		t.Errorf("Expected answers untouched, got %v", answers)
	}
}
