package section

import (
	"testing"

	"gleamform/survey-backend/internal/survey/question"
)

func header(text string) question.Question {
	return question.Question{
		Header: question.Header{ID: "h-" + text, Text: text},
		Type:   question.TypeSectionHeader,
	}
}

func textQuestion(id string, required bool) question.Question {
	return question.Question{
		Header: question.Header{ID: id, Text: "Question " + id, Required: required},
		Type:   question.TypeText,
	}
}

func TestPartition_Sectional(t *testing.T) {
	tests := []struct {
		name      string
		questions []question.Question
		want      []struct {
			title string
			ids   []string
		}
	}{
		{
			name: "Should group strictly on headers",
			questions: []question.Question{
				header("Intro"),
				textQuestion("a", true),
				header("Demographics"),
				textQuestion("b", false),
			},
			want: []struct {
				title string
				ids   []string
			}{
				{title: "Intro", ids: []string{"a"}},
				{title: "Demographics", ids: []string{"b"}},
			},
		},
		{
			name: "Should emit implicit Start section before first header",
			questions: []question.Question{
				textQuestion("a", false),
				textQuestion("b", false),
				header("Later"),
				textQuestion("c", false),
			},
			want: []struct {
				title string
				ids   []string
			}{
				{title: "Start", ids: []string{"a", "b"}},
				{title: "Later", ids: []string{"c"}},
			},
		},
		{
			name: "Should not emit empty leading section for header-first survey",
			questions: []question.Question{
				header("Only"),
				textQuestion("a", false),
			},
			want: []struct {
				title string
				ids   []string
			}{
				{title: "Only", ids: []string{"a"}},
			},
		},
		{
			name: "Should merge consecutive headers keeping the last title",
			questions: []question.Question{
				header("First"),
				header("Second"),
				textQuestion("a", false),
			},
			want: []struct {
				title string
				ids   []string
			}{
				{title: "Second", ids: []string{"a"}},
			},
		},
		{
			name:      "Should emit one empty default section for empty survey",
			questions: nil,
			want: []struct {
				title string
				ids   []string
			}{
				{title: "Start", ids: nil},
			},
		},
		{
			name:      "Should emit one empty default section for headers-only survey",
			questions: []question.Question{header("A"), header("B")},
			want: []struct {
				title string
				ids   []string
			}{
				{title: "Start", ids: nil},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Partition(tt.questions, TemplateSectional)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d sections, got %d: %+v", len(tt.want), len(got), got)
			}
			for i, want := range tt.want {
				if got[i].Title != want.title {
					t.Errorf("Section %d: expected title %q, got %q", i, want.title, got[i].Title)
				}
				if len(got[i].Questions) != len(want.ids) {
					t.Fatalf("Section %d: expected %d questions, got %d", i, len(want.ids), len(got[i].Questions))
				}
				for j, id := range want.ids {
					if got[i].Questions[j].ID != id {
						t.Errorf("Section %d question %d: expected id %q, got %q", i, j, id, got[i].Questions[j].ID)
					}
				}
			}
		})
	}
}

// Concatenating sectional output must reproduce the original sequence minus
// headers; any other template must reproduce it exactly, headers included.
func TestPartition_Coverage(t *testing.T) {
	questions := []question.Question{
		textQuestion("a", true),
		header("Part 1"),
		textQuestion("b", false),
		textQuestion("c", false),
		header("Part 2"),
		textQuestion("d", true),
	}

	t.Run("sectional drops headers and keeps order", func(t *testing.T) {
		var ids []string
		for _, s := range Partition(questions, TemplateSectional) {
			for _, q := range s.Questions {
				ids = append(ids, q.ID)
			}
		}
		want := []string{"a", "b", "c", "d"}
		if len(ids) != len(want) {
			t.Fatalf("Expected %v, got %v", want, ids)
		}
		for i := range want {
			if ids[i] != want[i] {
				t.Fatalf("Expected %v, got %v", want, ids)
			}
		}
	})

	for _, template := range []Template{TemplateSingleColumn, TemplateMinimalist, TemplatePageByPage} {
		t.Run(string(template)+" keeps full sequence in one section", func(t *testing.T) {
			sections := Partition(questions, template)
			if len(sections) != 1 {
				t.Fatalf("Expected 1 section, got %d", len(sections))
			}
			if sections[0].Title != DefaultTitle {
				t.Errorf("Expected default title, got %q", sections[0].Title)
			}
			if len(sections[0].Questions) != len(questions) {
				t.Fatalf("Expected %d questions, got %d", len(questions), len(sections[0].Questions))
			}
			for i := range questions {
				if sections[0].Questions[i].ID != questions[i].ID {
					t.Errorf("Question %d: expected id %q, got %q", i, questions[i].ID, sections[0].Questions[i].ID)
				}
			}
		})
	}
}

func TestPartition_DoesNotAliasInput(t *testing.T) {
	questions := []question.Question{textQuestion("a", false), textQuestion("b", false)}
	sections := Partition(questions, TemplateSingleColumn)

	sections[0].Questions[0].Text = "mutated"
	if questions[0].Text == "mutated" {
		t.Error("Expected partition output to be independent of the input slice")
	}
}

func TestPages(t *testing.T) {
	questions := []question.Question{
		header("Intro"),
		textQuestion("a", false),
		textQuestion("b", false),
	}

	pages := Pages(questions)
	if len(pages) != 2 {
		t.Fatalf("Expected 2 pages, got %d", len(pages))
	}
	for i, id := range []string{"a", "b"} {
		if len(pages[i].Questions) != 1 || pages[i].Questions[0].ID != id {
			t.Errorf("Page %d: expected single question %q, got %+v", i, id, pages[i].Questions)
		}
	}

	empty := Pages([]question.Question{header("Only")})
	if len(empty) != 1 || len(empty[0].Questions) != 0 {
		t.Errorf("Expected one empty page for headers-only survey, got %+v", empty)
	}
}

func TestPosition_Navigation(t *testing.T) {
	p, err := NewPosition(3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !p.IsFirst() || p.IsLast() {
		t.Errorf("Expected fresh position at first section")
	}

	if _, err := p.Prev(); err == nil {
		t.Error("Expected Prev from first section to be refused")
	}

	p, err = p.Next()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	p, err = p.Next()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !p.IsLast() {
		t.Errorf("Expected position at last section, got index %d", p.Index())
	}

	if _, err := p.Next(); err == nil {
		t.Error("Expected Next past last section to be refused")
	}

	if _, err := p.GoTo(5); err == nil {
		t.Error("Expected out-of-range GoTo to be refused")
	}

	if _, err := NewPosition(0); err == nil {
		t.Error("Expected zero-section position to be refused")
	}
}
