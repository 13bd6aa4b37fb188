package question

import (
	"encoding/json"
	"testing"
)

func TestBuild_VariantPerType(t *testing.T) {
	tests := []struct {
		name        string
		q           Question
		shouldError bool
	}{
		{
			name: "Should build text variant",
			q:    Question{Header: Header{ID: "q1", Text: "Name?"}, Type: TypeText},
		},
		{
			name: "Should build paragraph variant",
			q:    Question{Header: Header{ID: "q2", Text: "Feedback?"}, Type: TypeParagraph},
		},
		{
			name: "Should build choice variant with options",
			q:    Question{Header: Header{ID: "q3", Text: "Pick one"}, Type: TypeMultipleChoice, Options: []string{"A", "B"}},
		},
		{
			name:        "Should reject choice variant without options",
			q:           Question{Header: Header{ID: "q4", Text: "Pick one"}, Type: TypeDropdown},
			shouldError: true,
		},
		{
			name: "Should build rating variant",
			q:    Question{Header: Header{ID: "q5", Text: "Rate us"}, Type: TypeRating, RatingStyle: RatingStyleStar},
		},
		{
			name: "Should build yes_no variant",
			q:    Question{Header: Header{ID: "q6", Text: "Agree?"}, Type: TypeYesNo},
		},
		{
			name: "Should build section header variant",
			q:    Question{Header: Header{ID: "q7", Text: "Part 1"}, Type: TypeSectionHeader},
		},
		{
			name:        "Should reject unknown type",
			q:           Question{Header: Header{ID: "q8", Text: "???"}, Type: Type("matrix")},
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answerable, err := Build(tt.q)
			if tt.shouldError {
				if err == nil {
					t.Fatalf("Expected error, got %T", answerable)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if answerable.Question().ID != tt.q.ID {
				t.Errorf("Expected question ID %s, got %s", tt.q.ID, answerable.Question().ID)
			}
		})
	}
}

func TestChoice_Validate(t *testing.T) {
	single := Question{Header: Header{ID: "q1"}, Type: TypeMultipleChoice, Options: []string{"Red", "Green", "Blue"}}
	multi := Question{Header: Header{ID: "q2"}, Type: TypeCheckboxes, Options: []string{"Red", "Green", "Blue"}}

	tests := []struct {
		name        string
		q           Question
		multi       bool
		value       string
		shouldError bool
	}{
		{name: "Should accept declared option", q: single, value: "Red"},
		{name: "Should accept empty value", q: single, value: ""},
		{name: "Should accept padded declared option", q: single, value: " Red "},
		{name: "Should reject undeclared option", q: single, value: "Purple", shouldError: true},
		{name: "Should reject case variant of option", q: single, value: "red", shouldError: true},
		{name: "Should accept multi-select of declared options", q: multi, multi: true, value: "Red,Blue"},
		{name: "Should reject multi-select with undeclared member", q: multi, multi: true, value: "Red,Purple", shouldError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := newChoice(tt.q, tt.multi)
			if err != nil {
				t.Fatalf("Unexpected constructor error: %v", err)
			}

			err = c.Validate(tt.value)
			if tt.shouldError && err == nil {
				t.Errorf("Expected validation error for %q", tt.value)
			}
			if !tt.shouldError && err != nil {
				t.Errorf("Unexpected validation error for %q: %v", tt.value, err)
			}
		})
	}
}

func TestChoice_Selections(t *testing.T) {
	q := Question{Header: Header{ID: "q1"}, Type: TypeCheckboxes, Options: []string{"A", "B", "C"}}
	c, err := newChoice(q, true)
	if err != nil {
		t.Fatalf("Unexpected constructor error: %v", err)
	}

	got := c.Selections("A, B ,C")
	want := []string{"A", "B", "C"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d selections, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected selection %q at %d, got %q", want[i], i, got[i])
		}
	}

	if c.Selections("") != nil {
		t.Errorf("Expected nil selections for empty value")
	}
}

func TestRating_Validate(t *testing.T) {
	r := Rating{question: Question{Header: Header{ID: "q1"}, Type: TypeRating}}

	for _, valid := range []string{"", "1", "3", "5"} {
		if err := r.Validate(valid); err != nil {
			t.Errorf("Expected %q to be valid, got %v", valid, err)
		}
	}
	for _, invalid := range []string{"0", "6", "3.5", "five", "-1"} {
		if err := r.Validate(invalid); err == nil {
			t.Errorf("Expected %q to be rejected", invalid)
		}
	}
}

func TestYesNo_Validate(t *testing.T) {
	y := YesNo{question: Question{Header: Header{ID: "q1"}, Type: TypeYesNo}}

	for _, valid := range []string{"", "Yes", "No"} {
		if err := y.Validate(valid); err != nil {
			t.Errorf("Expected %q to be valid, got %v", valid, err)
		}
	}
	for _, invalid := range []string{"yes", "NO", "maybe"} {
		if err := y.Validate(invalid); err == nil {
			t.Errorf("Expected %q to be rejected", invalid)
		}
	}
}

func TestText_Validate(t *testing.T) {
	short, err := Build(Question{Header: Header{ID: "q1"}, Type: TypeText})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	long := make([]byte, maxTextLength+1)
	for i := range long {
		long[i] = 'a'
	}

	if err := short.Validate(string(long)); err == nil {
		t.Errorf("Expected over-length text to be rejected")
	}
	if err := short.Validate("hi"); err != nil {
		t.Errorf("Unexpected error for short text: %v", err)
	}
}

func TestQuestion_JSONRoundTripPreservesUnknownFields(t *testing.T) {
	raw := `{"id":"q1","text":"Pick","type":"multiple_choice","required":true,"options":["A","B"],"themeColor":"#ff00aa","legacyWeight":3}`

	var q Question
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		t.Fatalf("Unexpected unmarshal error: %v", err)
	}

	if q.Type != TypeMultipleChoice || len(q.Options) != 2 || !q.Required {
		t.Fatalf("Known fields decoded wrong: %+v", q)
	}

	out, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("Unexpected marshal error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("Unexpected re-unmarshal error: %v", err)
	}

	if decoded["themeColor"] != "#ff00aa" {
		t.Errorf("Expected themeColor to survive round trip, got %v", decoded["themeColor"])
	}
	if decoded["legacyWeight"] != float64(3) {
		t.Errorf("Expected legacyWeight to survive round trip, got %v", decoded["legacyWeight"])
	}
}

func TestNormalize_Defaults(t *testing.T) {
	tests := []struct {
		name     string
		in       Question
		validate func(t *testing.T, out Question)
	}{
		{
			name: "Should mint id when missing",
			in:   Question{Header: Header{Text: "Name?"}, Type: TypeText},
			validate: func(t *testing.T, out Question) {
				if out.ID == "" {
					t.Error("Expected generated id")
				}
			},
		},
		{
			name: "Should default unknown type to text",
			in:   Question{Header: Header{ID: "q1", Text: "Name?"}, Type: Type("freeform")},
			validate: func(t *testing.T, out Question) {
				if out.Type != TypeText {
					t.Errorf("Expected type text, got %s", out.Type)
				}
			},
		},
		{
			name: "Should strip html from text and options",
			in:   Question{Header: Header{ID: "q1", Text: "<b>Pick</b> one"}, Type: TypeDropdown, Options: []string{"<i>A</i>", "B"}},
			validate: func(t *testing.T, out Question) {
				if out.Text != "Pick one" {
					t.Errorf("Expected sanitized text, got %q", out.Text)
				}
				if out.Options[0] != "A" {
					t.Errorf("Expected sanitized option, got %q", out.Options[0])
				}
			},
		},
		{
			name: "Should degrade optionless choice to text",
			in:   Question{Header: Header{ID: "q1", Text: "Pick"}, Type: TypeMultipleChoice, Options: []string{"", "  "}},
			validate: func(t *testing.T, out Question) {
				if out.Type != TypeText {
					t.Errorf("Expected degraded type text, got %s", out.Type)
				}
			},
		},
		{
			name: "Should clear required flag on section header",
			in:   Question{Header: Header{ID: "q1", Text: "Part 1", Required: true}, Type: TypeSectionHeader},
			validate: func(t *testing.T, out Question) {
				if out.Required {
					t.Error("Expected section header to never be required")
				}
			},
		},
		{
			name: "Should default rating style",
			in:   Question{Header: Header{ID: "q1", Text: "Rate"}, Type: TypeRating, RatingStyle: RatingStyle("hearts")},
			validate: func(t *testing.T, out Question) {
				if out.RatingStyle != RatingStyleNumber {
					t.Errorf("Expected number rating style, got %s", out.RatingStyle)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, Normalize(tt.in))
		})
	}
}

func TestDecodeGenerated_RequiredDefaultsTrue(t *testing.T) {
	q, err := DecodeGenerated(json.RawMessage(`{"text":"Name?","type":"text"}`))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !q.Required {
		t.Error("Expected missing required to default to true")
	}

	q, err = DecodeGenerated(json.RawMessage(`{"text":"Name?","type":"text","required":false}`))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if q.Required {
		t.Error("Expected explicit required=false to be kept")
	}
}
