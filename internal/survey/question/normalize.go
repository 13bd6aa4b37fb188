package question

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// sanitizer strips all HTML. Question text reaches us from respondent-facing
// editors and from the AI generator, neither of which is trusted markup.
var sanitizer = bluemonday.StrictPolicy()

// Normalize coerces an externally produced question into canonical shape. The
// AI generator and older clients are inconsistent about which fields they
// emit, so missing data gets defaults instead of an error: no id mints one, no
// type falls back to text, a section header loses its required flag, and a
// closed question keeps only its non-empty options. Unrecognized fields
// survive untouched.
func Normalize(q Question) Question {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}

	q.Text = strings.TrimSpace(sanitizer.Sanitize(q.Text))

	if !q.Type.Valid() {
		q.Type = TypeText
	}

	switch q.Type {
	case TypeMultipleChoice, TypeCheckboxes, TypeDropdown:
		options := make([]string, 0, len(q.Options))
		for _, option := range q.Options {
			option = strings.TrimSpace(sanitizer.Sanitize(option))
			if option != "" {
				options = append(options, option)
			}
		}
		q.Options = options
		if len(q.Options) == 0 {
			// A choice question without options cannot be answered; degrade
			// to free text rather than rejecting the whole generated batch.
			q.Type = TypeText
			q.Options = nil
		}
	case TypeRating:
		q.Options = nil
		if q.RatingStyle != RatingStyleStar {
			q.RatingStyle = RatingStyleNumber
		}
	case TypeSectionHeader:
		q.Required = false
		q.Options = nil
	default:
		q.Options = nil
	}

	if q.Type != TypeRating {
		q.RatingStyle = ""
	}

	return q
}

// DecodeGenerated decodes one generated question object and normalizes it.
// Unlike plain unmarshalling, an absent required field defaults to true: the
// generator tends to omit it, and a silently optional question is a worse
// failure mode for survey authors than a silently required one.
func DecodeGenerated(raw json.RawMessage) (Question, error) {
	var q Question
	if err := json.Unmarshal(raw, &q); err != nil {
		return Question{}, err
	}

	var probe struct {
		Required *bool `json:"required"`
	}
	if err := json.Unmarshal(raw, &probe); err == nil && probe.Required == nil {
		q.Required = true
	}

	return Normalize(q), nil
}

// NormalizeAll normalizes a generated batch in order, skipping entries that
// come out empty (no text at all once sanitized, other than headers which may
// legitimately title a blank run).
func NormalizeAll(questions []Question) []Question {
	out := make([]Question, 0, len(questions))
	for _, q := range questions {
		q = Normalize(q)
		if q.Text == "" && q.Type != TypeSectionHeader {
			continue
		}
		out = append(out, q)
	}
	return out
}
