// Package question models the survey question document: a tagged union keyed
// by question type, with per-type answer validation. Questions live inside a
// survey's JSONB definition rather than in their own table, so the JSON codec
// preserves fields it does not recognize and the original definition
// round-trips losslessly through edit and re-save.
package question

import (
	"encoding/json"
	"strings"
)

type Type string

const (
	TypeText           Type = "text"
	TypeParagraph      Type = "paragraph"
	TypeMultipleChoice Type = "multiple_choice"
	TypeCheckboxes     Type = "checkboxes"
	TypeDropdown       Type = "dropdown"
	TypeRating         Type = "rating"
	TypeYesNo          Type = "yes_no"
	TypeSectionHeader  Type = "section_header"
)

func (t Type) Valid() bool {
	switch t {
	case TypeText, TypeParagraph, TypeMultipleChoice, TypeCheckboxes,
		TypeDropdown, TypeRating, TypeYesNo, TypeSectionHeader:
		return true
	}
	return false
}

// Closed reports whether the type has an enumerable, bounded answer domain.
// Rating counts as closed because answers are tallied over the fixed 1-5 buckets.
func (t Type) Closed() bool {
	switch t {
	case TypeMultipleChoice, TypeCheckboxes, TypeDropdown, TypeYesNo, TypeRating:
		return true
	}
	return false
}

type RatingStyle string

const (
	RatingStyleNumber RatingStyle = "number"
	RatingStyleStar   RatingStyle = "star"
)

// CheckboxDelimiter joins a multi-select answer into the single string stored
// in an answer map, matching what respondent clients send.
const CheckboxDelimiter = ","

// Header carries the fields shared by every question variant.
type Header struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Required bool   `json:"required"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Question is the document form of a question as stored inside a survey
// definition. Fields not listed here are kept verbatim in extra and written
// back on marshal.
type Question struct {
	Header
	Type        Type        `json:"type"`
	Options     []string    `json:"options,omitempty"`
	RatingStyle RatingStyle `json:"ratingType,omitempty"`

	extra map[string]json.RawMessage
}

var knownFields = map[string]bool{
	"id":       true,
	"text":     true,
	"required": true,
	"imageUrl": true,
	"type":     true,
	"options":  true,
	"ratingType": true,
}

func (q *Question) UnmarshalJSON(data []byte) error {
	type alias struct {
		Header
		Type        Type        `json:"type"`
		Options     []string    `json:"options"`
		RatingStyle RatingStyle `json:"ratingType"`
	}
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key := range raw {
		if knownFields[key] {
			delete(raw, key)
		}
	}

	q.Header = a.Header
	q.Type = a.Type
	q.Options = a.Options
	q.RatingStyle = a.RatingStyle
	if len(raw) > 0 {
		q.extra = raw
	} else {
		q.extra = nil
	}

	return nil
}

func (q Question) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(q.extra)+7)
	for key, value := range q.extra {
		out[key] = value
	}

	set := func(key string, value any) error {
		encoded, err := json.Marshal(value)
		if err != nil {
			return err
		}
		out[key] = encoded
		return nil
	}

	if err := set("id", q.ID); err != nil {
		return nil, err
	}
	if err := set("text", q.Text); err != nil {
		return nil, err
	}
	if err := set("required", q.Required); err != nil {
		return nil, err
	}
	if err := set("type", q.Type); err != nil {
		return nil, err
	}
	if q.ImageURL != "" {
		if err := set("imageUrl", q.ImageURL); err != nil {
			return nil, err
		}
	}
	if len(q.Options) > 0 {
		if err := set("options", q.Options); err != nil {
			return nil, err
		}
	}
	if q.RatingStyle != "" {
		if err := set("ratingType", q.RatingStyle); err != nil {
			return nil, err
		}
	}

	return json.Marshal(out)
}

// Answerable is the behavior shared by every question variant: validating a
// respondent's raw answer string and rendering it for display. Implementations
// are pure and never perform I/O.
type Answerable interface {
	Question() Question

	// Validate checks a raw answer value from an answer map against the
	// question's type and constraints. An empty value is always accepted here;
	// required-ness is enforced by the response validator, not per answer.
	Validate(value string) error

	// DisplayValue converts the stored answer into a short human-readable string.
	DisplayValue(value string) string
}

// Build constructs the typed variant for a question. It fails only on
// questions that could not have been produced by Normalize, such as a choice
// question without options.
func Build(q Question) (Answerable, error) {
	switch q.Type {
	case TypeText:
		return Text{question: q, maxLength: maxTextLength}, nil
	case TypeParagraph:
		return Text{question: q, maxLength: maxParagraphLength}, nil
	case TypeMultipleChoice, TypeDropdown:
		return newChoice(q, false)
	case TypeCheckboxes:
		return newChoice(q, true)
	case TypeRating:
		return Rating{question: q}, nil
	case TypeYesNo:
		return YesNo{question: q}, nil
	case TypeSectionHeader:
		return SectionHeader{question: q}, nil
	}

	return nil, ErrUnknownType{QuestionID: q.ID, Type: string(q.Type)}
}

// IsAnswered reports whether a raw answer value counts as present. Whitespace
// only values count as absent so a respondent cannot satisfy a required
// question with spaces.
func IsAnswered(value string) bool {
	return strings.TrimSpace(value) != ""
}
