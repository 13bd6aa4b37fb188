package question

import (
	"strings"
)

// Choice handles multiple_choice, dropdown and checkboxes questions. A
// multi-select answer is stored as a single delimiter-joined string, so
// validation splits it back into members before matching against the declared
// options.
type Choice struct {
	question Question
	multi    bool
}

func newChoice(q Question, multi bool) (Choice, error) {
	if len(q.Options) == 0 {
		return Choice{}, ErrMissingOptions{QuestionID: q.ID}
	}

	return Choice{question: q, multi: multi}, nil
}

func (c Choice) Question() Question {
	return c.question
}

func (c Choice) Validate(value string) error {
	if !IsAnswered(value) {
		return nil // no selection, required-ness is the validator's concern
	}

	selections := []string{value}
	if c.multi {
		selections = strings.Split(value, CheckboxDelimiter)
	}

	for _, selection := range selections {
		if !c.matches(selection) {
			return ErrUnknownOption{
				QuestionID: c.question.ID,
				Option:     selection,
			}
		}
	}

	return nil
}

// matches compares a single selection against the declared options. Values are
// trimmed before matching but not case-folded, so edited surveys keep exact
// option identity.
func (c Choice) matches(selection string) bool {
	selection = strings.TrimSpace(selection)
	for _, option := range c.question.Options {
		if option == selection {
			return true
		}
	}
	return false
}

func (c Choice) DisplayValue(value string) string {
	if !c.multi {
		return value
	}

	members := strings.Split(value, CheckboxDelimiter)
	for i, member := range members {
		members[i] = strings.TrimSpace(member)
	}
	return strings.Join(members, ", ")
}

// Selections splits a stored multi-select value into its members, trimmed.
// Single-select values come back as a one-element slice. Empty values yield nil.
func (c Choice) Selections(value string) []string {
	if !IsAnswered(value) {
		return nil
	}

	if !c.multi {
		return []string{strings.TrimSpace(value)}
	}

	raw := strings.Split(value, CheckboxDelimiter)
	members := make([]string, 0, len(raw))
	for _, member := range raw {
		member = strings.TrimSpace(member)
		if member != "" {
			members = append(members, member)
		}
	}
	return members
}
