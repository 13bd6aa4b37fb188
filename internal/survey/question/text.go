package question

const (
	maxTextLength      = 500
	maxParagraphLength = 5000

	displayTruncateAt = 100
)

// Text handles both the single-line text type and the paragraph type; the two
// differ only in their length cap.
type Text struct {
	question  Question
	maxLength int
}

func (t Text) Question() Question {
	return t.question
}

func (t Text) Validate(value string) error {
	if len(value) > t.maxLength {
		return ErrInvalidAnswerLength{
			Expected: t.maxLength,
			Given:    len(value),
		}
	}

	return nil
}

func (t Text) DisplayValue(value string) string {
	if len(value) > displayTruncateAt {
		return value[:displayTruncateAt] + "..."
	}
	return value
}
