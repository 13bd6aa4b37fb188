package question

// SectionHeader is a pseudo-question that marks a section boundary. It carries
// no answer and is never required; Validate accepts anything so a stray value
// against a header id can never block submission.
type SectionHeader struct {
	question Question
}

func (s SectionHeader) Question() Question {
	return s.question
}

func (s SectionHeader) Validate(value string) error {
	return nil
}

func (s SectionHeader) DisplayValue(value string) string {
	return ""
}
