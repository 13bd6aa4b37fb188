package question

// YesNoOptions is the fixed answer domain for yes_no questions, in declared
// order. Yes/no questions never carry an options list of their own.
var YesNoOptions = []string{"Yes", "No"}

type YesNo struct {
	question Question
}

func (y YesNo) Question() Question {
	return y.question
}

func (y YesNo) Validate(value string) error {
	if !IsAnswered(value) {
		return nil
	}

	for _, option := range YesNoOptions {
		if value == option {
			return nil
		}
	}

	return ErrUnknownOption{
		QuestionID: y.question.ID,
		Option:     value,
	}
}

func (y YesNo) DisplayValue(value string) string {
	return value
}
