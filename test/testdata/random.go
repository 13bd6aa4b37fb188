// Package testdata generates randomized fixture values for tests.
package testdata

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
)

func RandomName() string {
	return gofakeit.Name()
}

func RandomEmail() string {
	return gofakeit.Email()
}

func RandomSurveyTitle() string {
	return fmt.Sprintf("%s %s Survey", gofakeit.Adjective(), gofakeit.NounAbstract())
}

func RandomQuestionText() string {
	return gofakeit.Question()
}

func RandomSentence() string {
	return gofakeit.Sentence(8)
}

func RandomHexColor() string {
	return gofakeit.HexColor()
}
