package surveybuilder

import (
	"github.com/google/uuid"

	"gleamform/survey-backend/internal/survey"
	"gleamform/survey-backend/internal/survey/question"
)

type Option func(*FactoryParams)

type FactoryParams struct {
	OwnerID                uuid.UUID
	Title                  string
	Template               string
	RequireQualification   bool
	QualificationPassScore int32
	ThemeColor             string
	Status                 string
	Questions              []question.Question
}

func WithOwner(ownerID uuid.UUID) Option {
	return func(p *FactoryParams) { p.OwnerID = ownerID }
}

func WithTitle(title string) Option {
	return func(p *FactoryParams) { p.Title = title }
}

func WithTemplate(template string) Option {
	return func(p *FactoryParams) { p.Template = template }
}

func WithQualification(passScore int32) Option {
	return func(p *FactoryParams) {
		p.RequireQualification = true
		p.QualificationPassScore = passScore
	}
}

func WithThemeColor(color string) Option {
	return func(p *FactoryParams) { p.ThemeColor = color }
}

func WithQuestions(questions ...question.Question) Option {
	return func(p *FactoryParams) { p.Questions = questions }
}

func Published() Option {
	return func(p *FactoryParams) { p.Status = string(survey.StatusPublished) }
}

func Closed() Option {
	return func(p *FactoryParams) { p.Status = string(survey.StatusClosed) }
}
