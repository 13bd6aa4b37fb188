package surveybuilder

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"

	"gleamform/survey-backend/internal/survey"
	"gleamform/survey-backend/test/testdata"
	"gleamform/survey-backend/test/testdata/dbbuilder"
)

type Builder struct {
	t  *testing.T
	db dbbuilder.DBTX
}

func New(t *testing.T, db dbbuilder.DBTX) *Builder {
	return &Builder{t: t, db: db}
}

func (b Builder) Queries() *survey.Queries {
	return survey.New(b.db)
}

func (b Builder) Create(opts ...Option) survey.Row {
	p := &FactoryParams{
		Title:                  testdata.RandomSurveyTitle(),
		Template:               "single-column",
		QualificationPassScore: survey.DefaultPassScore,
	}
	for _, opt := range opts {
		opt(p)
	}

	definition, err := json.Marshal(p.Questions)
	require.NoError(b.t, err)

	row, err := b.Queries().Create(context.Background(), survey.CreateParams{
		OwnerID:                p.OwnerID,
		Title:                  p.Title,
		Template:               p.Template,
		RequireQualification:   p.RequireQualification,
		QualificationPassScore: p.QualificationPassScore,
		ThemeColor:             pgtype.Text{String: p.ThemeColor, Valid: p.ThemeColor != ""},
		Definition:             definition,
	})
	require.NoError(b.t, err)

	if p.Status != "" && p.Status != string(survey.StatusDraft) {
		row, err = b.Queries().SetStatus(context.Background(), survey.SetStatusParams{
			ID:     row.ID,
			Status: p.Status,
		})
		require.NoError(b.t, err)
	}

	return row
}
