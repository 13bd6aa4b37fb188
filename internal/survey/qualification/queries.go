package qualification

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// Row is the stored qualification test; one per survey, question list as a
// JSONB document.
type Row struct {
	ID        uuid.UUID
	SurveyID  uuid.UUID
	Topic     string
	Questions json.RawMessage
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type UpsertParams struct {
	SurveyID  uuid.UUID
	Topic     string
	Questions json.RawMessage
}

const upsertQuery = `
INSERT INTO qualification_tests (survey_id, topic, questions)
VALUES ($1, $2, $3)
ON CONFLICT (survey_id)
DO UPDATE SET topic = EXCLUDED.topic, questions = EXCLUDED.questions, updated_at = now()
RETURNING id, survey_id, topic, questions, created_at, updated_at
`

func (q *Queries) Upsert(ctx context.Context, arg UpsertParams) (Row, error) {
	row := q.db.QueryRow(ctx, upsertQuery, arg.SurveyID, arg.Topic, arg.Questions)
	var r Row
	err := row.Scan(&r.ID, &r.SurveyID, &r.Topic, &r.Questions, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

const getBySurveyIDQuery = `
SELECT id, survey_id, topic, questions, created_at, updated_at
FROM qualification_tests
WHERE survey_id = $1
`

func (q *Queries) GetBySurveyID(ctx context.Context, surveyID uuid.UUID) (Row, error) {
	row := q.db.QueryRow(ctx, getBySurveyIDQuery, surveyID)
	var r Row
	err := row.Scan(&r.ID, &r.SurveyID, &r.Topic, &r.Questions, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

const deleteBySurveyIDQuery = `
DELETE FROM qualification_tests WHERE survey_id = $1
`

func (q *Queries) DeleteBySurveyID(ctx context.Context, surveyID uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteBySurveyIDQuery, surveyID)
	return err
}

// Attempt is one respondent's scored try at a survey's qualification test.
type Attempt struct {
	ID              uuid.UUID
	SurveyID        uuid.UUID
	RespondentEmail string
	ScorePercent    int32
	Passed          bool
	CreatedAt       pgtype.Timestamptz
}

type CreateAttemptParams struct {
	SurveyID        uuid.UUID
	RespondentEmail string
	ScorePercent    int32
	Passed          bool
}

const createAttemptQuery = `
INSERT INTO qualification_attempts (survey_id, respondent_email, score_percent, passed)
VALUES ($1, $2, $3, $4)
RETURNING id, survey_id, respondent_email, score_percent, passed, created_at
`

func (q *Queries) CreateAttempt(ctx context.Context, arg CreateAttemptParams) (Attempt, error) {
	row := q.db.QueryRow(ctx, createAttemptQuery, arg.SurveyID, arg.RespondentEmail, arg.ScorePercent, arg.Passed)
	var a Attempt
	err := row.Scan(&a.ID, &a.SurveyID, &a.RespondentEmail, &a.ScorePercent, &a.Passed, &a.CreatedAt)
	return a, err
}

const hasPassedQuery = `
SELECT EXISTS(
	SELECT 1 FROM qualification_attempts
	WHERE survey_id = $1 AND respondent_email = $2 AND passed
)
`

func (q *Queries) HasPassedAttempt(ctx context.Context, surveyID uuid.UUID, respondentEmail string) (bool, error) {
	var passed bool
	err := q.db.QueryRow(ctx, hasPassedQuery, surveyID, respondentEmail).Scan(&passed)
	return passed, err
}
