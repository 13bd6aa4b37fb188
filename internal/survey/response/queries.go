package response

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

// SurveyResponse is one stored submission: the respondent's answer map as a
// JSONB document plus who sent it and when.
type SurveyResponse struct {
	ID              uuid.UUID
	SurveyID        uuid.UUID
	RespondentEmail pgtype.Text
	Answers         json.RawMessage
	SubmittedAt     pgtype.Timestamptz
}

type CreateParams struct {
	SurveyID        uuid.UUID
	RespondentEmail pgtype.Text
	Answers         json.RawMessage
}

const createQuery = `
INSERT INTO survey_responses (survey_id, respondent_email, answers)
VALUES ($1, $2, $3)
RETURNING id, survey_id, respondent_email, answers, submitted_at
`

func (q *Queries) Create(ctx context.Context, arg CreateParams) (SurveyResponse, error) {
	row := q.db.QueryRow(ctx, createQuery, arg.SurveyID, arg.RespondentEmail, arg.Answers)
	var r SurveyResponse
	err := row.Scan(&r.ID, &r.SurveyID, &r.RespondentEmail, &r.Answers, &r.SubmittedAt)
	return r, err
}

const getQuery = `
SELECT id, survey_id, respondent_email, answers, submitted_at
FROM survey_responses
WHERE id = $1
`

func (q *Queries) Get(ctx context.Context, id uuid.UUID) (SurveyResponse, error) {
	row := q.db.QueryRow(ctx, getQuery, id)
	var r SurveyResponse
	err := row.Scan(&r.ID, &r.SurveyID, &r.RespondentEmail, &r.Answers, &r.SubmittedAt)
	return r, err
}

const listBySurveyIDQuery = `
SELECT id, survey_id, respondent_email, answers, submitted_at
FROM survey_responses
WHERE survey_id = $1
ORDER BY submitted_at
`

func (q *Queries) ListBySurveyID(ctx context.Context, surveyID uuid.UUID) ([]SurveyResponse, error) {
	rows, err := q.db.Query(ctx, listBySurveyIDQuery, surveyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []SurveyResponse
	for rows.Next() {
		var r SurveyResponse
		if err := rows.Scan(&r.ID, &r.SurveyID, &r.RespondentEmail, &r.Answers, &r.SubmittedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const countBySurveyIDQuery = `
SELECT COUNT(*) FROM survey_responses WHERE survey_id = $1
`

func (q *Queries) CountBySurveyID(ctx context.Context, surveyID uuid.UUID) (int64, error) {
	row := q.db.QueryRow(ctx, countBySurveyIDQuery, surveyID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteQuery = `
DELETE FROM survey_responses WHERE id = $1
`

func (q *Queries) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteQuery, id)
	return err
}
