package survey

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

// Row is the database form of a survey: the question list travels as one
// JSONB definition column.
type Row struct {
	ID                     uuid.UUID
	OwnerID                uuid.UUID
	Title                  string
	Template               string
	RequireQualification   bool
	QualificationPassScore int32
	ThemeColor             pgtype.Text
	Status                 string
	Definition             json.RawMessage
	CreatedAt              pgtype.Timestamptz
	UpdatedAt              pgtype.Timestamptz
}

const surveyColumns = `id, owner_id, title, template, require_qualification, qualification_pass_score, theme_color, status, definition, created_at, updated_at`

func scanRow(row pgx.Row) (Row, error) {
	var r Row
	err := row.Scan(
		&r.ID, &r.OwnerID, &r.Title, &r.Template,
		&r.RequireQualification, &r.QualificationPassScore,
		&r.ThemeColor, &r.Status, &r.Definition,
		&r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

type CreateParams struct {
	OwnerID                uuid.UUID
	Title                  string
	Template               string
	RequireQualification   bool
	QualificationPassScore int32
	ThemeColor             pgtype.Text
	Definition             json.RawMessage
}

const createQuery = `
INSERT INTO surveys (owner_id, title, template, require_qualification, qualification_pass_score, theme_color, definition)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + surveyColumns

func (q *Queries) Create(ctx context.Context, arg CreateParams) (Row, error) {
	return scanRow(q.db.QueryRow(ctx, createQuery,
		arg.OwnerID, arg.Title, arg.Template,
		arg.RequireQualification, arg.QualificationPassScore,
		arg.ThemeColor, arg.Definition,
	))
}

type UpdateParams struct {
	ID                     uuid.UUID
	Title                  string
	Template               string
	RequireQualification   bool
	QualificationPassScore int32
	ThemeColor             pgtype.Text
	Definition             json.RawMessage
}

const updateQuery = `
UPDATE surveys
SET title = $2, template = $3, require_qualification = $4, qualification_pass_score = $5, theme_color = $6, definition = $7, updated_at = now()
WHERE id = $1
RETURNING ` + surveyColumns

func (q *Queries) Update(ctx context.Context, arg UpdateParams) (Row, error) {
	return scanRow(q.db.QueryRow(ctx, updateQuery,
		arg.ID, arg.Title, arg.Template,
		arg.RequireQualification, arg.QualificationPassScore,
		arg.ThemeColor, arg.Definition,
	))
}

type SetStatusParams struct {
	ID     uuid.UUID
	Status string
}

const setStatusQuery = `
UPDATE surveys
SET status = $2, updated_at = now()
WHERE id = $1
RETURNING ` + surveyColumns

func (q *Queries) SetStatus(ctx context.Context, arg SetStatusParams) (Row, error) {
	return scanRow(q.db.QueryRow(ctx, setStatusQuery, arg.ID, arg.Status))
}

const getByIDQuery = `
SELECT ` + surveyColumns + ` FROM surveys WHERE id = $1
`

func (q *Queries) GetByID(ctx context.Context, id uuid.UUID) (Row, error) {
	return scanRow(q.db.QueryRow(ctx, getByIDQuery, id))
}

const listByOwnerQuery = `
SELECT ` + surveyColumns + ` FROM surveys WHERE owner_id = $1 ORDER BY created_at DESC
`

func (q *Queries) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Row, error) {
	rows, err := q.db.Query(ctx, listByOwnerQuery, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Row
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const existsQuery = `
SELECT EXISTS(SELECT 1 FROM surveys WHERE id = $1)
`

func (q *Queries) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, existsQuery, id).Scan(&exists)
	return exists, err
}

const deleteSurveyQuery = `
DELETE FROM surveys WHERE id = $1
`

func (q *Queries) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteSurveyQuery, id)
	return err
}
