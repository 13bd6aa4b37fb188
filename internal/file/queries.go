package file

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// Image is a stored question illustration, binary data included.
type Image struct {
	ID          uuid.UUID
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
	UploadedBy  uuid.UUID
	CreatedAt   pgtype.Timestamptz
}

// Metadata is an Image without its binary data.
type Metadata struct {
	ID          uuid.UUID
	Filename    string
	ContentType string
	Size        int64
	UploadedBy  uuid.UUID
	CreatedAt   pgtype.Timestamptz
}

type CreateParams struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
	UploadedBy  uuid.UUID
}

const createQuery = `
INSERT INTO question_images (filename, content_type, size, data, uploaded_by)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, filename, content_type, size, data, uploaded_by, created_at
`

func (q *Queries) Create(ctx context.Context, arg CreateParams) (Image, error) {
	row := q.db.QueryRow(ctx, createQuery,
		arg.Filename, arg.ContentType, arg.Size, arg.Data, arg.UploadedBy,
	)
	return scanImage(row)
}

const getByIDQuery = `
SELECT id, filename, content_type, size, data, uploaded_by, created_at
FROM question_images
WHERE id = $1
`

func (q *Queries) GetByID(ctx context.Context, id uuid.UUID) (Image, error) {
	return scanImage(q.db.QueryRow(ctx, getByIDQuery, id))
}

const getMetadataByIDQuery = `
SELECT id, filename, content_type, size, uploaded_by, created_at
FROM question_images
WHERE id = $1
`

func (q *Queries) GetMetadataByID(ctx context.Context, id uuid.UUID) (Metadata, error) {
	return scanMetadata(q.db.QueryRow(ctx, getMetadataByIDQuery, id))
}

const listByUploaderQuery = `
SELECT id, filename, content_type, size, uploaded_by, created_at
FROM question_images
WHERE uploaded_by = $1
ORDER BY created_at DESC
`

func (q *Queries) ListByUploader(ctx context.Context, uploadedBy uuid.UUID) ([]Metadata, error) {
	rows, err := q.db.Query(ctx, listByUploaderQuery, uploadedBy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Metadata
	for rows.Next() {
		item, err := scanMetadata(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const deleteQuery = `
DELETE FROM question_images
WHERE id = $1
`

func (q *Queries) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteQuery, id)
	return err
}

func scanImage(row pgx.Row) (Image, error) {
	var i Image
	err := row.Scan(&i.ID, &i.Filename, &i.ContentType, &i.Size, &i.Data, &i.UploadedBy, &i.CreatedAt)
	return i, err
}

func scanMetadata(row pgx.Row) (Metadata, error) {
	var m Metadata
	err := row.Scan(&m.ID, &m.Filename, &m.ContentType, &m.Size, &m.UploadedBy, &m.CreatedAt)
	return m, err
}
