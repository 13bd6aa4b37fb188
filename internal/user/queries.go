package user

import (
	"context"

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

type User struct {
	ID           uuid.UUID
	Name         pgtype.Text
	Email        string
	PasswordHash pgtype.Text
	AvatarUrl    pgtype.Text
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

type Auth struct {
	UserID     uuid.UUID
	Provider   string
	ProviderID string
}

const userColumns = `id, name, email, password_hash, avatar_url, created_at, updated_at`

type CreateParams struct {
	Name         pgtype.Text
	Email        string
	PasswordHash pgtype.Text
	AvatarUrl    pgtype.Text
}

const createQuery = `
INSERT INTO users (name, email, password_hash, avatar_url)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns

func (q *Queries) Create(ctx context.Context, arg CreateParams) (User, error) {
	row := q.db.QueryRow(ctx, createQuery, arg.Name, arg.Email, arg.PasswordHash, arg.AvatarUrl)
	return scanUser(row)
}

const getByIDQuery = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

func (q *Queries) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getByIDQuery, id))
}

const getByEmailQuery = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

func (q *Queries) GetByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getByEmailQuery, email))
}

const existsByEmailQuery = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`

func (q *Queries) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, existsByEmailQuery, email).Scan(&exists)
	return exists, err
}

type UpdateParams struct {
	ID        uuid.UUID
	Name      pgtype.Text
	AvatarUrl pgtype.Text
}

const updateQuery = `
UPDATE users
SET name = COALESCE(NULLIF($2, ''), name),
    avatar_url = COALESCE(NULLIF($3, ''), avatar_url),
    updated_at = now()
WHERE id = $1
RETURNING ` + userColumns

func (q *Queries) Update(ctx context.Context, arg UpdateParams) (User, error) {
	row := q.db.QueryRow(ctx, updateQuery, arg.ID, arg.Name.String, arg.AvatarUrl.String)
	return scanUser(row)
}

type CreateAuthParams struct {
	UserID     uuid.UUID
	Provider   string
	ProviderID string
}

const createAuthQuery = `
INSERT INTO user_auths (user_id, provider, provider_id)
VALUES ($1, $2, $3)
RETURNING user_id, provider, provider_id
`

func (q *Queries) CreateAuth(ctx context.Context, arg CreateAuthParams) (Auth, error) {
	var auth Auth
	err := q.db.QueryRow(ctx, createAuthQuery, arg.UserID, arg.Provider, arg.ProviderID).
		Scan(&auth.UserID, &auth.Provider, &auth.ProviderID)
	return auth, err
}

type AuthLookupParams struct {
	Provider   string
	ProviderID string
}

const getIDByAuthQuery = `SELECT user_id FROM user_auths WHERE provider = $1 AND provider_id = $2`

func (q *Queries) GetIDByAuth(ctx context.Context, arg AuthLookupParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, getIDByAuthQuery, arg.Provider, arg.ProviderID).Scan(&id)
	return id, err
}

const existsByAuthQuery = `SELECT EXISTS (SELECT 1 FROM user_auths WHERE provider = $1 AND provider_id = $2)`

func (q *Queries) ExistsByAuth(ctx context.Context, arg AuthLookupParams) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, existsByAuthQuery, arg.Provider, arg.ProviderID).Scan(&exists)
	return exists, err
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.AvatarUrl, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
