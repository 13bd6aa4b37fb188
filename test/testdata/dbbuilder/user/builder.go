package userbuilder

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"

	"gleamform/survey-backend/internal/user"
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

func (b Builder) Queries() *user.Queries {
	return user.New(b.db)
}

func (b Builder) Create(opts ...Option) user.User {
	p := &FactoryParams{
		Name:  testdata.RandomName(),
		Email: testdata.RandomEmail(),
	}
	for _, opt := range opts {
		opt(p)
	}

	passwordHash := pgtype.Text{Valid: false}
	if p.PasswordHash != "" {
		passwordHash = pgtype.Text{String: p.PasswordHash, Valid: true}
	}

	created, err := b.Queries().Create(context.Background(), user.CreateParams{
		Name:         pgtype.Text{String: p.Name, Valid: p.Name != ""},
		Email:        p.Email,
		PasswordHash: passwordHash,
	})
	require.NoError(b.t, err)

	return created
}
