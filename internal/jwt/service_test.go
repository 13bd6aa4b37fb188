package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"gleamform/survey-backend/internal/user"
)

func newTestService(accessExpiration time.Duration) *Service {
	return &Service{
		logger:                 zap.NewNop(),
		tracer:                 noop.NewTracerProvider().Tracer("test"),
		secret:                 "test-secret",
		accessTokenExpiration:  accessExpiration,
		refreshTokenExpiration: time.Hour,
	}
}

func TestService_NewAndParse(t *testing.T) {
	service := newTestService(time.Minute)

	u := user.User{
		ID:        uuid.New(),
		Name:      pgtype.Text{String: "Pat", Valid: true},
		Email:     "pat@example.com",
		AvatarUrl: pgtype.Text{String: "https://example.com/a.png", Valid: true},
	}

	token, err := service.New(context.Background(), u)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := service.Parse(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	require.Equal(t, u.ID, parsed.ID)
	require.Equal(t, u.Email, parsed.Email)
	require.Equal(t, "Pat", parsed.Name.String)
}

func TestService_Parse_RejectsExpired(t *testing.T) {
	service := newTestService(-time.Minute)

	token, err := service.New(context.Background(), user.User{ID: uuid.New()})
	require.NoError(t, err)

	_, err = service.Parse(context.Background(), token)
	require.Error(t, err)
}

func TestService_Parse_RejectsWrongSecret(t *testing.T) {
	issuer := newTestService(time.Minute)
	verifier := newTestService(time.Minute)
	verifier.secret = "other-secret"

	token, err := issuer.New(context.Background(), user.User{ID: uuid.New()})
	require.NoError(t, err)

	_, err = verifier.Parse(context.Background(), token)
	require.Error(t, err)
}

func TestService_StateRoundTrip(t *testing.T) {
	service := newTestService(time.Minute)

	state, err := service.NewState(context.Background(), "https://app.example.com/after-login")
	require.NoError(t, err)

	redirectURL, err := service.ParseState(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, "https://app.example.com/after-login", redirectURL)
}
