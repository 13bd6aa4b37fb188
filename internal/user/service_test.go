package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"gleamform/survey-backend/internal"
)

type mockQuerier struct {
	mock.Mock
}

func (m *mockQuerier) Create(ctx context.Context, arg CreateParams) (User, error) {
	args := m.Called(ctx, arg)
	u, _ := args.Get(0).(User)
	return u, args.Error(1)
}

func (m *mockQuerier) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(User)
	return u, args.Error(1)
}

func (m *mockQuerier) GetByEmail(ctx context.Context, email string) (User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(User)
	return u, args.Error(1)
}

func (m *mockQuerier) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockQuerier) Update(ctx context.Context, arg UpdateParams) (User, error) {
	args := m.Called(ctx, arg)
	u, _ := args.Get(0).(User)
	return u, args.Error(1)
}

func (m *mockQuerier) CreateAuth(ctx context.Context, arg CreateAuthParams) (Auth, error) {
	args := m.Called(ctx, arg)
	a, _ := args.Get(0).(Auth)
	return a, args.Error(1)
}

func (m *mockQuerier) GetIDByAuth(ctx context.Context, arg AuthLookupParams) (uuid.UUID, error) {
	args := m.Called(ctx, arg)
	id, _ := args.Get(0).(uuid.UUID)
	return id, args.Error(1)
}

func (m *mockQuerier) ExistsByAuth(ctx context.Context, arg AuthLookupParams) (bool, error) {
	args := m.Called(ctx, arg)
	return args.Bool(0), args.Error(1)
}

func newTestService(querier Querier) *Service {
	return &Service{
		logger:  zap.NewNop(),
		queries: querier,
		tracer:  noop.NewTracerProvider().Tracer("test"),
	}
}

func hashOf(t *testing.T, password string) pgtype.Text {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return pgtype.Text{String: string(hash), Valid: true}
}

func TestService_Create(t *testing.T) {
	t.Run("hashes the password and lowercases the email", func(t *testing.T) {
		querier := new(mockQuerier)
		querier.On("ExistsByEmail", mock.Anything, "pat@example.com").Return(false, nil)
		querier.On("Create", mock.Anything, mock.MatchedBy(func(arg CreateParams) bool {
			if arg.Email != "pat@example.com" || !arg.PasswordHash.Valid {
				return false
			}
			return bcrypt.CompareHashAndPassword([]byte(arg.PasswordHash.String), []byte("hunter2")) == nil
		})).Return(User{ID: uuid.New(), Email: "pat@example.com"}, nil)

		service := newTestService(querier)

		created, err := service.Create(context.Background(), "Pat", " Pat@Example.com ", "hunter2")
		require.NoError(t, err)
		require.Equal(t, "pat@example.com", created.Email)
		querier.AssertExpectations(t)
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		querier := new(mockQuerier)
		querier.On("ExistsByEmail", mock.Anything, "pat@example.com").Return(true, nil)

		service := newTestService(querier)

		_, err := service.Create(context.Background(), "Pat", "pat@example.com", "hunter2")
		require.ErrorIs(t, err, internal.ErrEmailAlreadyExists)
		querier.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestService_Authenticate(t *testing.T) {
	stored := User{
		ID:           uuid.New(),
		Email:        "pat@example.com",
		PasswordHash: pgtype.Text{},
	}

	t.Run("accepts the right password", func(t *testing.T) {
		u := stored
		u.PasswordHash = hashOf(t, "hunter2")

		querier := new(mockQuerier)
		querier.On("GetByEmail", mock.Anything, "pat@example.com").Return(u, nil)

		service := newTestService(querier)

		got, err := service.Authenticate(context.Background(), "pat@example.com", "hunter2")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
	})

	t.Run("rejects the wrong password", func(t *testing.T) {
		u := stored
		u.PasswordHash = hashOf(t, "hunter2")

		querier := new(mockQuerier)
		querier.On("GetByEmail", mock.Anything, "pat@example.com").Return(u, nil)

		service := newTestService(querier)

		_, err := service.Authenticate(context.Background(), "pat@example.com", "letmein")
		require.ErrorIs(t, err, internal.ErrInvalidCredentials)
	})

	t.Run("unknown email looks like a wrong password", func(t *testing.T) {
		querier := new(mockQuerier)
		querier.On("GetByEmail", mock.Anything, "nobody@example.com").Return(User{}, pgx.ErrNoRows)

		service := newTestService(querier)

		_, err := service.Authenticate(context.Background(), "nobody@example.com", "hunter2")
		require.ErrorIs(t, err, internal.ErrInvalidCredentials)
	})

	t.Run("rejects an oauth-only account", func(t *testing.T) {
		querier := new(mockQuerier)
		querier.On("GetByEmail", mock.Anything, "pat@example.com").Return(stored, nil)

		service := newTestService(querier)

		_, err := service.Authenticate(context.Background(), "pat@example.com", "hunter2")
		require.ErrorIs(t, err, internal.ErrInvalidCredentials)
	})
}

func TestService_FindOrCreate(t *testing.T) {
	lookup := AuthLookupParams{Provider: "google", ProviderID: "google-123"}

	t.Run("returns the existing user", func(t *testing.T) {
		existingID := uuid.New()

		querier := new(mockQuerier)
		querier.On("ExistsByAuth", mock.Anything, lookup).Return(true, nil)
		querier.On("GetIDByAuth", mock.Anything, lookup).Return(existingID, nil)
		querier.On("Update", mock.Anything, mock.Anything).Return(User{ID: existingID}, nil)

		service := newTestService(querier)

		id, err := service.FindOrCreate(context.Background(), "Pat", "pat@example.com", "", "google", "google-123")
		require.NoError(t, err)
		require.Equal(t, existingID, id)
		querier.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("creates a user and auth row on first login", func(t *testing.T) {
		newID := uuid.New()

		querier := new(mockQuerier)
		querier.On("ExistsByAuth", mock.Anything, lookup).Return(false, nil)
		querier.On("Create", mock.Anything, mock.MatchedBy(func(arg CreateParams) bool {
			return arg.Email == "pat@example.com" && !arg.PasswordHash.Valid
		})).Return(User{ID: newID, Email: "pat@example.com"}, nil)
		querier.On("CreateAuth", mock.Anything, CreateAuthParams{
			UserID:     newID,
			Provider:   "google",
			ProviderID: "google-123",
		}).Return(Auth{UserID: newID, Provider: "google", ProviderID: "google-123"}, nil)

		service := newTestService(querier)

		id, err := service.FindOrCreate(context.Background(), "Pat", "Pat@Example.com", "", "google", "google-123")
		require.NoError(t, err)
		require.Equal(t, newID, id)
		querier.AssertExpectations(t)
	})
}
