package user

import (
	"context"
	"errors"
	"net/url"
	"strings"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"gleamform/survey-backend/internal"
)

// GetFromContext extracts the authenticated user from request context
func GetFromContext(ctx context.Context) (*User, bool) {
	userData, ok := ctx.Value(internal.UserContextKey).(*User)
	return userData, ok
}

func (u User) GetID() uuid.UUID {
	return u.ID
}

type Querier interface {
	Create(ctx context.Context, arg CreateParams) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, arg UpdateParams) (User, error)
	CreateAuth(ctx context.Context, arg CreateAuthParams) (Auth, error)
	GetIDByAuth(ctx context.Context, arg AuthLookupParams) (uuid.UUID, error)
	ExistsByAuth(ctx context.Context, arg AuthLookupParams) (bool, error)
}

type Service struct {
	logger  *zap.Logger
	queries Querier
	tracer  trace.Tracer
}

func NewService(logger *zap.Logger, db DBTX) *Service {
	return &Service{
		logger:  logger,
		queries: New(db),
		tracer:  otel.Tracer("user/service"),
	}
}

func resolveAvatarUrl(name, avatarUrl string) string {
	if avatarUrl == "" {
		return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name)
	}
	return avatarUrl
}

// Create registers an email+password user. The password is stored only as a
// bcrypt hash.
func (s *Service) Create(ctx context.Context, name, email, password string) (User, error) {
	traceCtx, span := s.tracer.Start(ctx, "Create")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	email = strings.ToLower(strings.TrimSpace(email))

	exists, err := s.queries.ExistsByEmail(traceCtx, email)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "check user existence by email")
		span.RecordError(err)
		return User{}, err
	}
	if exists {
		return User{}, internal.ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		return User{}, err
	}

	created, err := s.queries.Create(traceCtx, CreateParams{
		Name:         pgtype.Text{String: name, Valid: name != ""},
		Email:        email,
		PasswordHash: pgtype.Text{String: string(hash), Valid: true},
		AvatarUrl:    pgtype.Text{String: resolveAvatarUrl(name, ""), Valid: true},
	})
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "create user")
		if errors.Is(err, databaseutil.ErrUniqueViolation) {
			return User{}, internal.ErrEmailAlreadyExists
		}
		span.RecordError(err)
		return User{}, err
	}

	logger.Info("Created new user", zap.String("user_id", created.ID.String()))
	return created, nil
}

// Authenticate checks an email+password pair. A missing user and a wrong
// password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	traceCtx, span := s.tracer.Start(ctx, "Authenticate")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	email = strings.ToLower(strings.TrimSpace(email))

	found, err := s.queries.GetByEmail(traceCtx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, internal.ErrInvalidCredentials
		}
		err = databaseutil.WrapDBError(err, logger, "get user by email")
		span.RecordError(err)
		return User{}, err
	}

	if !found.PasswordHash.Valid {
		// OAuth-only account, no password to match.
		return User{}, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash.String), []byte(password)); err != nil {
		return User{}, internal.ErrInvalidCredentials
	}

	return found, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	traceCtx, span := s.tracer.Start(ctx, "GetByID")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	found, err := s.queries.GetByID(traceCtx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, internal.ErrUserNotFound
		}
		err = databaseutil.WrapDBError(err, logger, "get user by id")
		span.RecordError(err)
		return User{}, err
	}
	return found, nil
}

// FindOrCreate resolves an OAuth identity to a local user, creating one on
// first login.
func (s *Service) FindOrCreate(ctx context.Context, name, email, avatarUrl, oauthProvider, oauthProviderID string) (uuid.UUID, error) {
	traceCtx, span := s.tracer.Start(ctx, "FindOrCreate")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	lookup := AuthLookupParams{Provider: oauthProvider, ProviderID: oauthProviderID}

	exists, err := s.queries.ExistsByAuth(traceCtx, lookup)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "check user existence by auth")
		span.RecordError(err)
		return uuid.UUID{}, err
	}

	if exists {
		existingUserID, err := s.queries.GetIDByAuth(traceCtx, lookup)
		if err != nil {
			err = databaseutil.WrapDBError(err, logger, "get user by auth")
			span.RecordError(err)
			return uuid.UUID{}, err
		}

		// Keep the profile fresh but never overwrite with blanks.
		_, err = s.queries.Update(traceCtx, UpdateParams{
			ID:        existingUserID,
			Name:      pgtype.Text{String: name, Valid: name != ""},
			AvatarUrl: pgtype.Text{String: avatarUrl, Valid: avatarUrl != ""},
		})
		if err != nil {
			err = databaseutil.WrapDBError(err, logger, "update existing user")
			span.RecordError(err)
			return uuid.UUID{}, err
		}

		logger.Debug("Updated existing user", zap.String("provider", oauthProvider), zap.String("user_id", existingUserID.String()))
		return existingUserID, nil
	}

	logger.Info("User not found, creating new user", zap.String("provider", oauthProvider))

	newUser, err := s.queries.Create(traceCtx, CreateParams{
		Name:      pgtype.Text{String: name, Valid: name != ""},
		Email:     strings.ToLower(strings.TrimSpace(email)),
		AvatarUrl: pgtype.Text{String: resolveAvatarUrl(name, avatarUrl), Valid: true},
	})
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "create user")
		span.RecordError(err)
		return uuid.UUID{}, err
	}

	_, err = s.queries.CreateAuth(traceCtx, CreateAuthParams{
		UserID:     newUser.ID,
		Provider:   oauthProvider,
		ProviderID: oauthProviderID,
	})
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "create auth")
		span.RecordError(err)
		return uuid.UUID{}, err
	}

	logger.Debug("Created auth entry", zap.String("user_id", newUser.ID.String()), zap.String("provider", oauthProvider))
	return newUser.ID, nil
}
