package jwt

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/golang-jwt/jwt/v5"

	"gleamform/survey-backend/internal/user"
)

const Issuer = "gleamform"

type Querier interface {
	GetUserIDByTokenID(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	Create(ctx context.Context, arg CreateParams) (RefreshToken, error)
	Inactivate(ctx context.Context, id uuid.UUID) (int64, error)
	Delete(ctx context.Context) (int64, error)
	GetRefreshTokenByID(ctx context.Context, id uuid.UUID) (RefreshToken, error)
}

type Service struct {
	logger                 *zap.Logger
	secret                 string
	accessTokenExpiration  time.Duration
	refreshTokenExpiration time.Duration
	queries                Querier
	tracer                 trace.Tracer
}

func NewService(
	logger *zap.Logger,
	db DBTX,
	secret string,
	accessTokenExpiration time.Duration,
	refreshTokenExpiration time.Duration,
) *Service {
	return &Service{
		logger:                 logger,
		queries:                New(db),
		tracer:                 otel.Tracer("jwt/service"),
		secret:                 secret,
		accessTokenExpiration:  accessTokenExpiration,
		refreshTokenExpiration: refreshTokenExpiration,
	}
}

type claims struct {
	ID        uuid.UUID
	Name      string
	Email     string
	AvatarUrl string
	jwt.RegisteredClaims
}

// stateClaims carries the post-login redirect URL through the OAuth state
// parameter as a signed JWT, so the callback can trust it.
type stateClaims struct {
	RedirectURL string

	jwt.RegisteredClaims
}

func (s Service) New(ctx context.Context, user user.User) (string, error) {
	traceCtx, span := s.tracer.Start(ctx, "New")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	jwtID := uuid.New()

	claims := &claims{
		ID:        jwtID,
		Name:      user.Name.String,
		Email:     user.Email,
		AvatarUrl: user.AvatarUrl.String,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   user.ID.String(), // user id
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.accessTokenExpiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			ID:        jwtID.String(), // jwt id
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.secret))
	if err != nil {
		logger.Error("failed to sign token", zap.Error(err), zap.String("user_id", user.ID.String()))
		return "", err
	}

	logger.Debug("Generated JWT token", zap.String("id", user.ID.String()), zap.String("email", user.Email))
	return tokenString, nil
}

func (s Service) NewState(ctx context.Context, redirectURL string) (string, error) {
	traceCtx, span := s.tracer.Start(ctx, "NewState")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	id := uuid.New()
	claims := &stateClaims{
		RedirectURL: redirectURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   id.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
			NotBefore: jwt.NewNumericDate(time.Now()),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        id.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.secret))
	if err != nil {
		logger.Error("failed to sign state token", zap.Error(err))
		return "", err
	}

	logger.Debug("Generated OAuth state token", zap.String("redirect_url", redirectURL))
	return tokenString, nil
}

func (s Service) Parse(ctx context.Context, tokenString string) (user.User, error) {
	traceCtx, span := s.tracer.Start(ctx, "Parse")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	secret := func(token *jwt.Token) (interface{}, error) {
		return []byte(s.secret), nil
	}

	tokenClaims := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, tokenClaims, secret)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			logger.Warn("Failed to parse JWT token due to malformed structure, this is not a JWT token", zap.String("error", err.Error()))
			return user.User{}, err
		case errors.Is(err, jwt.ErrSignatureInvalid):
			logger.Warn("Failed to parse JWT token due to invalid signature", zap.String("error", err.Error()))
			return user.User{}, err
		case errors.Is(err, jwt.ErrTokenExpired):
			expiredTime, getErr := token.Claims.GetExpirationTime()
			if getErr != nil {
				logger.Error("Failed to parse JWT token due to expired timestamp", zap.String("error", getErr.Error()))
				return user.User{}, err
			}
			logger.Warn("Failed to parse JWT token due to expired timestamp", zap.String("error", err.Error()), zap.Time("expired_at", expiredTime.Time))
			return user.User{}, err
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			notBeforeTime, getErr := token.Claims.GetNotBefore()
			if getErr != nil {
				logger.Error("Failed to parse JWT token due to not valid yet timestamp", zap.String("error", getErr.Error()))
				return user.User{}, err
			}
			logger.Warn("Failed to parse JWT token due to not valid yet timestamp", zap.String("error", err.Error()), zap.Time("not_before", notBeforeTime.Time))
			return user.User{}, err
		default:
			logger.Error("Failed to parse JWT token", zap.Error(err))
			return user.User{}, err
		}
	}

	// Parse user ID from subject
	userID, err := uuid.Parse(tokenClaims.Subject)
	if err != nil {
		logger.Error("Failed to parse user ID from JWT subject", zap.Error(err))
		return user.User{}, err
	}

	return user.User{
		ID:        userID,
		Name:      pgtype.Text{String: tokenClaims.Name, Valid: true},
		Email:     tokenClaims.Email,
		AvatarUrl: pgtype.Text{String: tokenClaims.AvatarUrl, Valid: true},
	}, nil
}

// ParseState parses the state jwt payload to get redirect URL
func (s Service) ParseState(ctx context.Context, tokenString string) (string, error) {
	traceCtx, span := s.tracer.Start(ctx, "ParseState")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	secret := func(token *jwt.Token) (interface{}, error) {
		return []byte(s.secret), nil
	}

	tokenClaims := &stateClaims{}
	_, err := jwt.ParseWithClaims(tokenString, tokenClaims, secret)
	if err != nil {
		logger.Warn("Failed to parse OAuth state token", zap.String("error", err.Error()))
		return "", err
	}

	logger.Debug("Successfully parsed OAuth state token", zap.String("redirect_url", tokenClaims.RedirectURL))
	return tokenClaims.RedirectURL, nil
}

func (s Service) GetUserIDByRefreshToken(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	traceCtx, span := s.tracer.Start(ctx, "GetUserIDByRefreshToken")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	userID, err := s.queries.GetUserIDByTokenID(ctx, id)
	if err != nil {
		logger.Error("failed to get user id by refresh token", zap.Error(err))
		return uuid.UUID{}, err
	}

	return userID, nil
}

func (s Service) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (RefreshToken, error) {
	traceCtx, span := s.tracer.Start(ctx, "GenerateRefreshToken")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	rowsAffected, err := s.DeleteExpiredRefreshTokens(traceCtx)
	if err != nil {
		logger.Error("failed to delete expired refresh tokens", zap.Error(err))
	}
	if rowsAffected > 0 {
		logger.Info("deleted expired refresh tokens", zap.Int64("rows_affected", rowsAffected))
	}

	params := CreateParams{
		UserID: userID,
		ExpirationDate: pgtype.Timestamptz{
			Time:  time.Now().Add(s.refreshTokenExpiration),
			Valid: true,
		},
	}
	refreshToken, err := s.queries.Create(traceCtx, params)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "generate refresh token")
		span.RecordError(err)
		return RefreshToken{}, err
	}
	return refreshToken, nil
}

func (s Service) InactivateRefreshToken(ctx context.Context, id uuid.UUID) error {
	traceCtx, span := s.tracer.Start(ctx, "InactivateRefreshToken")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	_, err := s.queries.Inactivate(traceCtx, id)
	if err != nil {
		err = databaseutil.WrapDBErrorWithKeyValue(err, "refresh_token", "id", id.String(), logger, "inactivate refresh token")
		return err
	}

	return nil
}

func (s Service) DeleteExpiredRefreshTokens(ctx context.Context) (int64, error) {
	traceCtx, span := s.tracer.Start(ctx, "DeleteExpiredRefreshTokens")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	rowsAffected, err := s.queries.Delete(traceCtx)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "delete expired refresh tokens")
		span.RecordError(err)
		return 0, err
	}

	return rowsAffected, nil
}

func (s Service) GetRefreshTokenByID(ctx context.Context, id uuid.UUID) (RefreshToken, error) {
	traceCtx, span := s.tracer.Start(ctx, "GetRefreshTokenByID")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	refreshToken, err := s.queries.GetRefreshTokenByID(traceCtx, id)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "get refresh token by id")
		span.RecordError(err)
		return RefreshToken{}, err
	}

	return refreshToken, nil
}
