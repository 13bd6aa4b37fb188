package jwt

import (
	"context"
	"net/http"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gleamform/survey-backend/internal"
	"gleamform/survey-backend/internal/user"
)

const AccessTokenCookieName = "access_token"

type Parser interface {
	Parse(ctx context.Context, tokenString string) (user.User, error)
}

type Middleware struct {
	logger *zap.Logger
	tracer trace.Tracer

	validator     *validator.Validate
	problemWriter *problem.HttpWriter

	parser Parser
}

func NewMiddleware(logger *zap.Logger, validator *validator.Validate, problemWriter *problem.HttpWriter, parser Parser) *Middleware {
	return &Middleware{
		logger:        logger,
		tracer:        otel.Tracer("jwt/middleware"),
		validator:     validator,
		problemWriter: problemWriter,
		parser:        parser,
	}
}

// AuthenticateMiddleware resolves the caller from the Authorization header or
// the access token cookie and stores it in the request context.
func (m *Middleware) AuthenticateMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		traceCtx, span := m.tracer.Start(r.Context(), "AuthenticateMiddleware")
		defer span.End()
		logger := logutil.WithContext(traceCtx, m.logger)

		tokenString := r.Header.Get("Authorization")
		if tokenString == "" {
			cookie, err := r.Cookie(AccessTokenCookieName)
			if err != nil {
				m.problemWriter.WriteError(traceCtx, w, internal.ErrMissingAuthHeader, logger)
				return
			}
			tokenString = cookie.Value
		}

		caller, err := m.parser.Parse(traceCtx, tokenString)
		if err != nil {
			m.problemWriter.WriteError(traceCtx, w, internal.ErrInvalidJWTToken, logger)
			return
		}

		ctx := context.WithValue(traceCtx, internal.UserContextKey, &caller)
		next(w, r.WithContext(ctx))
	}
}
