package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	handlerutil "github.com/NYCU-SDC/summer/pkg/handler"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"gleamform/survey-backend/internal"
	"gleamform/survey-backend/internal/auth/oauthprovider"
	"gleamform/survey-backend/internal/jwt"
	"gleamform/survey-backend/internal/user"
)

const (
	AccessTokenCookieName  = "access_token"
	RefreshTokenCookieName = "refresh_token"
)

type JWTIssuer interface {
	New(ctx context.Context, user user.User) (string, error)
	NewState(ctx context.Context, redirectURL string) (string, error)
	Parse(ctx context.Context, tokenString string) (user.User, error)
	ParseState(ctx context.Context, tokenString string) (string, error)
	GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (jwt.RefreshToken, error)
	GetUserIDByRefreshToken(ctx context.Context, refreshTokenID uuid.UUID) (uuid.UUID, error)
}

type JWTStore interface {
	InactivateRefreshToken(ctx context.Context, id uuid.UUID) error
	GetRefreshTokenByID(ctx context.Context, id uuid.UUID) (jwt.RefreshToken, error)
}

type UserStore interface {
	Create(ctx context.Context, name, email, password string) (user.User, error)
	Authenticate(ctx context.Context, email, password string) (user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	FindOrCreate(ctx context.Context, name, email, avatarUrl, oauthProvider, oauthProviderID string) (uuid.UUID, error)
}

type OAuthProvider interface {
	Name() string
	Config() *oauth2.Config
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	GetUserInfo(ctx context.Context, token *oauth2.Token) (user.User, user.Auth, string, error)
}

type SignUpRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SessionResponse struct {
	User user.Response `json:"user"`
}

type CallBackInfo struct {
	code       string
	oauthError string
	redirectTo string
}

type Handler struct {
	logger *zap.Logger
	tracer trace.Tracer

	baseURL string
	devMode bool

	validator     *validator.Validate
	problemWriter *problem.HttpWriter

	userStore UserStore
	jwtIssuer JWTIssuer
	jwtStore  JWTStore
	provider  map[string]OAuthProvider

	accessTokenExpiration  time.Duration
	refreshTokenExpiration time.Duration
}

func NewHandler(
	logger *zap.Logger,
	validator *validator.Validate,
	problemWriter *problem.HttpWriter,
	userStore UserStore,
	jwtIssuer JWTIssuer,
	jwtStore JWTStore,
	providers map[string]OAuthProvider,

	baseURL string,
	devMode bool,

	accessTokenExpiration time.Duration,
	refreshTokenExpiration time.Duration,
) *Handler {
	return &Handler{
		logger: logger,
		tracer: otel.Tracer("auth/handler"),

		baseURL: baseURL,
		devMode: devMode,

		validator:     validator,
		problemWriter: problemWriter,

		userStore: userStore,
		jwtIssuer: jwtIssuer,
		jwtStore:  jwtStore,
		provider:  providers,

		accessTokenExpiration:  accessTokenExpiration,
		refreshTokenExpiration: refreshTokenExpiration,
	}
}

// SignUp registers an email+password account and opens a session.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "SignUp")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	var req SignUpRequest
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	created, err := h.userStore.Create(traceCtx, req.Name, req.Email, req.Password)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	if err := h.openSession(traceCtx, w, created.ID); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusCreated, SessionResponse{User: user.ToResponse(created)})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "Login")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	var req LoginRequest
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	authenticated, err := h.userStore.Authenticate(traceCtx, req.Email, req.Password)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	if err := h.openSession(traceCtx, w, authenticated.ID); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, SessionResponse{User: user.ToResponse(authenticated)})
}

// Oauth2Start initiates the OAuth2 flow by redirecting the user to the provider's authorization URL
func (h *Handler) Oauth2Start(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "Oauth2Start")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	providerName := r.PathValue("provider")
	provider := h.provider[providerName]
	if provider == nil {
		h.problemWriter.WriteError(traceCtx, w, fmt.Errorf("%w: provider not found: %s", internal.ErrProviderNotFound, providerName), logger)
		return
	}

	redirectURL := r.URL.Query().Get("r")

	state, err := h.jwtIssuer.NewState(traceCtx, redirectURL)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	authURL := provider.Config().AuthCodeURL(state, oauth2.AccessTypeOffline)
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "Callback")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	providerName := r.PathValue("provider")
	provider := h.provider[providerName]
	if provider == nil {
		h.problemWriter.WriteError(traceCtx, w, fmt.Errorf("%w: provider not found: %s", internal.ErrProviderNotFound, providerName), logger)
		return
	}

	callbackInfo, err := h.GetCallBackInfo(traceCtx, r.URL)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, fmt.Errorf("%w: %v", internal.ErrInvalidCallbackInfo, err), logger)
		return
	}

	if callbackInfo.oauthError != "" {
		h.problemWriter.WriteError(traceCtx, w, fmt.Errorf("%w: %s", internal.ErrOAuthError, callbackInfo.oauthError), logger)
		return
	}

	token, err := provider.Exchange(traceCtx, callbackInfo.code)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, fmt.Errorf("%w: %v", internal.ErrOAuthError, err), logger)
		return
	}

	userInfo, auth, email, err := provider.GetUserInfo(traceCtx, token)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	userID, err := h.userStore.FindOrCreate(traceCtx, userInfo.Name.String, email, userInfo.AvatarUrl.String, providerName, auth.ProviderID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	if err := h.openSession(traceCtx, w, userID); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	redirectURL := callbackInfo.redirectTo
	if redirectURL == "" {
		redirectURL = "/"
	}

	http.Redirect(w, r, redirectURL, http.StatusFound)
}

// openSession mints an access token and a refresh token row for the user and
// sets both cookies.
func (h *Handler) openSession(ctx context.Context, w http.ResponseWriter, userID uuid.UUID) error {
	traceCtx, span := h.tracer.Start(ctx, "openSession")
	defer span.End()

	userEntity, err := h.userStore.GetByID(traceCtx, userID)
	if err != nil {
		return err
	}

	jwtToken, err := h.jwtIssuer.New(traceCtx, userEntity)
	if err != nil {
		return err
	}

	refreshToken, err := h.jwtIssuer.GenerateRefreshToken(traceCtx, userID)
	if err != nil {
		return err
	}

	baseURL, err := url.Parse(h.baseURL)
	if err != nil {
		return internal.ErrInternalServerError
	}

	h.setAccessAndRefreshCookies(w, baseURL.Host, jwtToken, refreshToken.ID.String())
	return nil
}

func (h *Handler) GetCallBackInfo(ctx context.Context, url *url.URL) (CallBackInfo, error) {
	code := url.Query().Get("code")
	state := url.Query().Get("state")
	oauthError := url.Query().Get("error")

	redirectURL, err := h.jwtIssuer.ParseState(ctx, state)
	if err != nil {
		return CallBackInfo{}, err
	}

	return CallBackInfo{
		code:       code,
		oauthError: oauthError,
		redirectTo: redirectURL,
	}, nil
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "Logout")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	// Inactivate the current refresh token from cookie
	refreshTokenCookie, err := r.Cookie(RefreshTokenCookieName)
	if err == nil {
		refreshTokenID, parseErr := uuid.Parse(refreshTokenCookie.Value)
		if parseErr == nil {
			if inactivateErr := h.jwtStore.InactivateRefreshToken(traceCtx, refreshTokenID); inactivateErr != nil {
				logger.Warn("Failed to inactivate refresh token during logout", zap.Error(inactivateErr))
			}
		}
	}

	h.clearAccessAndRefreshCookies(w)

	handlerutil.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "RefreshToken")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	refreshTokenCookie, err := r.Cookie(RefreshTokenCookieName)
	if err != nil || refreshTokenCookie.Value == "" {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrMissingAuthHeader, logger)
		return
	}

	refreshTokenID, err := uuid.Parse(refreshTokenCookie.Value)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrInvalidAuthHeaderFormat, logger)
		return
	}

	userID, err := h.jwtIssuer.GetUserIDByRefreshToken(traceCtx, refreshTokenID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrInvalidRefreshToken, logger)
		return
	}

	// Rotate: the old token is dead the moment it is used.
	err = h.jwtStore.InactivateRefreshToken(traceCtx, refreshTokenID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrInternalServerError, logger)
		return
	}

	if err := h.openSession(traceCtx, w, userID); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// setAccessAndRefreshCookies sets the access/refresh cookies with HTTP-only and secure flags
func (h *Handler) setAccessAndRefreshCookies(w http.ResponseWriter, domain, accessToken, refreshTokenID string) {
	var sameSite http.SameSite
	if h.devMode {
		sameSite = http.SameSiteNoneMode
	} else {
		sameSite = http.SameSiteStrictMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookieName,
		Value:    accessToken,
		HttpOnly: true,
		Secure:   true,
		SameSite: sameSite,
		Path:     "/",
		MaxAge:   int(h.accessTokenExpiration.Seconds()),
		Domain:   domain,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookieName,
		Value:    refreshTokenID,
		HttpOnly: true,
		Secure:   true,
		SameSite: sameSite,
		Path:     "/api/auth/refresh",
		MaxAge:   int(h.refreshTokenExpiration.Seconds()),
		Domain:   domain,
	})
}

// clearAccessAndRefreshCookies sets the access/refresh cookies to empty values and negative MaxAge
// negative means the cookies will be deleted, zero means the cookies will expire at the end of the session
func (h *Handler) clearAccessAndRefreshCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookieName,
		Value:    "",
		Path:     "/api/auth/refresh",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// CreateAuthProviders creates OAuth providers for user authentication (login)
func CreateAuthProviders(
	logger *zap.Logger,
	baseURL string,
	googleOauthConfig oauthprovider.GoogleOauth,
) map[string]OAuthProvider {
	providers := make(map[string]OAuthProvider)

	if googleOauthConfig.ClientID != "" && googleOauthConfig.ClientSecret != "" {
		callbackURL := fmt.Sprintf("%s/api/auth/login/oauth/google/callback", baseURL)
		providers["google"] = oauthprovider.NewGoogleConfig(
			googleOauthConfig.ClientID,
			googleOauthConfig.ClientSecret,
			callbackURL,
		)
		logger.Info("Google OAuth provider configured for auth", zap.String("callbackURL", callbackURL))
	}

	if len(providers) == 0 {
		logger.Warn("No OAuth providers configured for authentication")
	}

	return providers
}
