package oauthprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"gleamform/survey-backend/internal/user"
)

type GoogleConfig struct {
	config *oauth2.Config
}

type GoogleOauth struct {
	ClientID     string `yaml:"client_id"     envconfig:"GOOGLE_OAUTH_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" envconfig:"GOOGLE_OAUTH_CLIENT_SECRET"`
}

func NewGoogleConfig(clientID, clientSecret, redirectURL string) *GoogleConfig {
	return &GoogleConfig{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"openid",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: googleoauth.Endpoint,
		},
	}
}

func (g *GoogleConfig) Name() string {
	return "google"
}

func (g *GoogleConfig) Config() *oauth2.Config {
	return g.config
}

func (g *GoogleConfig) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return g.config.Exchange(ctx, code)
}

// GoogleUserInfo represents the response from Google's userinfo API
type GoogleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GetUserInfo fetches user information from Google's API
func (g *GoogleConfig) GetUserInfo(ctx context.Context, token *oauth2.Token) (user.User, user.Auth, string, error) {
	client := g.config.Client(ctx, token)

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return user.User{}, user.Auth{}, "", fmt.Errorf("failed to get Google user info: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return user.User{}, user.Auth{}, "", fmt.Errorf("failed to read Google user info: %v", err)
	}

	var googleUser GoogleUserInfo
	err = json.Unmarshal(body, &googleUser)
	if err != nil {
		return user.User{}, user.Auth{}, "", fmt.Errorf("failed to unmarshal Google user info: %v", err)
	}

	userInfo := user.User{
		Name:      pgtype.Text{String: googleUser.Name, Valid: googleUser.Name != ""},
		Email:     googleUser.Email,
		AvatarUrl: pgtype.Text{String: googleUser.Picture, Valid: googleUser.Picture != ""},
	}

	authInfo := user.Auth{
		Provider:   "google",
		ProviderID: googleUser.ID,
	}

	return userInfo, authInfo, googleUser.Email, nil
}
