package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/taskhive/taskhive-api/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/gitlab"
	"golang.org/x/oauth2/google"
)

// UserInfo is the provider-independent identity the auth handler consumes.
type UserInfo struct {
	Email     string
	Name      string
	AvatarURL string
	ID        string
	Provider  string
}

type Provider interface {
	GetConsentURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*UserInfo, error)
	Name() string
}

// GenerateState mints an unguessable value for the OAuth state parameter;
// the auth handler reuses it for one-shot exchange codes.
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// The three providers differ only in endpoint, scopes, userinfo URL and
// response shape, so they share one implementation parameterized by spec.
type providerSpec struct {
	name        string
	scopes      []string
	endpoint    oauth2.Endpoint
	userInfoURL string
	decode      func(ctx context.Context, client *http.Client, body *json.Decoder) (*UserInfo, error)
}

type oauthProvider struct {
	spec   providerSpec
	config *oauth2.Config
}

func newProvider(spec providerSpec, cfg config.OAuthConfig) *oauthProvider {
	return &oauthProvider{
		spec: spec,
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       spec.scopes,
			Endpoint:     spec.endpoint,
		},
	}
}

func (p *oauthProvider) Name() string {
	return p.spec.name
}

func (p *oauthProvider) GetConsentURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (p *oauthProvider) ExchangeCode(ctx context.Context, code string) (*UserInfo, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	client := p.config.Client(ctx, token)

	resp, err := client.Get(p.spec.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s api returned status %d", p.spec.name, resp.StatusCode)
	}

	return p.spec.decode(ctx, client, json.NewDecoder(resp.Body))
}

func NewGitHubProvider(cfg config.OAuthConfig) Provider {
	return newProvider(providerSpec{
		name:        "github",
		scopes:      []string{"user:email", "read:user"},
		endpoint:    github.Endpoint,
		userInfoURL: "https://api.github.com/user",
		decode: func(ctx context.Context, client *http.Client, body *json.Decoder) (*UserInfo, error) {
			var ghUser struct {
				ID        int    `json:"id"`
				Login     string `json:"login"`
				Name      string `json:"name"`
				Email     string `json:"email"`
				AvatarURL string `json:"avatar_url"`
			}
			if err := body.Decode(&ghUser); err != nil {
				return nil, fmt.Errorf("failed to decode user info: %w", err)
			}

			email := ghUser.Email
			if email == "" {
				var err error
				email, err = githubPrimaryEmail(ctx, client)
				if err != nil {
					return nil, err
				}
			}

			name := ghUser.Name
			if name == "" {
				name = ghUser.Login
			}

			return &UserInfo{
				Email:     email,
				Name:      name,
				AvatarURL: ghUser.AvatarURL,
				ID:        fmt.Sprintf("%d", ghUser.ID),
				Provider:  "github",
			}, nil
		},
	}, cfg)
}

// GitHub hides the email when the profile email is private; fall back to
// the emails endpoint and prefer the primary verified address.
func githubPrimaryEmail(ctx context.Context, client *http.Client) (string, error) {
	resp, err := client.Get("https://api.github.com/user/emails")
	if err != nil {
		return "", fmt.Errorf("failed to get user emails: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return "", fmt.Errorf("failed to decode emails: %w", err)
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email, nil
		}
	}
	if len(emails) > 0 {
		return emails[0].Email, nil
	}

	return "", fmt.Errorf("no email found")
}

func NewGitLabProvider(cfg config.OAuthConfig) Provider {
	return newProvider(providerSpec{
		name:        "gitlab",
		scopes:      []string{"read_user"},
		endpoint:    gitlab.Endpoint,
		userInfoURL: "https://gitlab.com/api/v4/user",
		decode: func(ctx context.Context, client *http.Client, body *json.Decoder) (*UserInfo, error) {
			var glUser struct {
				ID        int    `json:"id"`
				Username  string `json:"username"`
				Name      string `json:"name"`
				Email     string `json:"email"`
				AvatarURL string `json:"avatar_url"`
			}
			if err := body.Decode(&glUser); err != nil {
				return nil, fmt.Errorf("failed to decode user info: %w", err)
			}

			name := glUser.Name
			if name == "" {
				name = glUser.Username
			}

			return &UserInfo{
				Email:     glUser.Email,
				Name:      name,
				AvatarURL: glUser.AvatarURL,
				ID:        fmt.Sprintf("%d", glUser.ID),
				Provider:  "gitlab",
			}, nil
		},
	}, cfg)
}

func NewGoogleProvider(cfg config.OAuthConfig) Provider {
	return newProvider(providerSpec{
		name: "google",
		scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		endpoint:    google.Endpoint,
		userInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		decode: func(ctx context.Context, client *http.Client, body *json.Decoder) (*UserInfo, error) {
			var gUser struct {
				ID      string `json:"id"`
				Email   string `json:"email"`
				Name    string `json:"name"`
				Picture string `json:"picture"`
			}
			if err := body.Decode(&gUser); err != nil {
				return nil, fmt.Errorf("failed to decode user info: %w", err)
			}

			return &UserInfo{
				Email:     gUser.Email,
				Name:      gUser.Name,
				AvatarURL: gUser.Picture,
				ID:        gUser.ID,
				Provider:  "google",
			}, nil
		},
	}, cfg)
}
