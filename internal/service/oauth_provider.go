package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"job_board/internal/config"
	"job_board/internal/model"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// Profile is the subset of a provider's user info the auth layer needs.
type Profile struct {
	Provider       string
	ProviderUserID string
	Email          string
	EmailVerified  bool
	Name           string
}

// OAuthProvider wraps one upstream identity provider. Implementations
// exist for Google and GitHub; tests substitute fakes.
type OAuthProvider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error)
}

const profileBodyLimit = 1 << 20

type googleProvider struct {
	cfg *oauth2.Config
}

// NewGoogleProvider builds the Google authorization-code-flow provider
func NewGoogleProvider(pc config.OAuthProviderConfig) OAuthProvider {
	return &googleProvider{cfg: &oauth2.Config{
		ClientID:     pc.ClientID,
		ClientSecret: pc.ClientSecret,
		RedirectURL:  pc.RedirectURL,
		Endpoint:     endpoints.Google,
		Scopes:       []string{"openid", "email", "profile"},
	}}
}

func (p *googleProvider) Name() string { return model.ProviderGoogle }

func (p *googleProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (p *googleProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.cfg.Exchange(ctx, code)
}

func (p *googleProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	var info struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
	}
	if err := fetchJSON(ctx, p.cfg.Client(ctx, token), "https://www.googleapis.com/oauth2/v2/userinfo", &info); err != nil {
		return nil, err
	}
	return &Profile{
		Provider:       model.ProviderGoogle,
		ProviderUserID: info.ID,
		Email:          info.Email,
		EmailVerified:  info.VerifiedEmail,
		Name:           info.Name,
	}, nil
}

type githubProvider struct {
	cfg *oauth2.Config
}

// NewGitHubProvider builds the GitHub authorization-code-flow provider
func NewGitHubProvider(pc config.OAuthProviderConfig) OAuthProvider {
	return &githubProvider{cfg: &oauth2.Config{
		ClientID:     pc.ClientID,
		ClientSecret: pc.ClientSecret,
		RedirectURL:  pc.RedirectURL,
		Endpoint:     endpoints.GitHub,
		Scopes:       []string{"read:user", "user:email"},
	}}
}

func (p *githubProvider) Name() string { return model.ProviderGitHub }

func (p *githubProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state)
}

func (p *githubProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.cfg.Exchange(ctx, code)
}

func (p *githubProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	client := p.cfg.Client(ctx, token)

	var user struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := fetchJSON(ctx, client, "https://api.github.com/user", &user); err != nil {
		return nil, err
	}

	profile := &Profile{
		Provider:       model.ProviderGitHub,
		ProviderUserID: fmt.Sprintf("%d", user.ID),
		Email:          user.Email,
		Name:           user.Name,
	}

	// The public profile email may be unset or unverified; the emails
	// endpoint is authoritative.
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := fetchJSON(ctx, client, "https://api.github.com/user/emails", &emails); err != nil {
		return nil, err
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			profile.Email = e.Email
			profile.EmailVerified = true
			break
		}
	}
	return profile, nil
}

func fetchJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, profileBodyLimit))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
