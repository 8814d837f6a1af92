package config

import (
	"fmt"
	"os"
)

// OAuthProviderConfig holds the client credentials for one provider.
type OAuthProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// AuthConfig holds every secret and knob the auth layer needs.
type AuthConfig struct {
	TokenSecret string
	OTPSalt     string
	TOTPIssuer  string
	FrontendURL string
	Google      OAuthProviderConfig
	GitHub      OAuthProviderConfig
}

// LoadAuthConfig loads auth configuration from environment variables.
// TOKEN_SECRET and OTP_HASH_SALT are mandatory; there are no insecure
// defaults for either.
func LoadAuthConfig() (*AuthConfig, error) {
	tokenSecret := os.Getenv("TOKEN_SECRET")
	if tokenSecret == "" {
		return nil, fmt.Errorf("TOKEN_SECRET not set in environment")
	}
	otpSalt := os.Getenv("OTP_HASH_SALT")
	if otpSalt == "" {
		return nil, fmt.Errorf("OTP_HASH_SALT not set in environment")
	}

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}
	issuer := os.Getenv("TOTP_ISSUER")
	if issuer == "" {
		issuer = "JobBoard"
	}
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &AuthConfig{
		TokenSecret: tokenSecret,
		OTPSalt:     otpSalt,
		TOTPIssuer:  issuer,
		FrontendURL: frontendURL,
		Google: OAuthProviderConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  baseURL + "/api/v1/auth/google/callback",
		},
		GitHub: OAuthProviderConfig{
			ClientID:     os.Getenv("GITHUB_CLIENT_ID"),
			ClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
			RedirectURL:  baseURL + "/api/v1/auth/github/callback",
		},
	}, nil
}
