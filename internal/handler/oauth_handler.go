package handler

import (
	"errors"
	"log"
	"net/http"
	"net/url"

	"job_board/internal/service"

	"github.com/gin-gonic/gin"
)

// OAuthHandler handles the browser-facing half of the OAuth flow
type OAuthHandler struct {
	service     service.OAuthService
	frontendURL string
}

// NewOAuthHandler creates a new OAuthHandler
func NewOAuthHandler(s service.OAuthService, frontendURL string) *OAuthHandler {
	return &OAuthHandler{service: s, frontendURL: frontendURL}
}

// Begin redirects the browser to the provider's consent page.
func (h *OAuthHandler) Begin(provider string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.begin(c, provider)
	}
}

func (h *OAuthHandler) begin(c *gin.Context, provider string) {
	returnURL := c.Query("return_url")
	role := c.Query("role")

	authURL, err := h.service.BeginAuth(c.Request.Context(), provider, returnURL, role)
	if err != nil {
		if errors.Is(err, service.ErrOAuthProviderUnknown) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown provider"})
			return
		}
		log.Printf("ERROR: oauth begin failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start login"})
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// Callback completes the flow and redirects back to the frontend. On
// failure only the coarse reason code leaves the server; the cause is
// logged here.
func (h *OAuthHandler) Callback(provider string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.callback(c, provider)
	}
}

func (h *OAuthHandler) callback(c *gin.Context, provider string) {
	login, err := h.service.Callback(c.Request.Context(), provider, c.Query("code"), c.Query("state"))
	if err != nil {
		reason := service.OAuthReasonState
		var flowErr *service.OAuthFlowError
		if errors.As(err, &flowErr) {
			reason = flowErr.Reason
		}
		log.Printf("WARN: oauth callback failed for %s: %v", provider, err)
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/auth/error?reason="+url.QueryEscape(reason))
		return
	}

	dest := login.ReturnURL
	if dest == "" {
		dest = h.frontendURL + "/auth/success"
	}
	q := url.Values{}
	q.Set("access_token", login.Tokens.AccessToken)
	q.Set("refresh_token", login.Tokens.RefreshToken)
	c.Redirect(http.StatusTemporaryRedirect, dest+"?"+q.Encode())
}

// RegisterOAuthRoutes registers provider login routes. Providers get
// static routes rather than a :provider param so they can coexist with
// the other /auth endpoints in gin's route tree.
func (h *OAuthHandler) RegisterOAuthRoutes(rg *gin.RouterGroup, providers ...string) {
	authGroup := rg.Group("/auth")
	for _, p := range providers {
		authGroup.GET("/"+p, h.Begin(p))
		authGroup.GET("/"+p+"/callback", h.Callback(p))
	}
}
