package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/taskhive/taskhive-api/internal/config"
	"github.com/taskhive/taskhive-api/internal/middleware"
	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/internal/oauth"
	"github.com/taskhive/taskhive-api/internal/services"
	"github.com/taskhive/taskhive-api/pkg/dto"
)

// ttlStore holds short-lived one-shot values (OAuth states, exchange
// codes) keyed by an unguessable string. Take consumes the value, so a
// state or code can never be redeemed twice.
type ttlStore struct {
	m sync.Map
}

type ttlEntry struct {
	userID    uuid.UUID
	expiresAt time.Time
}

func (s *ttlStore) Put(key string, userID uuid.UUID, ttl time.Duration) {
	s.m.Store(key, ttlEntry{userID: userID, expiresAt: time.Now().Add(ttl)})
}

func (s *ttlStore) Take(key string) (uuid.UUID, bool) {
	v, ok := s.m.LoadAndDelete(key)
	if !ok {
		return uuid.Nil, false
	}
	entry := v.(ttlEntry)
	if time.Now().After(entry.expiresAt) {
		return uuid.Nil, false
	}
	return entry.userID, true
}

func (s *ttlStore) sweep(now time.Time) {
	s.m.Range(func(key, value any) bool {
		if entry, ok := value.(ttlEntry); ok && now.After(entry.expiresAt) {
			s.m.Delete(key)
		}
		return true
	})
}

type AuthHandler struct {
	cfg                 *config.Config
	providers           map[string]oauth.Provider
	userService         UserServiceInterface
	tokenService        TokenServiceInterface
	jwtService          JWTServiceInterface
	notificationService NotificationServiceInterface
	states              ttlStore
	authCodes           ttlStore
}

func NewAuthHandler(
	cfg *config.Config,
	userService UserServiceInterface,
	tokenService TokenServiceInterface,
	jwtService JWTServiceInterface,
	notificationService NotificationServiceInterface,
) *AuthHandler {
	h := &AuthHandler{
		cfg:                 cfg,
		providers:           make(map[string]oauth.Provider),
		userService:         userService,
		tokenService:        tokenService,
		jwtService:          jwtService,
		notificationService: notificationService,
	}

	if cfg.GitHub.ClientID != "" {
		h.providers["github"] = oauth.NewGitHubProvider(cfg.GitHub)
	}
	if cfg.GitLab.ClientID != "" {
		h.providers["gitlab"] = oauth.NewGitLabProvider(cfg.GitLab)
	}
	if cfg.Google.ClientID != "" {
		h.providers["google"] = oauth.NewGoogleProvider(cfg.Google)
	}

	go h.cleanupStates()

	return h
}

func (h *AuthHandler) cleanupStates() {
	ticker := time.NewTicker(1 * time.Minute)
	for range ticker.C {
		now := time.Now()
		h.states.sweep(now)
		h.authCodes.sweep(now)
	}
}

func (h *AuthHandler) GetConsentURL(c *drift.Context) {
	provider := c.Param("provider")

	p, ok := h.providers[provider]
	if !ok {
		c.BadRequest("unsupported provider: " + provider)
		return
	}

	state, err := oauth.GenerateState()
	if err != nil {
		c.InternalServerError("failed to generate state")
		return
	}

	h.states.Put(state, uuid.Nil, 10*time.Minute)

	_ = c.JSON(200, dto.ConsentURLResponse{
		URL: p.GetConsentURL(state),
	})
}

func (h *AuthHandler) Callback(c *drift.Context) {
	provider := c.Param("provider")

	p, ok := h.providers[provider]
	if !ok {
		h.redirectWithError(c, "unsupported provider")
		return
	}

	state := c.QueryParam("state")
	if state == "" {
		h.redirectWithError(c, "missing state parameter")
		return
	}

	if _, ok := h.states.Take(state); !ok {
		h.redirectWithError(c, "invalid or expired state")
		return
	}

	code := c.QueryParam("code")
	if code == "" {
		h.redirectWithError(c, "missing authorization code")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userInfo, err := p.ExchangeCode(ctx, code)
	if err != nil {
		h.redirectWithError(c, "failed to exchange code: "+err.Error())
		return
	}

	user, created, err := h.userService.FindOrCreateFromOAuth(ctx, userInfo)
	if err != nil {
		if errors.Is(err, services.ErrAccountDisabled) {
			h.redirectWithError(c, "account is disabled")
			return
		}
		h.redirectWithError(c, "failed to create user")
		return
	}

	if created {
		go func() {
			_ = h.notificationService.UserRegistered(context.Background(), user)
		}()
	}

	authCode, err := oauth.GenerateState()
	if err != nil {
		h.redirectWithError(c, "failed to generate auth code")
		return
	}

	h.authCodes.Put(authCode, user.ID, 30*time.Second)

	redirectURL := fmt.Sprintf("%s?code=%s",
		h.cfg.FrontendCallbackURL,
		url.QueryEscape(authCode),
	)

	h.renderCallbackPage(c, redirectURL, authCode, "")
}

func (h *AuthHandler) ExchangeCode(c *drift.Context) {
	var req dto.ExchangeCodeRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Code == "" {
		c.BadRequest("code is required")
		return
	}

	userID, ok := h.authCodes.Take(req.Code)
	if !ok {
		c.Unauthorized("invalid or expired code")
		return
	}

	ctx := context.Background()

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		c.Unauthorized("user not found")
		return
	}
	if !user.IsActive {
		c.Unauthorized("account is disabled")
		return
	}

	h.issueTokens(c, ctx, user, "")
}

// issueTokens mints a token pair and persists the refresh half. With a
// non-empty oldHash the stored token is rotated instead of appended, so a
// refresh never leaves two live refresh tokens for the same session.
func (h *AuthHandler) issueTokens(c *drift.Context, ctx context.Context, user *models.User, oldHash string) {
	tokenPair, err := h.jwtService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		c.InternalServerError("failed to generate tokens")
		return
	}

	newHash := services.HashToken(tokenPair.RefreshToken)
	expiresAt := time.Now().Add(h.jwtService.RefreshExpiry())

	if oldHash != "" {
		err = h.tokenService.Rotate(ctx, user.ID, oldHash, newHash, expiresAt)
	} else {
		err = h.tokenService.StoreRefreshToken(ctx, user.ID, newHash, expiresAt)
	}
	if err != nil {
		c.InternalServerError("failed to store refresh token")
		return
	}

	_ = c.JSON(200, dto.TokenResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	})
}

func (h *AuthHandler) RefreshToken(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.RefreshToken == "" {
		c.BadRequest("refresh_token is required")
		return
	}

	userID, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.Unauthorized("invalid refresh token")
		return
	}

	tokenHash := services.HashToken(req.RefreshToken)
	ctx := context.Background()

	storedUserID, err := h.tokenService.ValidateRefreshToken(ctx, tokenHash)
	if err != nil || storedUserID != userID {
		c.Unauthorized("refresh token not found or expired")
		return
	}

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		c.Unauthorized("user not found")
		return
	}
	if !user.IsActive {
		c.Unauthorized("account is disabled")
		return
	}

	h.issueTokens(c, ctx, user, tokenHash)
}

func (h *AuthHandler) Logout(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.RefreshToken != "" {
		tokenHash := services.HashToken(req.RefreshToken)
		_ = h.tokenService.RevokeRefreshToken(context.Background(), tokenHash)
	}

	_ = c.JSON(200, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) LogoutAll(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	if err := h.tokenService.RevokeAllUserTokens(context.Background(), userID); err != nil {
		c.InternalServerError("failed to revoke tokens")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "all sessions logged out"})
}

func (h *AuthHandler) redirectWithError(c *drift.Context, errMsg string) {
	redirectURL := fmt.Sprintf("%s?error=%s",
		h.cfg.FrontendCallbackURL,
		url.QueryEscape(errMsg),
	)
	h.renderCallbackPage(c, redirectURL, errMsg, "error")
}

func (h *AuthHandler) renderCallbackPage(c *drift.Context, deepLink, code, status string) {
	title := "Sign-in Successful"
	heading := "You're signed in!"
	subtitle := "Redirecting you to TaskHive..."
	statusCode := 200
	codeSection := ""

	if status == "error" {
		title = "Sign-in Failed"
		heading = "Sign-in failed"
		subtitle = code
		statusCode = 400
	} else {
		codeSection = fmt.Sprintf(`
        <p class="hint">Didn't redirect automatically? Paste this code in the TaskHive app.</p>
        <code>%s</code>`, code)
	}

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: system-ui, sans-serif; background: #f9fafb; color: #374151; margin: 0; padding: 40px 20px; }
        .container { max-width: 400px; margin: 0 auto; background: #fff; border: 1px solid #e5e7eb; border-radius: 8px; padding: 40px 32px; text-align: center; }
        h1 { font-size: 20px; font-weight: 600; margin: 0 0 8px 0; }
        .subtitle { color: #6b7280; font-size: 14px; margin: 0 0 4px 0; }
        .hint { color: #9ca3af; font-size: 13px; margin: 24px 0 8px 0; }
        code { font-family: monospace; font-size: 13px; word-break: break-all; background: #f3f4f6; border-radius: 6px; padding: 8px 12px; display: block; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%s</h1>
        <p class="subtitle">%s</p>
        <p class="hint">You can close this window.</p>%s
    </div>
    <script>window.location.href = %q;</script>
</body>
</html>`, title, heading, subtitle, codeSection, deepLink)

	_ = c.HTML(statusCode, html)
}
