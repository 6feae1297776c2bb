package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/event-enrollment-api/internal/config"
	"github.com/iliyamo/event-enrollment-api/internal/model"
	"github.com/iliyamo/event-enrollment-api/internal/ports"
	"github.com/iliyamo/event-enrollment-api/internal/utils"
)

// AuthHandler bundles dependencies for the /api/user endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  ports.UserRepository
	Tokens ports.TokenRepository
	Log    zerolog.Logger
}

func NewAuthHandler(cfg config.Config, u ports.UserRepository, t ports.TokenRepository, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Log: logger}
}

// ----- DTOs -----

type registerReq struct {
	FirstName string `json:"first_name" validate:"min=3"`
	LastName  string `json:"last_name" validate:"min=3"`
	Username  string `json:"username" validate:"required,email"`
	Password  string `json:"password" validate:"min=3"`
}

type loginReq struct {
	Username string `json:"username" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

// authResp is the body of every auth response. Token fields are empty on
// failure.
type authResp struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

var registerMessages = map[string]string{
	"first_name": "first_name must be at least 3 characters",
	"last_name":  "last_name must be at least 3 characters",
	"username":   "username must be a valid email",
	"password":   "password must be at least 3 characters",
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, authResp{Success: false, Message: msg})
}

// Register creates a user. Duplicate usernames are rejected with 400.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if err := c.Validate(&req); err != nil {
		msg, ok := registerMessages[firstInvalidField(err)]
		if !ok {
			msg = "invalid body"
		}
		return fail(c, http.StatusBadRequest, msg)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.Users.FindByUsername(ctx, req.Username); err == nil {
		return fail(c, http.StatusBadRequest, "user already exists")
	} else if !errors.Is(err, ports.ErrNotFound) {
		h.Log.Error().Err(err).Msg("lookup user failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		h.Log.Error().Err(err).Msg("hash password failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}
	u := &model.User{FirstName: req.FirstName, LastName: req.LastName, Username: req.Username, PasswordHash: hash}
	if _, err := h.Users.Create(ctx, u); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return fail(c, http.StatusBadRequest, "user already exists")
		}
		h.Log.Error().Err(err).Msg("create user failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusCreated, authResp{Success: true, Message: "user created"})
}

// Login verifies credentials and returns an access/refresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "username must be a valid email")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return fail(c, http.StatusUnauthorized, "invalid username or password")
		}
		h.Log.Error().Err(err).Msg("lookup user failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "invalid username or password")
	}
	return h.issue(c, u)
}

// Refresh validates a refresh token by hash, revokes it and issues a new
// pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return fail(c, http.StatusBadRequest, "refresh_token required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := requestContext(c)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid refresh token")
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil && !errors.Is(err, ports.ErrNotFound) {
		h.Log.Error().Err(err).Msg("revoke refresh failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}
	u, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return fail(c, http.StatusUnauthorized, "invalid refresh token")
		}
		h.Log.Error().Err(err).Msg("load user failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}
	return h.issue(c, u)
}

// Logout revokes the refresh token in the body, or every refresh token of
// the bearer's user when the body carries none.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	raw := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := requestContext(c)
	defer cancel()

	if raw != "" {
		hash := utils.HashRefreshRaw(raw)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return fail(c, http.StatusUnauthorized, "invalid refresh token")
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil && !errors.Is(err, ports.ErrNotFound) {
			h.Log.Error().Err(err).Msg("revoke refresh failed")
			return fail(c, http.StatusInternalServerError, "internal server error")
		}
		return c.JSON(http.StatusOK, authResp{Success: true, Message: "logged out"})
	}

	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return fail(c, http.StatusBadRequest, "refresh_token or bearer token required")
	}
	uid, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid token")
	}
	if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
		h.Log.Error().Err(err).Msg("revoke all failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, authResp{Success: true, Message: "logged out from all sessions"})
}

func (h *AuthHandler) issue(c echo.Context, u *model.User) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.Summary(), h.Cfg.AccessTTLMin)
	if err != nil {
		h.Log.Error().Err(err).Msg("issue access failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		h.Log.Error().Err(err).Msg("issue refresh failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}
	if err := h.Tokens.StoreRefresh(c.Request().Context(), u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		h.Log.Error().Err(err).Msg("save refresh failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, authResp{Success: true, Token: access.Token, RefreshToken: refresh.Raw})
}
