package auth

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"blog-backend/internal/engine"
	"blog-backend/internal/logging"
	"blog-backend/internal/metadata"
	"blog-backend/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	store     *store.Store
	validator *engine.Validator
	jwtSecret string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(s *store.Store, v *engine.Validator, jwtSecret string) *AuthHandler {
	return &AuthHandler{store: s, validator: v, jwtSecret: jwtSecret}
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := engine.DecodePayload(c, h.validator, metadata.PayloadUserLogin, &body); err != nil {
		return err
	}

	ctx := c.UserContext()
	log := logging.FromContext(ctx)

	user, err := h.store.GetUserByEmail(ctx, body.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("login failed", zap.String("email", body.Email), zap.String("reason", "unknown email"))
			return engine.UnauthorizedError("email or password invalid")
		}
		return err
	}

	if !CheckPassword(body.Password, user.PasswordHash) {
		log.Info("login failed", zap.String("email", body.Email), zap.String("reason", "bad password"))
		return engine.UnauthorizedError("email or password invalid")
	}

	pair, err := h.generateTokenPair(ctx, userContext(user))
	if err != nil {
		return err
	}

	log.Debug("login", zap.Int64("user_id", user.ID))
	return engine.Respond(c, fiber.StatusOK, pair)
}

// Refresh handles POST /api/auth/refresh. The presented refresh token is
// consumed and replaced.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.BodyParser(&body); err != nil {
		return engine.InvalidPayloadError()
	}
	if body.RefreshToken == "" {
		return engine.UnauthorizedError("Refresh token is required")
	}

	ctx := c.UserContext()

	userID, expiresAt, err := h.store.ConsumeRefreshToken(ctx, body.RefreshToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return engine.UnauthorizedError("Invalid refresh token")
		}
		return err
	}
	if time.Now().After(expiresAt) {
		return engine.UnauthorizedError("Refresh token expired")
	}

	user, err := h.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return engine.UnauthorizedError("Invalid refresh token")
		}
		return err
	}

	pair, err := h.generateTokenPair(ctx, userContext(user))
	if err != nil {
		return err
	}
	return engine.Respond(c, fiber.StatusOK, pair)
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.BodyParser(&body); err != nil {
		return engine.InvalidPayloadError()
	}
	if body.RefreshToken == "" {
		return engine.UnauthorizedError("Refresh token is required")
	}

	if err := h.store.DeleteRefreshToken(c.UserContext(), body.RefreshToken); err != nil {
		return err
	}
	return engine.Respond(c, fiber.StatusOK, "Logged out")
}

// RegisterAuthRoutes registers auth routes on the given Fiber app.
func RegisterAuthRoutes(app *fiber.App, h *AuthHandler) {
	app.Post("/api/login", h.Login)

	auth := app.Group("/api/auth")
	auth.Post("/refresh", h.Refresh)
	auth.Post("/logout", h.Logout)
}

// --- helpers ---

func userContext(u *store.User) *metadata.UserContext {
	return &metadata.UserContext{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

func (h *AuthHandler) generateTokenPair(ctx context.Context, user *metadata.UserContext) (*TokenPair, error) {
	accessToken, err := GenerateAccessToken(user, h.jwtSecret)
	if err != nil {
		return nil, engine.NewAppError("INTERNAL_ERROR", 500, "Failed to generate access token")
	}

	refreshToken := GenerateRefreshToken()
	if err := h.store.CreateRefreshToken(ctx, user.ID, refreshToken, time.Now().Add(RefreshTokenTTL)); err != nil {
		return nil, engine.NewAppError("INTERNAL_ERROR", 500, "Failed to store refresh token")
	}

	return &TokenPair{
		Token:        accessToken,
		RefreshToken: refreshToken,
	}, nil
}
