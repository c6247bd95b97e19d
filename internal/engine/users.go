package engine

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"blog-backend/internal/logging"
	"blog-backend/internal/metadata"
	"blog-backend/internal/store"
)

type userResponse struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	FullName string  `json:"fullName"`
	Bio      *string `json:"bio"`
}

type profileResponse struct {
	UserID   int64   `json:"userId"`
	FullName string  `json:"fullName"`
	Bio      *string `json:"bio"`
}

func toUserResponse(u *store.User, p *store.Profile) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email, FullName: p.FullName, Bio: p.Bio}
}

// Register handles POST /api/user.
func (h *Handler) Register(c *fiber.Ctx) error {
	var body struct {
		Username string  `json:"username"`
		Email    string  `json:"email"`
		Password string  `json:"password"`
		FullName string  `json:"fullName"`
		Bio      *string `json:"bio"`
	}
	if err := DecodePayload(c, h.validator, metadata.PayloadUserRegister, &body); err != nil {
		return err
	}

	ctx := c.UserContext()
	if _, err := h.store.GetUserByUsername(ctx, body.Username); err == nil {
		return ConflictError("Username already used")
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("lookup username: %w", err)
	}
	if _, err := h.store.GetUserByEmail(ctx, body.Email); err == nil {
		return ConflictError("Email already used")
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &store.User{Username: body.Username, Email: body.Email, PasswordHash: string(hash), Role: metadata.RoleUser}
	profile := store.Profile{FullName: body.FullName, Bio: body.Bio}
	if _, err := h.store.CreateUser(ctx, user, profile); err != nil {
		if errors.Is(err, store.ErrUniqueViolation) {
			return ConflictError("Username or email already used")
		}
		return fmt.Errorf("create user: %w", err)
	}

	logging.FromContext(ctx).Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return Respond(c, fiber.StatusCreated, toUserResponse(user, &profile))
}

// GetMe handles GET /api/user.
func (h *Handler) GetMe(c *fiber.Ctx) error {
	me, err := requireUser(c)
	if err != nil {
		return err
	}
	user, err := h.store.GetUserByID(c.UserContext(), me.ID)
	if err != nil {
		return notFoundOr(err, "User", "get")
	}
	return Respond(c, fiber.StatusOK, fiber.Map{"username": user.Username, "email": user.Email})
}

// UpdateMe handles PUT /api/user.
func (h *Handler) UpdateMe(c *fiber.Ctx) error {
	me, err := requireUser(c)
	if err != nil {
		return err
	}
	var body struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
	}
	if err := DecodePayload(c, h.validator, metadata.PayloadUserUpdate, &body); err != nil {
		return err
	}

	upd := store.UserUpdate{Username: body.Username, Email: body.Email}
	if body.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		s := string(hash)
		upd.PasswordHash = &s
	}

	ctx := c.UserContext()
	user, err := h.store.UpdateUser(ctx, me.ID, upd)
	if err != nil {
		if errors.Is(err, store.ErrUniqueViolation) {
			return ConflictError("Username or email already used")
		}
		return notFoundOr(err, "User", "update")
	}
	profile, err := h.store.GetProfile(ctx, me.ID)
	if err != nil {
		return notFoundOr(err, "Profile", "get")
	}
	return Respond(c, fiber.StatusOK, toUserResponse(user, profile))
}

// DeleteMe handles DELETE /api/user. The user's posts, comments and
// profile are removed with it.
func (h *Handler) DeleteMe(c *fiber.Ctx) error {
	me, err := requireUser(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	user, err := h.store.GetUserByID(ctx, me.ID)
	if err != nil {
		return notFoundOr(err, "User", "get")
	}
	profile, err := h.store.GetProfile(ctx, me.ID)
	if err != nil {
		return notFoundOr(err, "Profile", "get")
	}
	if err := h.store.DeleteUser(ctx, me.ID); err != nil {
		return notFoundOr(err, "User", "delete")
	}

	logging.FromContext(ctx).Info("user deleted", zap.Int64("user_id", me.ID))
	return Respond(c, fiber.StatusOK, toUserResponse(user, profile))
}

// GetProfile handles GET /api/profile.
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	me, err := requireUser(c)
	if err != nil {
		return err
	}
	p, err := h.store.GetProfile(c.UserContext(), me.ID)
	if err != nil {
		return notFoundOr(err, "Profile", "get")
	}
	return Respond(c, fiber.StatusOK, profileResponse{UserID: p.UserID, FullName: p.FullName, Bio: p.Bio})
}

// UpdateProfile handles PUT /api/profile.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	me, err := requireUser(c)
	if err != nil {
		return err
	}
	var body struct {
		FullName *string `json:"fullName"`
		Bio      *string `json:"bio"`
	}
	if err := DecodePayload(c, h.validator, metadata.PayloadProfileUpdate, &body); err != nil {
		return err
	}

	p, err := h.store.UpdateProfile(c.UserContext(), me.ID, body.FullName, body.Bio)
	if err != nil {
		return notFoundOr(err, "Profile", "update")
	}
	return Respond(c, fiber.StatusOK, profileResponse{UserID: p.UserID, FullName: p.FullName, Bio: p.Bio})
}
