package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"blog-backend/internal/metadata"
	"blog-backend/internal/store"
)

type categoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func toCategoryResponse(c store.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Description: c.Description}
}

// ListCategories handles GET /api/category.
func (h *Handler) ListCategories(c *fiber.Ctx) error {
	cats, err := h.store.ListCategories(c.UserContext())
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	out := make([]categoryResponse, len(cats))
	for i, cat := range cats {
		out[i] = toCategoryResponse(cat)
	}
	return Respond(c, fiber.StatusOK, out)
}

// GetCategory handles GET /api/category/:id.
func (h *Handler) GetCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "category")
	if err != nil {
		return err
	}
	cat, err := h.store.GetCategory(c.UserContext(), id)
	if err != nil {
		return notFoundOr(err, "Category", "get")
	}
	return Respond(c, fiber.StatusOK, toCategoryResponse(*cat))
}

// CreateCategory handles POST /api/category. Names are stored lower-cased.
func (h *Handler) CreateCategory(c *fiber.Ctx) error {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := DecodePayload(c, h.validator, metadata.PayloadCategoryCreate, &body); err != nil {
		return err
	}

	cat := &store.Category{Name: strings.ToLower(body.Name), Description: body.Description}
	if err := h.store.CreateCategory(c.UserContext(), cat); err != nil {
		if errors.Is(err, store.ErrUniqueViolation) {
			return ConflictError("Category has been exists")
		}
		return fmt.Errorf("create category: %w", err)
	}
	return Respond(c, fiber.StatusCreated, toCategoryResponse(*cat))
}

// UpdateCategory handles PUT /api/category/:id.
func (h *Handler) UpdateCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "category")
	if err != nil {
		return err
	}
	var body struct {
		Description string `json:"description"`
	}
	if err := DecodePayload(c, h.validator, metadata.PayloadCategoryUpdate, &body); err != nil {
		return err
	}

	cat, err := h.store.UpdateCategory(c.UserContext(), id, body.Description)
	if err != nil {
		return notFoundOr(err, "Category", "update")
	}
	return Respond(c, fiber.StatusOK, toCategoryResponse(*cat))
}

// DeleteCategory handles DELETE /api/category/:id.
func (h *Handler) DeleteCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "category")
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	cat, err := h.store.GetCategory(ctx, id)
	if err != nil {
		return notFoundOr(err, "Category", "get")
	}
	if err := h.store.DeleteCategory(ctx, id); err != nil {
		return notFoundOr(err, "Category", "delete")
	}
	return Respond(c, fiber.StatusOK, toCategoryResponse(*cat))
}
