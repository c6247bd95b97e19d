package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"blog-backend/internal/cache"
	"blog-backend/internal/logging"
	"blog-backend/internal/metadata"
	"blog-backend/internal/query"
	"blog-backend/internal/store"
)

type postCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type postSummary struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	Content       string         `json:"content"`
	Category      []postCategory `json:"category"`
	Username      string         `json:"username"`
	PublishedDate *time.Time     `json:"publishedDate"`
}

type postDetail struct {
	ID          int64          `json:"id"`
	Username    string         `json:"username"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	Category    []postCategory `json:"category"`
	IsPublished bool           `json:"isPublished"`
	PublishedAt *time.Time     `json:"publishedAt"`
	CreatedAt   time.Time      `json:"createdAt"`
}

type postPage struct {
	Page      int           `json:"page"`
	TotalPage int64         `json:"totalPage"`
	Posts     []postSummary `json:"posts"`
}

func toPostCategories(cats []store.Category) []postCategory {
	out := make([]postCategory, len(cats))
	for i, c := range cats {
		out[i] = postCategory{ID: c.ID, Name: c.Name}
	}
	return out
}

func toPostDetail(p *store.Post) postDetail {
	return postDetail{
		ID:          p.ID,
		Username:    p.Username,
		Title:       p.Title,
		Content:     p.Content,
		Category:    toPostCategories(p.Categories),
		IsPublished: p.IsPublished,
		PublishedAt: p.PublishedAt,
		CreatedAt:   p.CreatedAt,
	}
}

// ListPosts handles GET /api/post.
func (h *Handler) ListPosts(c *fiber.Ctx) error {
	spec, err := compileListing(c, h.posts)
	if err != nil {
		return err
	}
	return h.cachedListing(c, cache.RequestKey(metadata.ResourcePost, c.OriginalURL()), spec)
}

// ListMyPosts handles GET /api/post/my: the same listing restricted to the
// caller's own posts.
func (h *Handler) ListMyPosts(c *fiber.Ctx) error {
	me, err := requireUser(c)
	if err != nil {
		return err
	}
	spec, err := compileListing(c, h.posts)
	if err != nil {
		return err
	}
	spec = spec.WithEquality("userId", query.Int(me.ID))
	return h.cachedListing(c, cache.RequestKey(metadata.ResourcePost, c.OriginalURL(), me.ID), spec)
}

func (h *Handler) cachedListing(c *fiber.Ctx, key string, spec *query.Spec) error {
	ctx := c.UserContext()
	body, err := cache.Remember(ctx, h.cache, key, func() ([]byte, error) {
		page, err := h.store.ListPosts(ctx, spec)
		if err != nil {
			return nil, QueryError(fmt.Errorf("list posts: %w", err))
		}
		out := postPage{Page: spec.Page, TotalPage: totalPages(page.Total, spec.Rows), Posts: make([]postSummary, len(page.Items))}
		for i, p := range page.Items {
			out.Posts[i] = postSummary{
				ID:            p.ID,
				Title:         p.Title,
				Content:       p.Content,
				Category:      toPostCategories(p.Categories),
				Username:      p.Username,
				PublishedDate: p.PublishedAt,
			}
		}
		return c.App().Config().JSONEncoder(WebResponse{Data: out, Status: true})
	})
	if err != nil {
		return err
	}
	c.Type("json")
	return c.Status(fiber.StatusOK).Send(body)
}

// GetPost handles GET /api/post/:id.
func (h *Handler) GetPost(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "post")
	if err != nil {
		return err
	}
	p, err := h.store.GetPost(c.UserContext(), id)
	if err != nil {
		return notFoundOr(err, "Post", "get")
	}
	return Respond(c, fiber.StatusOK, toPostDetail(p))
}

// CreatePost handles POST /api/post.
func (h *Handler) CreatePost(c *fiber.Ctx) error {
	me, err := requireUser(c)
	if err != nil {
		return err
	}
	var body struct {
		Title       string  `json:"title"`
		Content     string  `json:"content"`
		Category    []int64 `json:"category"`
		IsPublished bool    `json:"isPublished"`
	}
	if err := DecodePayload(c, h.validator, metadata.PayloadPostCreate, &body); err != nil {
		return err
	}

	ctx := c.UserContext()
	if err := h.checkCategories(c, body.Category); err != nil {
		return err
	}

	p, err := h.store.CreatePost(ctx, &store.Post{
		UserID:      me.ID,
		Title:       body.Title,
		Content:     body.Content,
		IsPublished: body.IsPublished,
	}, body.Category)
	if err != nil {
		if errors.Is(err, store.ErrForeignKeyViolation) {
			return categoriesNotFound()
		}
		return fmt.Errorf("create post: %w", err)
	}

	logging.FromContext(ctx).Info("post created", zap.Int64("post_id", p.ID), zap.Int64("user_id", me.ID))
	return Respond(c, fiber.StatusCreated, toPostDetail(p))
}

// UpdatePost handles PUT /api/post/:id.
func (h *Handler) UpdatePost(c *fiber.Ctx) error {
	me, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id", "post")
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	current, err := h.store.GetPost(ctx, id)
	if err != nil {
		return notFoundOr(err, "Post", "get")
	}
	if err := checkOwner(me, current.UserID, "Post"); err != nil {
		return err
	}

	var body struct {
		Title       *string `json:"title"`
		Content     *string `json:"content"`
		Category    []int64 `json:"category"`
		IsPublished *bool   `json:"isPublished"`
	}
	if err := DecodePayload(c, h.validator, metadata.PayloadPostUpdate, &body); err != nil {
		return err
	}
	if body.Category != nil {
		if err := h.checkCategories(c, body.Category); err != nil {
			return err
		}
	}

	p, err := h.store.UpdatePost(ctx, id, store.PostUpdate{
		Title:       body.Title,
		Content:     body.Content,
		IsPublished: body.IsPublished,
		CategoryIDs: body.Category,
	})
	if err != nil {
		if errors.Is(err, store.ErrForeignKeyViolation) {
			return categoriesNotFound()
		}
		return notFoundOr(err, "Post", "update")
	}
	return Respond(c, fiber.StatusOK, toPostDetail(p))
}

// DeletePost handles DELETE /api/post/:id.
func (h *Handler) DeletePost(c *fiber.Ctx) error {
	me, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id", "post")
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	p, err := h.store.GetPost(ctx, id)
	if err != nil {
		return notFoundOr(err, "Post", "get")
	}
	if err := checkOwner(me, p.UserID, "Post"); err != nil {
		return err
	}
	if err := h.store.DeletePost(ctx, id); err != nil {
		return notFoundOr(err, "Post", "delete")
	}

	logging.FromContext(ctx).Info("post deleted", zap.Int64("post_id", id), zap.Int64("user_id", me.ID))
	return Respond(c, fiber.StatusOK, toPostDetail(p))
}

func (h *Handler) checkCategories(c *fiber.Ctx, ids []int64) error {
	missing, err := h.store.MissingCategories(c.UserContext(), ids)
	if err != nil {
		return fmt.Errorf("check categories: %w", err)
	}
	if len(missing) > 0 {
		return categoriesNotFound()
	}
	return nil
}

func categoriesNotFound() *AppError {
	return NewAppError("INVALID_CATEGORY", 400, "Categories not found. please check post categories")
}
