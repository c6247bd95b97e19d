package engine

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"blog-backend/internal/cache"
	"blog-backend/internal/metadata"
	"blog-backend/internal/query"
	"blog-backend/internal/store"
)

type Handler struct {
	store     *store.Store
	cache     cache.Store
	validator *Validator

	posts    query.AllowList
	comments query.AllowList
}

// NewHandler resolves the allow-lists of the listed resources from reg. It
// panics if reg lacks one of them.
func NewHandler(s *store.Store, reg *query.Registry, c cache.Store, v *Validator) *Handler {
	if c == nil {
		c = cache.NoopStore{}
	}
	return &Handler{
		store:     s,
		cache:     c,
		validator: v,
		posts:     reg.MustLookup(metadata.ResourcePost),
		comments:  reg.MustLookup(metadata.ResourceComment),
	}
}

// queryParams returns the query string pairs in the order they were sent.
func queryParams(c *fiber.Ctx) []query.Param {
	var params []query.Param
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		params = append(params, query.Param{Key: string(k), Value: string(v)})
	})
	return params
}

func compileListing(c *fiber.Ctx, allow query.AllowList) (*query.Spec, error) {
	spec, err := query.Compile(allow, queryParams(c))
	if err != nil {
		return nil, QueryError(err)
	}
	return spec, nil
}

func totalPages(total int64, rows int) int64 {
	if rows <= 0 {
		return 0
	}
	return (total + int64(rows) - 1) / int64(rows)
}

func paramID(c *fiber.Ctx, name, entity string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id < 1 {
		return 0, NewAppError("INVALID_ID", 400, fmt.Sprintf("Invalid %s id %q", entity, c.Params(name)))
	}
	return id, nil
}

// requireUser returns the authenticated user or a 401.
func requireUser(c *fiber.Ctx) (*metadata.UserContext, error) {
	user := getUser(c)
	if user == nil {
		return nil, UnauthorizedError("Login please")
	}
	return user, nil
}

// notFoundOr maps store.ErrNotFound to a 404 for entity and wraps anything else.
func notFoundOr(err error, entity, op string) error {
	if errors.Is(err, store.ErrNotFound) {
		return NotFoundError(entity)
	}
	return fmt.Errorf("%s %s: %w", op, entity, err)
}
