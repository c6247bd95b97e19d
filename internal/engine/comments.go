package engine

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"blog-backend/internal/metadata"
	"blog-backend/internal/query"
	"blog-backend/internal/store"
)

type commentResponse struct {
	PostID    int64  `json:"postId"`
	CommentID int64  `json:"commentId"`
	UserID    int64  `json:"userId"`
	Content   string `json:"content"`
}

type commentPage struct {
	Page      int               `json:"page"`
	TotalPage int64             `json:"totalPage"`
	Comments  []commentResponse `json:"comments"`
}

func toCommentResponse(c *store.Comment) commentResponse {
	return commentResponse{PostID: c.PostID, CommentID: c.ID, UserID: c.UserID, Content: c.Content}
}

// postFromParams resolves :postId and checks the post exists.
func (h *Handler) postFromParams(c *fiber.Ctx) (int64, error) {
	postID, err := paramID(c, "postId", "post")
	if err != nil {
		return 0, err
	}
	if _, err := h.store.GetPost(c.UserContext(), postID); err != nil {
		return 0, notFoundOr(err, "Post", "get")
	}
	return postID, nil
}

// ListComments handles GET /api/post/:postId/comment.
func (h *Handler) ListComments(c *fiber.Ctx) error {
	spec, err := compileListing(c, h.comments)
	if err != nil {
		return err
	}
	postID, err := h.postFromParams(c)
	if err != nil {
		return err
	}

	spec = spec.WithEquality("postId", query.Int(postID))
	page, err := h.store.ListComments(c.UserContext(), spec)
	if err != nil {
		return QueryError(fmt.Errorf("list comments: %w", err))
	}

	out := commentPage{Page: spec.Page, TotalPage: totalPages(page.Total, spec.Rows), Comments: make([]commentResponse, len(page.Items))}
	for i := range page.Items {
		out.Comments[i] = toCommentResponse(&page.Items[i])
	}
	return Respond(c, fiber.StatusOK, out)
}

// CreateComment handles POST /api/post/:postId/comment.
func (h *Handler) CreateComment(c *fiber.Ctx) error {
	me, err := requireUser(c)
	if err != nil {
		return err
	}
	postID, err := h.postFromParams(c)
	if err != nil {
		return err
	}
	var body struct {
		Content string `json:"content"`
	}
	if err := DecodePayload(c, h.validator, metadata.PayloadCommentCreate, &body); err != nil {
		return err
	}

	cm, err := h.store.CreateComment(c.UserContext(), &store.Comment{PostID: postID, UserID: me.ID, Content: body.Content})
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return Respond(c, fiber.StatusCreated, toCommentResponse(cm))
}

// GetComment handles GET /api/post/:postId/comment/:commentId.
func (h *Handler) GetComment(c *fiber.Ctx) error {
	postID, err := h.postFromParams(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "commentId", "comment")
	if err != nil {
		return err
	}
	cm, err := h.store.GetComment(c.UserContext(), postID, id)
	if err != nil {
		return notFoundOr(err, "Comment", "get")
	}
	return Respond(c, fiber.StatusOK, toCommentResponse(cm))
}

// UpdateComment handles PUT /api/post/:postId/comment/:commentId.
func (h *Handler) UpdateComment(c *fiber.Ctx) error {
	me, err := requireUser(c)
	if err != nil {
		return err
	}
	owned, err := h.ownedComment(c, me)
	if err != nil {
		return err
	}
	var body struct {
		Content string `json:"content"`
	}
	if err := DecodePayload(c, h.validator, metadata.PayloadCommentUpdate, &body); err != nil {
		return err
	}

	cm, err := h.store.UpdateComment(c.UserContext(), owned.PostID, owned.ID, body.Content)
	if err != nil {
		return notFoundOr(err, "Comment", "update")
	}
	return Respond(c, fiber.StatusOK, toCommentResponse(cm))
}

// DeleteComment handles DELETE /api/post/:postId/comment/:commentId.
func (h *Handler) DeleteComment(c *fiber.Ctx) error {
	me, err := requireUser(c)
	if err != nil {
		return err
	}
	cm, err := h.ownedComment(c, me)
	if err != nil {
		return err
	}
	if err := h.store.DeleteComment(c.UserContext(), cm.PostID, cm.ID); err != nil {
		return notFoundOr(err, "Comment", "delete")
	}
	return Respond(c, fiber.StatusOK, toCommentResponse(cm))
}

func (h *Handler) ownedComment(c *fiber.Ctx, me *metadata.UserContext) (*store.Comment, error) {
	postID, err := h.postFromParams(c)
	if err != nil {
		return nil, err
	}
	id, err := paramID(c, "commentId", "comment")
	if err != nil {
		return nil, err
	}
	cm, err := h.store.GetComment(c.UserContext(), postID, id)
	if err != nil {
		return nil, notFoundOr(err, "Comment", "get")
	}
	if err := checkOwner(me, cm.UserID, "Comment"); err != nil {
		return nil, err
	}
	return cm, nil
}
