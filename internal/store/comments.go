package store

import (
	"context"
	"fmt"

	"blog-backend/internal/query"
)

func scanComment(row interface{ Scan(...any) error }) (*Comment, error) {
	var c Comment
	if err := row.Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

// ListComments returns the page of comments selected by spec. Callers scope
// spec to one post with Spec.WithEquality("postId", ...).
func (s *Store) ListComments(ctx context.Context, spec *query.Spec) (*Page[Comment], error) {
	sel, err := BuildSelect(s.Dialect, CommentTable, spec)
	if err != nil {
		return nil, err
	}
	cnt, err := BuildCount(s.Dialect, CommentTable, spec)
	if err != nil {
		return nil, err
	}

	total, err := s.Count(ctx, s.DB, cnt.SQL, cnt.Params...)
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, sel.SQL, sel.Params...)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	page := &Page[Comment]{Items: []Comment{}, Total: total}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		page.Items = append(page.Items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return page, nil
}

// GetComment loads a comment belonging to postID.
func (s *Store) GetComment(ctx context.Context, postID, id int64) (*Comment, error) {
	return scanComment(s.DB.QueryRowContext(ctx, s.rebind(
		"SELECT "+CommentTable.Select+" FROM "+CommentTable.From+" WHERE c.id = $1 AND c.post_id = $2"),
		id, postID))
}

func (s *Store) CreateComment(ctx context.Context, c *Comment) (*Comment, error) {
	c.CreatedAt = now()
	id, err := s.insertID(ctx, s.DB, s.rebind(
		"INSERT INTO comments (post_id, user_id, content, created_at) VALUES ($1, $2, $3, $4) RETURNING id"),
		c.PostID, c.UserID, c.Content, c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

func (s *Store) UpdateComment(ctx context.Context, postID, id int64, content string) (*Comment, error) {
	n, err := s.Exec(ctx, s.DB, s.rebind(
		"UPDATE comments SET content = $1 WHERE id = $2 AND post_id = $3"), content, id, postID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.GetComment(ctx, postID, id)
}

func (s *Store) DeleteComment(ctx context.Context, postID, id int64) error {
	n, err := s.Exec(ctx, s.DB, s.rebind(
		"DELETE FROM comments WHERE id = $1 AND post_id = $2"), id, postID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
