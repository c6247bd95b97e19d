package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"blog-backend/internal/query"
)

func scanPost(row interface{ Scan(...any) error }) (*Post, error) {
	var p Post
	var publishedAt sql.NullTime
	if err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.IsPublished, &publishedAt, &p.CreatedAt, &p.Username); err != nil {
		return nil, notFound(err)
	}
	if publishedAt.Valid {
		t := publishedAt.Time.UTC()
		p.PublishedAt = &t
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

// ListPosts returns the page of posts selected by spec and the total count
// of posts matching its filters.
func (s *Store) ListPosts(ctx context.Context, spec *query.Spec) (*Page[Post], error) {
	sel, err := BuildSelect(s.Dialect, PostTable, spec)
	if err != nil {
		return nil, err
	}
	cnt, err := BuildCount(s.Dialect, PostTable, spec)
	if err != nil {
		return nil, err
	}

	total, err := s.Count(ctx, s.DB, cnt.SQL, cnt.Params...)
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, sel.SQL, sel.Params...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	page := &Page[Post]{Items: []Post{}, Total: total}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		page.Items = append(page.Items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	rows.Close()

	for i := range page.Items {
		cats, err := s.postCategories(ctx, s.DB, page.Items[i].ID)
		if err != nil {
			return nil, err
		}
		page.Items[i].Categories = cats
	}
	return page, nil
}

// GetPost loads a post with its author's username and its categories.
func (s *Store) GetPost(ctx context.Context, id int64) (*Post, error) {
	p, err := scanPost(s.DB.QueryRowContext(ctx, s.rebind(
		"SELECT "+PostTable.Select+" FROM "+PostTable.From+" WHERE p.id = $1"), id))
	if err != nil {
		return nil, err
	}
	if p.Categories, err = s.postCategories(ctx, s.DB, id); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) postCategories(ctx context.Context, q Querier, postID int64) ([]Category, error) {
	rows, err := q.QueryContext(ctx, s.rebind(
		`SELECT c.id, c.name, c.description FROM categories c
		 JOIN category_on_post cp ON cp.category_id = c.id
		 WHERE cp.post_id = $1 ORDER BY c.id`), postID)
	if err != nil {
		return nil, fmt.Errorf("query post categories: %w", err)
	}
	defer rows.Close()

	cats := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// CreatePost inserts a post and links it to categoryIDs.
func (s *Store) CreatePost(ctx context.Context, p *Post, categoryIDs []int64) (*Post, error) {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	p.CreatedAt = now()
	p.PublishedAt = nil
	if p.IsPublished {
		t := p.CreatedAt
		p.PublishedAt = &t
	}
	id, err := s.insertID(ctx, tx, s.rebind(
		`INSERT INTO posts (user_id, title, content, is_published, published_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`),
		p.UserID, p.Title, p.Content, p.IsPublished, p.PublishedAt, p.CreatedAt)
	if err != nil {
		return nil, err
	}

	add, _ := diffIDs(nil, categoryIDs)
	if err := s.linkCategories(ctx, tx, id, add); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetPost(ctx, id)
}

// PostUpdate holds the optional fields of a post update. A non-nil
// CategoryIDs replaces the post's categories.
type PostUpdate struct {
	Title       *string
	Content     *string
	IsPublished *bool
	CategoryIDs []int64
}

// UpdatePost applies upd to the post. Publishing stamps published_at,
// unpublishing clears it.
func (s *Store) UpdatePost(ctx context.Context, id int64, upd PostUpdate) (*Post, error) {
	current, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	tx, err := s.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var sets []string
	var args []any
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.Title != nil {
		set("title", *upd.Title)
	}
	if upd.Content != nil {
		set("content", *upd.Content)
	}
	if upd.IsPublished != nil && *upd.IsPublished != current.IsPublished {
		set("is_published", *upd.IsPublished)
		if *upd.IsPublished {
			set("published_at", now())
		} else {
			set("published_at", nil)
		}
	}
	if len(sets) > 0 {
		args = append(args, id)
		sqlStr := fmt.Sprintf("UPDATE posts SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
		if _, err := s.Exec(ctx, tx, s.rebind(sqlStr), args...); err != nil {
			return nil, err
		}
	}

	if upd.CategoryIDs != nil {
		existing := make([]int64, len(current.Categories))
		for i, c := range current.Categories {
			existing[i] = c.ID
		}
		add, remove := diffIDs(existing, upd.CategoryIDs)
		for _, cid := range remove {
			if _, err := s.Exec(ctx, tx, s.rebind(
				"DELETE FROM category_on_post WHERE post_id = $1 AND category_id = $2"), id, cid); err != nil {
				return nil, err
			}
		}
		if err := s.linkCategories(ctx, tx, id, add); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetPost(ctx, id)
}

func (s *Store) DeletePost(ctx context.Context, id int64) error {
	n, err := s.Exec(ctx, s.DB, s.rebind("DELETE FROM posts WHERE id = $1"), id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) linkCategories(ctx context.Context, q Querier, postID int64, categoryIDs []int64) error {
	for _, cid := range categoryIDs {
		if _, err := s.Exec(ctx, q, s.rebind(
			"INSERT INTO category_on_post (post_id, category_id) VALUES ($1, $2)"), postID, cid); err != nil {
			return err
		}
	}
	return nil
}

// diffIDs returns the ids of want missing from have, and the ids of have
// missing from want. Duplicates in want are collapsed.
func diffIDs(have, want []int64) (add, remove []int64) {
	haveSet := make(map[int64]bool, len(have))
	for _, id := range have {
		haveSet[id] = true
	}
	wantSet := make(map[int64]bool, len(want))
	for _, id := range want {
		if wantSet[id] {
			continue
		}
		wantSet[id] = true
		if !haveSet[id] {
			add = append(add, id)
		}
	}
	for _, id := range have {
		if !wantSet[id] {
			remove = append(remove, id)
		}
	}
	return add, remove
}
