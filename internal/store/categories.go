package store

import (
	"context"
	"errors"
	"fmt"
)

func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT id, name, description FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, id int64) (*Category, error) {
	var c Category
	err := s.DB.QueryRowContext(ctx, s.rebind(
		"SELECT id, name, description FROM categories WHERE id = $1"), id).
		Scan(&c.ID, &c.Name, &c.Description)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// CreateCategory inserts a category. A duplicate name yields ErrUniqueViolation.
func (s *Store) CreateCategory(ctx context.Context, c *Category) error {
	id, err := s.insertID(ctx, s.DB, s.rebind(
		"INSERT INTO categories (name, description) VALUES ($1, $2) RETURNING id"),
		c.Name, c.Description)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

// UpdateCategory changes the description of a category.
func (s *Store) UpdateCategory(ctx context.Context, id int64, description string) (*Category, error) {
	n, err := s.Exec(ctx, s.DB, s.rebind(
		"UPDATE categories SET description = $1 WHERE id = $2"), description, id)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.GetCategory(ctx, id)
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	n, err := s.Exec(ctx, s.DB, s.rebind("DELETE FROM categories WHERE id = $1"), id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// MissingCategories returns the ids in ids that have no category row.
func (s *Store) MissingCategories(ctx context.Context, ids []int64) ([]int64, error) {
	var missing []int64
	for _, id := range ids {
		if _, err := s.GetCategory(ctx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				missing = append(missing, id)
				continue
			}
			return nil, err
		}
	}
	return missing, nil
}
