package store

import "time"

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

type Profile struct {
	UserID   int64
	FullName string
	Bio      *string
}

type Category struct {
	ID          int64
	Name        string
	Description string
}

// Post carries its author's username and its categories alongside the row.
type Post struct {
	ID          int64
	UserID      int64
	Username    string
	Title       string
	Content     string
	IsPublished bool
	PublishedAt *time.Time
	CreatedAt   time.Time
	Categories  []Category
}

type Comment struct {
	ID        int64
	PostID    int64
	UserID    int64
	Content   string
	CreatedAt time.Time
}

// Page is one page of a listing plus the total number of matching records.
type Page[T any] struct {
	Items []T
	Total int64
}
