package metadata

import "blog-backend/internal/query"

const (
	ResourcePost    = "post"
	ResourceComment = "comment"
)

// PostAllowList governs GET /api/post and /api/post/my. The author's
// username and email live on the related user.
var PostAllowList = query.AllowList{
	Resource:   ResourcePost,
	Sortable:   []string{"id", "createdAt"},
	Rangeable:  []string{"createdAt", "publishedAt"},
	Searchable: []string{"username", "email", "title", "content"},
	Filterable: []string{"username", "email", "title", "isPublished", "createdAt", "publishedAt"},
	Booleans:   []string{"isPublished"},
	Relations: map[string]string{
		"username": "user",
		"email":    "user",
	},
}

// CommentAllowList governs GET /api/post/:postId/comment.
var CommentAllowList = query.AllowList{
	Resource:  ResourceComment,
	Sortable:  []string{"id", "createdAt"},
	Rangeable: []string{"createdAt"},
}

// NewRegistry returns the allow-lists of every listable resource.
func NewRegistry() (*query.Registry, error) {
	return query.NewRegistry(PostAllowList, CommentAllowList)
}
