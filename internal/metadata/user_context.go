package metadata

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// UserContext represents the authenticated user, set by auth middleware.
type UserContext struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// IsAdmin checks whether the user has the admin role.
func (u *UserContext) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
