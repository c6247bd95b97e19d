package engine

import "blog-backend/internal/metadata"

// checkOwner allows writes only by the record's author. Other users get the
// same 404 as for a missing record, so ids of foreign records are not leaked.
func checkOwner(user *metadata.UserContext, ownerID int64, entity string) error {
	if user == nil {
		return UnauthorizedError("Login please")
	}
	if user.ID != ownerID {
		return NotFoundError(entity)
	}
	return nil
}
