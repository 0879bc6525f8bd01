package services

import "github.com/localnerve/foodgram/internal/models"

// Viewer is the identity a request is served for. The zero value is anonymous.
type Viewer struct {
	UserID   uint64
	Username string
	Email    string
	IsStaff  bool
}

// ViewerOf returns the viewer for an authenticated user.
func ViewerOf(user *models.User) Viewer {
	if user == nil {
		return Viewer{}
	}
	return Viewer{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsStaff:  user.IsStaff,
	}
}

// Authenticated reports whether the viewer is a signed-in user.
func (v Viewer) Authenticated() bool {
	return v.UserID != 0
}

// CanEdit reports whether the viewer may modify content owned by authorID.
func (v Viewer) CanEdit(authorID uint64) bool {
	return v.Authenticated() && (v.IsStaff || v.UserID == authorID)
}
