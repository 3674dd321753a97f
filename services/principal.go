package services

import "dorm-backend/models"

// Principal is the authenticated caller of an operation. It is passed
// explicitly so the services never read session state.
type Principal struct {
	UserID uint
	Role   string
}

func (p Principal) IsAdmin() bool { return p.Role == models.RoleAdmin }

func (p Principal) Owns(userID uint) bool { return p.UserID != 0 && p.UserID == userID }

func requireAdmin(p Principal) error {
	if !p.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
