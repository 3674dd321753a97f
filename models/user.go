package models

import (
	"time"
)

const (
	RoleStudent = "STUDENT"
	RoleAdmin   = "ADMIN"

	UserStaying    = "STAYING"
	UserNotStaying = "NOT_STAYING"
	UserBanned     = "BANNED"

	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
)

type User struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Email  string `gorm:"uniqueIndex;size:150;not null" json:"email"`
	Name   string `gorm:"size:255" json:"name"`
	Gender string `gorm:"size:10;not null" json:"gender"`
	Role   string `gorm:"size:10;not null;default:STUDENT" json:"role"`
	Status string `gorm:"size:16;not null;default:NOT_STAYING;index" json:"status"`

	// nil while the user is not resident anywhere
	CurrentRoomID *string `gorm:"column:current_room_id;size:50;index" json:"currentRoomId"`

	AmountPaid float64 `gorm:"column:amount_paid;default:0" json:"amountPaid"`
	AmountDue  float64 `gorm:"column:amount_due;default:0" json:"amountDue"`

	PasswordHash string `gorm:"column:password_hash;size:255" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u User) IsBanned() bool { return u.Status == UserBanned }

// ResidentOf reports whether the user currently occupies roomID.
func (u User) ResidentOf(roomID string) bool {
	return u.CurrentRoomID != nil && *u.CurrentRoomID == roomID
}
