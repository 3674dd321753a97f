package models

import "time"

const (
	RequestPending  = "PENDING"
	RequestApproved = "APPROVED"
	RequestRejected = "REJECTED"
)

// RoomChangeRequest is a student's intent to move into ToRoomID.
// Room ids are stored as plain columns so the history survives room deletion.
type RoomChangeRequest struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	UserID     uint    `gorm:"index;not null" json:"userId"`
	FromRoomID *string `gorm:"column:from_room_id;size:50" json:"fromRoomId"`
	ToRoomID   string  `gorm:"column:to_room_id;size:50;index;not null" json:"toRoomId"`
	Status     string  `gorm:"size:16;not null;default:PENDING;index" json:"status"`

	ReviewedBy *uint      `gorm:"column:reviewed_by" json:"reviewedBy,omitempty"`
	ReviewedAt *time.Time `gorm:"column:reviewed_at" json:"reviewedAt,omitempty"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"user,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r RoomChangeRequest) IsPending() bool { return r.Status == RequestPending }
