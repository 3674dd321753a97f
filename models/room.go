package models

import (
	"time"
)

const (
	RoomAvailable = "AVAILABLE"
	RoomFull      = "FULL"
)

// Room is keyed by its human-facing name ("A101"), which admins may rename.
type Room struct {
	ID      string  `gorm:"primaryKey;size:50" json:"id"`
	Gender  string  `gorm:"size:10;not null" json:"gender"`
	Price   float64 `json:"price"`
	Max     int     `gorm:"not null" json:"max"`
	Current int     `gorm:"not null;default:0" json:"current"`
	Status  string  `gorm:"size:16;not null;default:AVAILABLE" json:"status"`

	Users      []User     `gorm:"foreignKey:CurrentRoomID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"users,omitempty"`
	Facilities []Facility `gorm:"foreignKey:CurrentRoomID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"facilities,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StatusFor derives the room status from an occupant count.
func StatusFor(current, max int) string {
	if current >= max {
		return RoomFull
	}
	return RoomAvailable
}

func (r Room) IsFull() bool { return r.Current >= r.Max }
