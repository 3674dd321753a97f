package models

import "time"

type Facility struct {
	ID     uint    `gorm:"primaryKey" json:"id"`
	Name   string  `gorm:"size:255;not null" json:"name"`
	Number string  `gorm:"size:50" json:"number"`
	Status string  `gorm:"size:32" json:"status"`
	Price  float64 `json:"price"`

	CurrentRoomID *string `gorm:"column:current_room_id;size:50;index" json:"currentRoomId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
