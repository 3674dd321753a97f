package models

import (
	"time"

	"gorm.io/datatypes"
)

type Contract struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"userId"`
	RoomID    string         `gorm:"column:room_id;size:50;not null" json:"roomId"`
	StartDate datatypes.Date `gorm:"column:start_date" json:"startDate"`
	EndDate   datatypes.Date `gorm:"column:end_date" json:"endDate"`

	Invoices []Invoice `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE;" json:"invoices,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

type Invoice struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	ContractID uint    `gorm:"index;not null" json:"contractId"`
	AmountDue  float64 `gorm:"column:amount_due" json:"amountDue"`
	AmountPaid float64 `gorm:"column:amount_paid;default:0" json:"amountPaid"`

	CreatedAt time.Time `json:"createdAt"`
}
