package models

import (
	"time"

	"gorm.io/gorm"
)

type Client struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Color     string    `gorm:"type:varchar(100)" json:"color"`
	Address   string    `gorm:"type:text" json:"address,omitempty"`
	Logo      string    `gorm:"type:text" json:"logo,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Tasks []Task `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// ClientColors is the palette new clients are given in turn.
var ClientColors = []string{
	"bg-blue-100 text-blue-800 border-blue-200",
	"bg-green-100 text-green-800 border-green-200",
	"bg-purple-100 text-purple-800 border-purple-200",
	"bg-orange-100 text-orange-800 border-orange-200",
	"bg-pink-100 text-pink-800 border-pink-200",
}
