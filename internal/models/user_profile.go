package models

import "time"

// ProfileID is the primary key of the single profile row.
const ProfileID uint64 = 1

type UserProfile struct {
	ID        uint64    `gorm:"primarykey" json:"-"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	Role      string    `gorm:"type:varchar(255)" json:"role"`
	Initials  string    `gorm:"type:varchar(10)" json:"initials"`
	UpdatedAt time.Time `json:"updated_at"`
}
