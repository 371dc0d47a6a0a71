package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SystemUserEmail identifies the placeholder account that owns mirrored
// content. It is created once, on the first sync run.
const SystemUserEmail = "sync@madeinportugal.store"

type User struct {
	ID        string    `json:"id" gorm:"type:uuid;primary_key"`
	Username  string    `json:"username" gorm:"not null"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email" gorm:"unique;not null"`
	Password  string    `json:"-" gorm:"not null"`
	PhotoURL  *string   `json:"photo_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}
