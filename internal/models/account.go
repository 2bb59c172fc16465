package models

import "time"

// DefaultImage is the profile image assigned to new accounts.
const DefaultImage = "default.jpg"

type Account struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Image        string    `json:"image" db:"image"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
