package model

import "time"

// User is an account holder. Age and Gender are optional profile fields
// consumed by the mental health predictor.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Age          *int      `json:"age,omitempty"`
	Gender       string    `json:"gender,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
