package models

import "time"

// School is the tenant boundary. Every student, class, attendance, gradebook
// and social-skills record is scoped to exactly one school_code.
type School struct {
	ID         string    `db:"id" json:"id"`
	SchoolCode string    `db:"school_code" json:"school_code"`
	Name       string    `db:"name" json:"name"`
	Address    string    `db:"address" json:"address,omitempty"`
	Phone      string    `db:"phone" json:"phone,omitempty"`
	Email      string    `db:"email" json:"email,omitempty"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
