package models

import "time"

type Customer struct {
	ID         int64      `json:"id"`
	FirstName  string     `json:"first_name" validate:"required,max=100"`
	LastName   string     `json:"last_name" validate:"required,max=100"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	Email      string     `json:"email" validate:"required,email"`
	Phone      string     `json:"phone,omitempty" validate:"max=30"`
	NationalID string     `json:"national_id" validate:"required"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// FullName is the display name used in listings and exports.
func (c *Customer) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
