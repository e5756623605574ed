package models

import "time"

type Item struct {
	ID            int64     `yaml:"id" json:"id"`
	Name          string    `yaml:"name" json:"name" validate:"required,max=200"`
	Description   string    `yaml:"description" json:"description,omitempty"`
	TotalQuantity int64     `yaml:"total_quantity" json:"total_quantity" validate:"gte=0"`
	CreatedAt     time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt     time.Time `yaml:"updated_at" json:"updated_at"`
}
