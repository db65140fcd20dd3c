package models

import "time"

// Product prices are stored in centavos; nothing in the backend handles
// fractional currency.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Price       int64     `gorm:"not null" json:"price"`
	Description string    `gorm:"type:text" json:"description"`
	// No default tag here: gorm would skip zero values on insert and an
	// explicit Active=false would be stored as true.
	Active      bool      `gorm:"not null" json:"active"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
