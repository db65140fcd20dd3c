package models

import "time"

type Order struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	TableID    uint        `gorm:"not null;index" json:"table_id"`
	Table      Table       `gorm:"foreignKey:TableID" json:"table"`
	Status     string      `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	Subtotal   int64       `gorm:"not null;default:0" json:"subtotal"`
	ServiceFee int64       `gorm:"not null;default:0" json:"service_fee"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
	CreatedAt  time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"not null" json:"updated_at"`
}
