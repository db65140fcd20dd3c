package models

import "time"

// Settlement is the persisted record of one finalized table bill: which
// orders it covered, the adjustment (if any), the totals and every
// tender taken. Written once by the settlement service, never updated.
type Settlement struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	SettlementNumber string `gorm:"type:varchar(100);uniqueIndex;not null" json:"settlement_number"`
	TableID          uint   `gorm:"not null;index" json:"table_id"`
	Table            Table  `gorm:"foreignKey:TableID" json:"table"`

	Subtotal   int64 `gorm:"not null" json:"subtotal"`
	ServiceFee int64 `gorm:"not null" json:"service_fee"`
	GrandTotal int64 `gorm:"not null" json:"grand_total"`

	// Adjustment detail; kind is empty when the bill was settled as-is.
	AdjustmentKind  string  `gorm:"type:varchar(20)" json:"adjustment_kind"`
	AdjustmentValue float64 `json:"adjustment_value"`
	AdjustmentIsPct bool    `json:"adjustment_is_pct"`

	// Order ids covered by the settlement, stored as a JSON array.
	OrderIDs string `gorm:"type:text;not null" json:"order_ids"`

	Payments []SettlementPayment `gorm:"foreignKey:SettlementID" json:"payments"`

	SettledBy *uint     `json:"settled_by"` // cashier user id
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

type SettlementPayment struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	SettlementID uint       `gorm:"not null;index" json:"settlement_id"`
	Settlement   Settlement `gorm:"-" json:"-"`

	PaymentID string `gorm:"type:varchar(64);not null" json:"payment_id"`
	Method    string `gorm:"type:varchar(20);not null" json:"method"` // cash, card, pix, other
	Amount    int64  `gorm:"not null" json:"amount"`
	Capped    bool   `gorm:"not null;default:false" json:"capped"`

	// Linked order ids as a JSON array; empty when the bill carried an
	// adjustment and was settled as a whole.
	LinkedOrderIDs string `gorm:"type:text" json:"linked_order_ids"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
