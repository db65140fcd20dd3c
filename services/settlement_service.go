package services

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mesafiscal/pos-backend/billing"
	"github.com/mesafiscal/pos-backend/models"
	"gorm.io/gorm"
)

// Order status
const (
	OrderStatusOpen      = "open"
	OrderStatusClosed    = "closed"
	OrderStatusCancelled = "cancelled"
)

// Table status
const (
	TableStatusAvailable = "available"
	TableStatusOccupied  = "occupied"
	TableStatusDirty     = "dirty"
)

// SettlementService applies a finalized settlement to the database:
// persists the record, closes the covered orders and updates the table.
type SettlementService struct {
	db *gorm.DB
}

func NewSettlementService(db *gorm.DB) *SettlementService {
	return &SettlementService{db: db}
}

// Apply persists one billing.SettlementResult in a single transaction.
// A failure here leaves the finalized in-memory result untouched; the
// caller may retry without reopening the session.
func (s *SettlementService) Apply(tableID uint, result *billing.SettlementResult, settledBy *uint) (*models.Settlement, error) {
	orderIDs, err := json.Marshal(result.OrderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order ids: %w", err)
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	settlement := models.Settlement{
		SettlementNumber: fmt.Sprintf("STL-%d-%s", tableID, uuid.New().String()[:8]),
		TableID:          tableID,
		Subtotal:         result.Totals.Subtotal,
		ServiceFee:       result.Totals.ServiceFee,
		GrandTotal:       result.Totals.GrandTotal,
		OrderIDs:         string(orderIDs),
		SettledBy:        settledBy,
	}
	if result.Adjustment != nil {
		settlement.AdjustmentKind = result.Adjustment.Kind
		settlement.AdjustmentValue = result.Adjustment.Value
		settlement.AdjustmentIsPct = result.Adjustment.IsPercentage
	}

	if err := tx.Create(&settlement).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create settlement: %w", err)
	}

	for _, p := range result.Payments {
		linked := ""
		if len(p.LinkedOrderIDs) > 0 {
			raw, err := json.Marshal(p.LinkedOrderIDs)
			if err != nil {
				tx.Rollback()
				return nil, fmt.Errorf("failed to encode linked order ids: %w", err)
			}
			linked = string(raw)
		}
		payment := models.SettlementPayment{
			SettlementID:   settlement.ID,
			PaymentID:      p.ID,
			Method:         p.Method,
			Amount:         p.Amount,
			Capped:         p.Capped,
			LinkedOrderIDs: linked,
		}
		if err := tx.Create(&payment).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to create settlement payment: %w", err)
		}
	}

	if err := tx.Model(&models.Order{}).
		Where("id IN ? AND table_id = ?", result.OrderIDs, tableID).
		Update("status", OrderStatusClosed).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to close orders: %w", err)
	}

	// The table is released for cleaning once nothing stays open on it.
	var openLeft int64
	if err := tx.Model(&models.Order{}).
		Where("table_id = ? AND status = ?", tableID, OrderStatusOpen).
		Count(&openLeft).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to count open orders: %w", err)
	}
	if openLeft == 0 {
		if err := tx.Model(&models.Table{}).
			Where("id = ?", tableID).
			Update("status", TableStatusDirty).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to update table status: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	if err := s.db.Preload("Payments").First(&settlement, settlement.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload settlement: %w", err)
	}
	return &settlement, nil
}
