package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mesafiscal/pos-backend/billing"
	"github.com/mesafiscal/pos-backend/events"
	"github.com/mesafiscal/pos-backend/models"
	"github.com/mesafiscal/pos-backend/services"
	"github.com/mesafiscal/pos-backend/utils"
	"gorm.io/gorm"
)

type SettlementController struct {
	DB          *gorm.DB
	Sessions    *services.SessionManager
	Settlements *services.SettlementService
}

func NewSettlementController(db *gorm.DB) *SettlementController {
	return &SettlementController{
		DB:          db,
		Sessions:    services.NewSessionManager(db),
		Settlements: services.NewSettlementService(db),
	}
}

func parseTableID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("table_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid table id"))
		return 0, false
	}
	return uint(id), true
}

// respondBill maps engine/service failures onto the HTTP surface. The
// conflict-class errors (locked selection, settled session, non-zero
// balance) are the ones the UI renders as a disabled action.
func respondBill(c *gin.Context, view billing.View, err error, message string) {
	if err == nil {
		utils.RespondJSON(c, http.StatusOK, message, view)
		return
	}

	switch {
	case errors.Is(err, services.ErrNoSession),
		errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, billing.ErrInvalidAdjustment),
		errors.Is(err, billing.ErrInvalidAmount):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, billing.ErrSelectionLocked),
		errors.Is(err, billing.ErrNothingToPay),
		errors.Is(err, billing.ErrBalanceNotZero),
		errors.Is(err, billing.ErrSessionSettled),
		errors.Is(err, services.ErrSessionExists),
		errors.Is(err, services.ErrNoOpenOrders):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

// OpenSettlement -> snapshots the table's open orders into a session
func (sc *SettlementController) OpenSettlement(c *gin.Context) {
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}

	view, err := sc.Sessions.Open(tableID)
	if err != nil {
		respondBill(c, view, err, "")
		return
	}

	utils.InfoLogger.Printf("Settlement opened for table %d with %d orders", tableID, len(view.Orders))
	utils.RespondJSON(c, http.StatusCreated, "Settlement opened", view)
}

// GetSettlement -> current bill view
func (sc *SettlementController) GetSettlement(c *gin.Context) {
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}

	view, err := sc.Sessions.View(tableID)
	respondBill(c, view, err, "Settlement detail")
}

// ReopenSettlement -> re-snapshots the open orders after the table
// changed mid-checkout. Drops adjustment and payments.
func (sc *SettlementController) ReopenSettlement(c *gin.Context) {
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}

	view, err := sc.Sessions.Reopen(tableID)
	if err == nil {
		utils.InfoLogger.Printf("Settlement for table %d reopened from a fresh order snapshot", tableID)
	}
	respondBill(c, view, err, "Settlement reopened")
}

// ToggleOrder -> flips one order in or out of the bill being settled
func (sc *SettlementController) ToggleOrder(c *gin.Context) {
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(c.Param("order_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return
	}

	view, err := sc.Sessions.With(tableID, func(s *billing.Session) error {
		return s.ToggleOrder(uint(orderID))
	})
	respondBill(c, view, err, "Selection updated")
}

// ApplyAdjustment -> sets the bill-wide discount or surcharge
func (sc *SettlementController) ApplyAdjustment(c *gin.Context) {
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}

	var req struct {
		Kind         string `json:"kind" binding:"required,oneof=discount surcharge"`
		Value        string `json:"value" binding:"required"`
		IsPercentage bool   `json:"is_percentage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var value float64
	var parseErr error
	if req.IsPercentage {
		value, parseErr = billing.ParsePercent(req.Value)
	} else {
		var cents int64
		cents, parseErr = billing.ParseAmount(req.Value)
		value = float64(cents)
	}
	if parseErr != nil {
		utils.RespondError(c, http.StatusBadRequest, billing.ErrInvalidAdjustment)
		return
	}

	view, err := sc.Sessions.With(tableID, func(s *billing.Session) error {
		return s.ApplyAdjustment(req.Kind, value, req.IsPercentage)
	})
	if err == nil {
		utils.InfoLogger.Printf("Table %d: %s of %s applied (percentage=%v)", tableID, req.Kind, req.Value, req.IsPercentage)
		events.BroadcastMessage(events.Message{Event: events.EventSettlementUpdate, Data: view})
	}
	respondBill(c, view, err, "Adjustment applied")
}

// RemoveAdjustment -> clears the active adjustment, selection may be
// edited again afterwards
func (sc *SettlementController) RemoveAdjustment(c *gin.Context) {
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}

	view, err := sc.Sessions.With(tableID, func(s *billing.Session) error {
		return s.RemoveAdjustment()
	})
	respondBill(c, view, err, "Adjustment removed")
}

// AddPayment -> records one tender against the bill
func (sc *SettlementController) AddPayment(c *gin.Context) {
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}

	var req struct {
		Method string `json:"method" binding:"required,oneof=cash card pix other"`
		Amount string `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var payment billing.Payment
	view, err := sc.Sessions.With(tableID, func(s *billing.Session) error {
		p, err := s.AddPayment(req.Method, req.Amount)
		payment = p
		return err
	})
	if err != nil {
		respondBill(c, view, err, "")
		return
	}

	// The recorded amount may differ from what was typed (non-cash
	// tenders are capped at the remaining balance); the client must
	// render the recorded value, not the input.
	message := "Payment recorded"
	if payment.Capped {
		message = "Payment recorded (capped at remaining balance)"
	}
	utils.InfoLogger.Printf("Table %d: %s payment of %s recorded (capped=%v)",
		tableID, payment.Method, billing.FormatBRL(payment.Amount), payment.Capped)
	events.BroadcastMessage(events.Message{Event: events.EventSettlementUpdate, Data: view})

	utils.RespondJSON(c, http.StatusCreated, message, gin.H{
		"payment": payment,
		"bill":    view,
	})
}

// RemovePayment -> deletes a tender; unknown ids are ignored
func (sc *SettlementController) RemovePayment(c *gin.Context) {
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}
	paymentID := c.Param("payment_id")

	view, err := sc.Sessions.With(tableID, func(s *billing.Session) error {
		return s.RemovePayment(paymentID)
	})
	respondBill(c, view, err, "Payment removed")
}

// FinalizeSettlement -> validates the bill is fully covered, persists
// the settlement and closes the covered orders
func (sc *SettlementController) FinalizeSettlement(c *gin.Context) {
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}

	var result *billing.SettlementResult
	view, err := sc.Sessions.With(tableID, func(s *billing.Session) error {
		// A previous finalize may have succeeded in memory but failed to
		// persist; reuse its result instead of rejecting the retry.
		if s.Settled() && s.Result() != nil {
			result = s.Result()
			return nil
		}
		r, err := s.Finalize()
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		respondBill(c, view, err, "")
		return
	}

	var settledBy *uint
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(uint); ok {
			settledBy = &id
		}
	}

	settlement, err := sc.Settlements.Apply(tableID, result, settledBy)
	if err != nil {
		// The in-memory result survives; the client may retry.
		utils.ErrorLogger.Printf("Failed to persist settlement for table %d: %v", tableID, err)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	sc.Sessions.Close(tableID)

	var table models.Table
	if err := sc.DB.First(&table, tableID).Error; err == nil {
		events.BroadcastMessage(events.Message{Event: events.EventTableUpdate, Data: table})
	}
	events.BroadcastMessage(events.Message{Event: events.EventSettlementFinalized, Data: settlement})

	utils.InfoLogger.Printf("Table %d settled: %s, total %s, %d payment(s)",
		tableID, settlement.SettlementNumber, billing.FormatBRL(settlement.GrandTotal), len(settlement.Payments))
	utils.RespondJSON(c, http.StatusOK, "Settlement finalized", gin.H{
		"settlement": settlement,
		"result":     result,
	})
}

// AbandonSettlement -> discards the working session without settling
func (sc *SettlementController) AbandonSettlement(c *gin.Context) {
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}

	if _, err := sc.Sessions.View(tableID); err != nil {
		respondBill(c, billing.View{}, err, "")
		return
	}

	sc.Sessions.Close(tableID)
	utils.InfoLogger.Printf("Settlement for table %d abandoned", tableID)
	utils.RespondJSON(c, http.StatusOK, "Settlement abandoned", gin.H{
		"table_id": tableID,
	})
}

// ListSettlements -> settlement history, optionally filtered by table
func (sc *SettlementController) ListSettlements(c *gin.Context) {
	var settlements []models.Settlement

	query := sc.DB.Preload("Payments").Order("created_at DESC")
	if tableID := c.Query("table_id"); tableID != "" {
		query = query.Where("table_id = ?", tableID)
	}
	if err := query.Find(&settlements).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of settlements", settlements)
}

// GetSettlementByID -> one persisted settlement with its payments
func (sc *SettlementController) GetSettlementByID(c *gin.Context) {
	var settlement models.Settlement
	if err := sc.DB.Preload("Payments").First(&settlement, c.Param("id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Settlement detail", settlement)
}
