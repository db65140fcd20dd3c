package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mesafiscal/pos-backend/events"
	"github.com/mesafiscal/pos-backend/models"
	"github.com/mesafiscal/pos-backend/services"
	"github.com/mesafiscal/pos-backend/utils"
	"gorm.io/gorm"
)

type OrderController struct {
	DB *gorm.DB
}

func NewOrderController(db *gorm.DB) *OrderController {
	return &OrderController{DB: db}
}

type orderItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Notes     string `json:"notes"`
}

// CreateOrder -> opens a new order on a table. The subtotal is computed
// here from the product prices; the settlement engine receives amounts
// already computed.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req struct {
		TableID    uint               `json:"table_id" binding:"required"`
		Items      []orderItemRequest `json:"items" binding:"required,min=1,dive"`
		ServiceFee int64              `json:"service_fee" binding:"min=0"` // centavos, optional
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var table models.Table
	if err := oc.DB.First(&table, req.TableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("table not found"))
		return
	}

	tx := oc.DB.Begin()

	order := models.Order{
		TableID:    req.TableID,
		Status:     services.OrderStatusOpen,
		ServiceFee: req.ServiceFee,
	}
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var subtotal int64
	for _, item := range req.Items {
		var product models.Product
		if err := tx.First(&product, item.ProductID).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusNotFound, fmt.Errorf("product %d not found", item.ProductID))
			return
		}
		if !product.Active {
			tx.Rollback()
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("product %s is not available", product.Name))
			return
		}

		orderItem := models.OrderItem{
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			Notes:     item.Notes,
		}
		if err := tx.Create(&orderItem).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		subtotal += product.Price * int64(item.Quantity)
	}

	order.Subtotal = subtotal
	if err := tx.Save(&order).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if table.Status != services.TableStatusOccupied {
		table.Status = services.TableStatusOccupied
		if err := tx.Save(&table).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	oc.DB.Preload("OrderItems.Product").First(&order, order.ID)

	events.BroadcastMessage(events.Message{Event: events.EventOrderUpdate, Data: order})
	events.BroadcastMessage(events.Message{Event: events.EventTableUpdate, Data: table})

	utils.InfoLogger.Printf("Order %d created on table %d, subtotal %d", order.ID, order.TableID, order.Subtotal)
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetAllOrders -> list, filterable by table and status
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	var orders []models.Order

	query := oc.DB.Preload("OrderItems.Product").Order("created_at DESC")
	if tableID := c.Query("table_id"); tableID != "" {
		query = query.Where("table_id = ?", tableID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetOrderByID -> detail of one order
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	var order models.Order
	if err := oc.DB.Preload("OrderItems.Product").Preload("Table").First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// CancelOrder -> marks an open order cancelled. Closed orders belong to
// a settlement and stay as they are.
func (oc *OrderController) CancelOrder(c *gin.Context) {
	var order models.Order
	if err := oc.DB.First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if order.Status != services.OrderStatusOpen {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("only open orders can be cancelled"))
		return
	}

	order.Status = services.OrderStatusCancelled
	if err := oc.DB.Save(&order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastMessage(events.Message{Event: events.EventOrderUpdate, Data: order})

	utils.InfoLogger.Printf("Order %d cancelled", order.ID)
	utils.RespondJSON(c, http.StatusOK, "Order cancelled", order)
}
