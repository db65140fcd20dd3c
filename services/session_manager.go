package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mesafiscal/pos-backend/billing"
	"github.com/mesafiscal/pos-backend/models"
	"gorm.io/gorm"
)

var (
	ErrNoSession     = errors.New("no settlement session open for this table")
	ErrSessionExists = errors.New("a settlement session is already open for this table")
	ErrNoOpenOrders  = errors.New("table has no open orders to settle")
)

// SessionManager keeps at most one live settlement session per table.
// The engine itself has no locking, so every operation goes through the
// manager mutex; that is the serialization the engine contract asks the
// host for.
type SessionManager struct {
	db       *gorm.DB
	mu       sync.Mutex
	sessions map[uint]*billing.Session
}

func NewSessionManager(db *gorm.DB) *SessionManager {
	return &SessionManager{
		db:       db,
		sessions: make(map[uint]*billing.Session),
	}
}

// Open snapshots the table's open orders into a new session. Fails when
// a session is already open (abandon it first) or nothing is open on
// the table.
func (m *SessionManager) Open(tableID uint) (billing.View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[tableID]; ok {
		return billing.View{}, ErrSessionExists
	}

	orders, err := m.loadOpenOrders(tableID)
	if err != nil {
		return billing.View{}, err
	}

	session := billing.NewSession(orders)
	m.sessions[tableID] = session
	return session.Snapshot(), nil
}

// Reopen rebuilds an existing session from the current open orders.
// Adjustment and payments are dropped: the order list changed under the
// bill, so the settlement starts over from a fresh snapshot.
func (m *SessionManager) Reopen(tableID uint) (billing.View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[tableID]
	if !ok {
		return billing.View{}, ErrNoSession
	}
	if session.Settled() {
		return billing.View{}, billing.ErrSessionSettled
	}

	orders, err := m.loadOpenOrders(tableID)
	if err != nil {
		return billing.View{}, err
	}

	session.ResetSelection(orders)
	return session.Snapshot(), nil
}

// View returns the current snapshot without mutating anything.
func (m *SessionManager) View(tableID uint) (billing.View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[tableID]
	if !ok {
		return billing.View{}, ErrNoSession
	}
	return session.Snapshot(), nil
}

// With runs one engine operation under the manager lock and hands back
// the resulting snapshot. The operation's typed error is passed through
// untouched so the controller can map it.
func (m *SessionManager) With(tableID uint, fn func(*billing.Session) error) (billing.View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[tableID]
	if !ok {
		return billing.View{}, ErrNoSession
	}

	err := fn(session)
	return session.Snapshot(), err
}

// Close discards the session (settled or abandoned).
func (m *SessionManager) Close(tableID uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, tableID)
}

func (m *SessionManager) loadOpenOrders(tableID uint) ([]billing.Order, error) {
	var table models.Table
	if err := m.db.First(&table, tableID).Error; err != nil {
		return nil, fmt.Errorf("table not found: %w", err)
	}

	var dbOrders []models.Order
	if err := m.db.Preload("OrderItems.Product").
		Where("table_id = ? AND status = ?", tableID, OrderStatusOpen).
		Order("id").
		Find(&dbOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to load open orders: %w", err)
	}
	if len(dbOrders) == 0 {
		return nil, ErrNoOpenOrders
	}

	orders := make([]billing.Order, 0, len(dbOrders))
	for _, o := range dbOrders {
		items := make([]billing.LineItem, 0, len(o.OrderItems))
		for _, it := range o.OrderItems {
			items = append(items, billing.LineItem{
				Name:      it.Product.Name,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
			})
		}
		orders = append(orders, billing.Order{
			ID:         o.ID,
			Subtotal:   o.Subtotal,
			ServiceFee: o.ServiceFee,
			Items:      items,
		})
	}
	return orders, nil
}
