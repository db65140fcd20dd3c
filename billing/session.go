package billing

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// Adjustment kinds
const (
	AdjustmentDiscount  = "discount"
	AdjustmentSurcharge = "surcharge"
)

// Payment methods
const (
	MethodCash  = "cash"
	MethodCard  = "card"
	MethodPix   = "pix"
	MethodOther = "other"
)

// ServiceFeeRate is the house service fee applied whenever a discount or
// surcharge rewrites the bill. Policy constant, not configurable per call.
const ServiceFeeRate = 10

// LineItem is carried for display on the bill; the engine never
// aggregates beyond the order subtotal.
type LineItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// Order is the read-only input the host hands to a session. Amounts are
// centavos, already computed upstream.
type Order struct {
	ID         uint       `json:"id"`
	Subtotal   int64      `json:"subtotal"`
	ServiceFee int64      `json:"service_fee"`
	Items      []LineItem `json:"items"`
}

// Adjustment is the single optional bill-wide discount or surcharge.
// Value is centavos for fixed adjustments and a rate for percentages.
type Adjustment struct {
	Kind         string  `json:"kind"`
	Value        float64 `json:"value"`
	IsPercentage bool    `json:"is_percentage"`
}

// Payment is one tendered amount. Immutable once created; remove and
// re-add instead of editing.
type Payment struct {
	ID             string `json:"id"`
	Method         string `json:"method"`
	Amount         int64  `json:"amount"`
	Capped         bool   `json:"capped"`
	LinkedOrderIDs []uint `json:"linked_order_ids,omitempty"`
}

// Totals is the derived subtotal / service fee / grand total triple.
type Totals struct {
	Subtotal   int64 `json:"subtotal"`
	ServiceFee int64 `json:"service_fee"`
	GrandTotal int64 `json:"grand_total"`
}

// SettlementResult is the terminal artifact of a session. The host uses
// it to close the involved orders and print the receipt.
type SettlementResult struct {
	OrderIDs   []uint      `json:"order_ids"`
	Adjustment *Adjustment `json:"adjustment,omitempty"`
	Payments   []Payment   `json:"payments"`
	Totals     Totals      `json:"totals"`
}

// Session holds the mutable state of one in-progress table settlement.
// It is single-threaded by contract; callers serialize access.
type Session struct {
	orders     []Order
	selected   map[uint]bool
	adjustment *Adjustment
	payments   []Payment
	settled    bool
	result     *SettlementResult
}

// NewSession opens a settlement over a snapshot of the table's open
// orders. Every order starts selected.
func NewSession(orders []Order) *Session {
	s := &Session{}
	s.ResetSelection(orders)
	return s
}

// ResetSelection re-initializes the session from a fresh order snapshot:
// all orders selected, no adjustment, no payments. Called when the
// underlying order list changes mid-settlement.
func (s *Session) ResetSelection(orders []Order) {
	s.orders = make([]Order, len(orders))
	copy(s.orders, orders)
	s.selected = make(map[uint]bool, len(orders))
	for _, o := range orders {
		s.selected[o.ID] = true
	}
	s.adjustment = nil
	s.payments = nil
}

// ToggleOrder flips whether an order belongs to the bill being settled.
// Locked while an adjustment is applied: the adjustment was computed
// against the whole bill, so the set it covers cannot change.
func (s *Session) ToggleOrder(orderID uint) error {
	if s.settled {
		return ErrSessionSettled
	}
	if s.adjustment != nil {
		return ErrSelectionLocked
	}
	for _, o := range s.orders {
		if o.ID == orderID {
			s.selected[orderID] = !s.selected[orderID]
			return nil
		}
	}
	// Unknown id: no-op, the order list is a snapshot.
	return nil
}

// ApplyAdjustment sets the active discount or surcharge. The whole bill
// is always adjusted, so the selection is forced back to every order.
func (s *Session) ApplyAdjustment(kind string, value float64, isPercentage bool) error {
	if s.settled {
		return ErrSessionSettled
	}
	if kind != AdjustmentDiscount && kind != AdjustmentSurcharge {
		return ErrInvalidAdjustment
	}
	// NaN escapes a plain <= 0 check and would corrupt the totals.
	if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return ErrInvalidAdjustment
	}
	s.adjustment = &Adjustment{Kind: kind, Value: value, IsPercentage: isPercentage}
	for _, o := range s.orders {
		s.selected[o.ID] = true
	}
	return nil
}

// RemoveAdjustment clears the active adjustment. The selection stays as
// it is (full, since applying forced it) and may be edited again.
func (s *Session) RemoveAdjustment() error {
	if s.settled {
		return ErrSessionSettled
	}
	s.adjustment = nil
	return nil
}

// Adjustment returns a copy of the active adjustment, or nil.
func (s *Session) Adjustment() *Adjustment {
	if s.adjustment == nil {
		return nil
	}
	adj := *s.adjustment
	return &adj
}

// SelectedOrderIDs returns the ids currently on the bill, ascending.
func (s *Session) SelectedOrderIDs() []uint {
	ids := make([]uint, 0, len(s.selected))
	for id, in := range s.selected {
		if in {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Totals recomputes the subtotal / service fee / grand total for the
// current selection and adjustment. Without an adjustment each order
// keeps its own stored service fee; with one, the fee is recomputed at
// the flat ServiceFeeRate over the adjusted subtotal.
func (s *Session) Totals() Totals {
	var base, storedFees int64
	for _, o := range s.orders {
		if !s.selected[o.ID] {
			continue
		}
		base += o.Subtotal
		storedFees += o.ServiceFee
	}

	if s.adjustment == nil {
		return Totals{
			Subtotal:   base,
			ServiceFee: storedFees,
			GrandTotal: base + storedFees,
		}
	}

	delta := int64(math.Round(s.adjustment.Value))
	if s.adjustment.IsPercentage {
		delta = int64(math.Round(float64(base) * s.adjustment.Value / 100))
	}

	subtotal := base
	switch s.adjustment.Kind {
	case AdjustmentSurcharge:
		subtotal += delta
	default:
		subtotal -= delta
	}
	if subtotal < 0 {
		subtotal = 0
	}

	fee := subtotal * ServiceFeeRate / 100
	return Totals{
		Subtotal:   subtotal,
		ServiceFee: fee,
		GrandTotal: subtotal + fee,
	}
}

// PaidTotal sums every tendered payment.
func (s *Session) PaidTotal() int64 {
	var total int64
	for _, p := range s.payments {
		total += p.Amount
	}
	return total
}

// RemainingBalance is what is still owed. An empty selection reports one
// centavo so a bill with nothing on it can never be settled.
func (s *Session) RemainingBalance() int64 {
	if len(s.SelectedOrderIDs()) == 0 {
		return 1
	}
	remaining := s.Totals().GrandTotal - s.PaidTotal()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// AddPayment parses the user-entered amount and appends a tender.
// Cash is recorded at face value even above the remaining balance (the
// change goes back to the customer); card, pix and other are capped at
// the remaining balance and flagged Capped when reduced.
func (s *Session) AddPayment(method string, amountText string) (Payment, error) {
	if s.settled {
		return Payment{}, ErrSessionSettled
	}

	amount, err := ParseAmount(amountText)
	if err != nil || amount <= 0 {
		return Payment{}, ErrInvalidAmount
	}

	selected := s.SelectedOrderIDs()
	remaining := s.RemainingBalance()
	if len(selected) == 0 || remaining == 0 {
		return Payment{}, ErrNothingToPay
	}

	payment := Payment{
		ID:     uuid.New().String(),
		Method: method,
		Amount: amount,
	}
	if method != MethodCash && amount > remaining {
		payment.Amount = remaining
		payment.Capped = true
	}
	// A partially settled bill must stay reconstructible order by order;
	// with an adjustment the bill is indivisible and carries no links.
	if s.adjustment == nil {
		payment.LinkedOrderIDs = selected
	}

	s.payments = append(s.payments, payment)
	return payment, nil
}

// RemovePayment deletes a tender by id. Unknown ids are ignored.
func (s *Session) RemovePayment(paymentID string) error {
	if s.settled {
		return ErrSessionSettled
	}
	for i, p := range s.payments {
		if p.ID == paymentID {
			s.payments = append(s.payments[:i], s.payments[i+1:]...)
			return nil
		}
	}
	return nil
}

// Payments returns a copy of the ledger in tender order.
func (s *Session) Payments() []Payment {
	out := make([]Payment, len(s.payments))
	copy(out, s.payments)
	return out
}

// Settled reports whether Finalize already succeeded.
func (s *Session) Settled() bool {
	return s.settled
}

// Finalize validates that the bill is fully covered and emits the
// settlement record. The session is one-way: once settled it rejects
// every further mutation and the host is expected to discard it.
func (s *Session) Finalize() (*SettlementResult, error) {
	if s.settled {
		return nil, ErrSessionSettled
	}
	selected := s.SelectedOrderIDs()
	if len(selected) == 0 || s.RemainingBalance() != 0 {
		return nil, ErrBalanceNotZero
	}

	s.settled = true
	s.result = &SettlementResult{
		OrderIDs:   selected,
		Adjustment: s.Adjustment(),
		Payments:   s.Payments(),
		Totals:     s.Totals(),
	}
	return s.result, nil
}

// Result returns the settlement record once Finalize succeeded, nil
// before that. Lets the host retry persistence without re-finalizing.
func (s *Session) Result() *SettlementResult {
	return s.result
}

// Orders returns the order snapshot this session was opened with.
func (s *Session) Orders() []Order {
	out := make([]Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// IsSelected reports membership of one order on the bill.
func (s *Session) IsSelected(orderID uint) bool {
	return s.selected[orderID]
}
