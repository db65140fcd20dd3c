package billing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func twoOrders() []Order {
	return []Order{
		{ID: 1, Subtotal: 5000, Items: []LineItem{{Name: "X-Salada", Quantity: 2, UnitPrice: 2500}}},
		{ID: 2, Subtotal: 3000, Items: []LineItem{{Name: "Suco de Laranja", Quantity: 3, UnitPrice: 1000}}},
	}
}

func TestNewSessionSelectsEverything(t *testing.T) {
	s := NewSession(twoOrders())
	assert.Equal(t, []uint{1, 2}, s.SelectedOrderIDs())
	assert.Equal(t, Totals{Subtotal: 8000, ServiceFee: 0, GrandTotal: 8000}, s.Totals())
}

func TestSubtotalFollowsSelection(t *testing.T) {
	s := NewSession(twoOrders())

	assert.NoError(t, s.ToggleOrder(2))
	assert.Equal(t, []uint{1}, s.SelectedOrderIDs())
	assert.Equal(t, int64(5000), s.Totals().Subtotal)

	// Toggling back restores the full bill.
	assert.NoError(t, s.ToggleOrder(2))
	assert.Equal(t, int64(8000), s.Totals().Subtotal)

	// Unknown ids are ignored, the order list is a snapshot.
	assert.NoError(t, s.ToggleOrder(99))
	assert.Equal(t, []uint{1, 2}, s.SelectedOrderIDs())
}

func TestPerOrderServiceFeesAreSummed(t *testing.T) {
	s := NewSession([]Order{
		{ID: 1, Subtotal: 5000, ServiceFee: 500},
		{ID: 2, Subtotal: 3000, ServiceFee: 150},
	})
	assert.Equal(t, Totals{Subtotal: 8000, ServiceFee: 650, GrandTotal: 8650}, s.Totals())

	assert.NoError(t, s.ToggleOrder(1))
	assert.Equal(t, Totals{Subtotal: 3000, ServiceFee: 150, GrandTotal: 3150}, s.Totals())
}

func TestPercentageDiscountRecomputesServiceFee(t *testing.T) {
	// Scenario: 5000 + 3000, 10% discount -> 7200 + 720 fee = 7920.
	s := NewSession(twoOrders())
	assert.NoError(t, s.ApplyAdjustment(AdjustmentDiscount, 10, true))
	assert.Equal(t, Totals{Subtotal: 7200, ServiceFee: 720, GrandTotal: 7920}, s.Totals())
}

func TestFixedSurcharge(t *testing.T) {
	s := NewSession(twoOrders())
	assert.NoError(t, s.ApplyAdjustment(AdjustmentSurcharge, 1000, false))
	assert.Equal(t, Totals{Subtotal: 9000, ServiceFee: 900, GrandTotal: 9900}, s.Totals())
}

func TestDiscountLargerThanBillClampsAtZero(t *testing.T) {
	s := NewSession(twoOrders())
	assert.NoError(t, s.ApplyAdjustment(AdjustmentDiscount, 999999, false))

	totals := s.Totals()
	assert.Equal(t, int64(0), totals.Subtotal)
	assert.Equal(t, int64(0), totals.ServiceFee)
	assert.Equal(t, int64(0), totals.GrandTotal)
}

func TestAdjustmentForcesFullSelection(t *testing.T) {
	s := NewSession(twoOrders())
	assert.NoError(t, s.ToggleOrder(2))
	assert.Equal(t, []uint{1}, s.SelectedOrderIDs())

	assert.NoError(t, s.ApplyAdjustment(AdjustmentDiscount, 10, true))
	assert.Equal(t, []uint{1, 2}, s.SelectedOrderIDs())

	// Applying again replaces the adjustment, selection stays full.
	assert.NoError(t, s.ApplyAdjustment(AdjustmentSurcharge, 5, true))
	assert.Equal(t, []uint{1, 2}, s.SelectedOrderIDs())
	adj := s.Adjustment()
	assert.Equal(t, AdjustmentSurcharge, adj.Kind)
	assert.Equal(t, 5.0, adj.Value)
}

func TestSelectionLockedWhileAdjusted(t *testing.T) {
	s := NewSession(twoOrders())
	assert.NoError(t, s.ApplyAdjustment(AdjustmentDiscount, 10, true))

	err := s.ToggleOrder(1)
	assert.ErrorIs(t, err, ErrSelectionLocked)
	assert.Equal(t, []uint{1, 2}, s.SelectedOrderIDs())

	// Removing the adjustment unlocks the selection again.
	assert.NoError(t, s.RemoveAdjustment())
	assert.NoError(t, s.ToggleOrder(1))
	assert.Equal(t, []uint{2}, s.SelectedOrderIDs())
}

func TestInvalidAdjustmentValues(t *testing.T) {
	s := NewSession(twoOrders())
	assert.ErrorIs(t, s.ApplyAdjustment(AdjustmentDiscount, 0, true), ErrInvalidAdjustment)
	assert.ErrorIs(t, s.ApplyAdjustment(AdjustmentSurcharge, -5, false), ErrInvalidAdjustment)
	assert.ErrorIs(t, s.ApplyAdjustment(AdjustmentDiscount, math.NaN(), true), ErrInvalidAdjustment)
	assert.ErrorIs(t, s.ApplyAdjustment(AdjustmentDiscount, math.Inf(1), true), ErrInvalidAdjustment)
	assert.Nil(t, s.Adjustment())

	// Totals stay intact after every rejected attempt.
	totals := s.Totals()
	assert.Equal(t, int64(8000), totals.Subtotal)
}

func TestUnknownAdjustmentKindIsRejected(t *testing.T) {
	s := NewSession(twoOrders())
	assert.ErrorIs(t, s.ApplyAdjustment("rebate", 10, true), ErrInvalidAdjustment)
	assert.ErrorIs(t, s.ApplyAdjustment("", 10, false), ErrInvalidAdjustment)
	assert.Nil(t, s.Adjustment())

	// A rejected kind must not force the selection either.
	assert.NoError(t, s.ToggleOrder(2))
	assert.Equal(t, []uint{1}, s.SelectedOrderIDs())
}

func TestCashSettlement(t *testing.T) {
	// Scenario: full bill of 8000 paid with one cash tender.
	s := NewSession(twoOrders())

	payment, err := s.AddPayment(MethodCash, "80,00")
	assert.NoError(t, err)
	assert.Equal(t, int64(8000), payment.Amount)
	assert.False(t, payment.Capped)
	assert.Equal(t, []uint{1, 2}, payment.LinkedOrderIDs)
	assert.Equal(t, int64(0), s.RemainingBalance())

	result, err := s.Finalize()
	assert.NoError(t, err)
	assert.Equal(t, []uint{1, 2}, result.OrderIDs)
	assert.Equal(t, int64(8000), result.Totals.GrandTotal)
	assert.Len(t, result.Payments, 1)
}

func TestCashOverpaymentIsRecordedInFull(t *testing.T) {
	// Scenario: grand total 10000, customer hands 15000 in cash. The
	// ledger keeps the full tender; counting change is the host's job.
	s := NewSession([]Order{{ID: 1, Subtotal: 10000}})

	payment, err := s.AddPayment(MethodCash, "150,00")
	assert.NoError(t, err)
	assert.Equal(t, int64(15000), payment.Amount)
	assert.False(t, payment.Capped)
	assert.Equal(t, int64(0), s.RemainingBalance())

	_, err = s.Finalize()
	assert.NoError(t, err)
}

func TestNonCashPaymentsAreCapped(t *testing.T) {
	// Scenario: grand total 10000, card tender of 12000 is reduced.
	s := NewSession([]Order{{ID: 1, Subtotal: 10000}})

	payment, err := s.AddPayment(MethodCard, "120,00")
	assert.NoError(t, err)
	assert.Equal(t, int64(10000), payment.Amount)
	assert.True(t, payment.Capped)
	assert.Equal(t, int64(0), s.RemainingBalance())
}

func TestNonCashNeverExceedsRemaining(t *testing.T) {
	s := NewSession([]Order{{ID: 1, Subtotal: 10000}})

	first, err := s.AddPayment(MethodPix, "60,00")
	assert.NoError(t, err)
	assert.Equal(t, int64(6000), first.Amount)
	assert.False(t, first.Capped)
	assert.Equal(t, int64(4000), s.RemainingBalance())

	second, err := s.AddPayment(MethodOther, "60,00")
	assert.NoError(t, err)
	assert.Equal(t, int64(4000), second.Amount)
	assert.True(t, second.Capped)
	assert.Equal(t, int64(0), s.RemainingBalance())
}

func TestRemainingBalanceIsOrderIndependent(t *testing.T) {
	amounts := []string{"20,00", "30,00", "25,00"}

	forward := NewSession([]Order{{ID: 1, Subtotal: 10000}})
	for _, a := range amounts {
		_, err := forward.AddPayment(MethodCash, a)
		assert.NoError(t, err)
	}

	backward := NewSession([]Order{{ID: 1, Subtotal: 10000}})
	for i := len(amounts) - 1; i >= 0; i-- {
		_, err := backward.AddPayment(MethodCash, amounts[i])
		assert.NoError(t, err)
	}

	assert.Equal(t, forward.RemainingBalance(), backward.RemainingBalance())
	assert.Equal(t, int64(2500), forward.RemainingBalance())
}

func TestAddPaymentRejections(t *testing.T) {
	s := NewSession(twoOrders())

	_, err := s.AddPayment(MethodCash, "0")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = s.AddPayment(MethodCash, "-5,00")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = s.AddPayment(MethodCash, "oitenta")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	// Nothing left to pay once the bill is covered.
	_, err = s.AddPayment(MethodCash, "80,00")
	assert.NoError(t, err)
	_, err = s.AddPayment(MethodCard, "1,00")
	assert.ErrorIs(t, err, ErrNothingToPay)
}

func TestAddPaymentWithEmptySelection(t *testing.T) {
	s := NewSession(twoOrders())
	assert.NoError(t, s.ToggleOrder(1))
	assert.NoError(t, s.ToggleOrder(2))

	_, err := s.AddPayment(MethodCash, "80,00")
	assert.ErrorIs(t, err, ErrNothingToPay)
}

func TestLinkedOrdersOmittedUnderAdjustment(t *testing.T) {
	s := NewSession(twoOrders())
	assert.NoError(t, s.ApplyAdjustment(AdjustmentDiscount, 10, true))

	payment, err := s.AddPayment(MethodCash, "79,20")
	assert.NoError(t, err)
	assert.Nil(t, payment.LinkedOrderIDs)
}

func TestLinkedOrdersSnapshotPartialSelection(t *testing.T) {
	s := NewSession(twoOrders())
	assert.NoError(t, s.ToggleOrder(2))

	payment, err := s.AddPayment(MethodCard, "50,00")
	assert.NoError(t, err)
	assert.Equal(t, []uint{1}, payment.LinkedOrderIDs)
}

func TestRemovePaymentIsIdempotent(t *testing.T) {
	s := NewSession(twoOrders())
	payment, err := s.AddPayment(MethodCash, "30,00")
	assert.NoError(t, err)
	assert.Equal(t, int64(5000), s.RemainingBalance())

	assert.NoError(t, s.RemovePayment(payment.ID))
	assert.Equal(t, int64(8000), s.RemainingBalance())

	// Removing again, or removing an unknown id, changes nothing.
	assert.NoError(t, s.RemovePayment(payment.ID))
	assert.NoError(t, s.RemovePayment("nao-existe"))
	assert.Equal(t, int64(8000), s.RemainingBalance())
}

func TestFinalizeRequiresZeroBalance(t *testing.T) {
	s := NewSession(twoOrders())

	_, err := s.Finalize()
	assert.ErrorIs(t, err, ErrBalanceNotZero)

	_, err = s.AddPayment(MethodCash, "50,00")
	assert.NoError(t, err)
	_, err = s.Finalize()
	assert.ErrorIs(t, err, ErrBalanceNotZero)

	_, err = s.AddPayment(MethodCash, "30,00")
	assert.NoError(t, err)
	_, err = s.Finalize()
	assert.NoError(t, err)
}

func TestFinalizeRejectsEmptySelection(t *testing.T) {
	// Scenario: everything deselected. Even with no money owed the bill
	// is unsettleable.
	s := NewSession(twoOrders())
	assert.NoError(t, s.ToggleOrder(1))
	assert.NoError(t, s.ToggleOrder(2))

	assert.Equal(t, int64(1), s.RemainingBalance())
	_, err := s.Finalize()
	assert.ErrorIs(t, err, ErrBalanceNotZero)
}

func TestSettledSessionRejectsMutation(t *testing.T) {
	s := NewSession(twoOrders())
	_, err := s.AddPayment(MethodCash, "80,00")
	assert.NoError(t, err)
	_, err = s.Finalize()
	assert.NoError(t, err)
	assert.True(t, s.Settled())

	assert.ErrorIs(t, s.ToggleOrder(1), ErrSessionSettled)
	assert.ErrorIs(t, s.ApplyAdjustment(AdjustmentDiscount, 10, true), ErrSessionSettled)
	assert.ErrorIs(t, s.RemoveAdjustment(), ErrSessionSettled)
	_, err = s.AddPayment(MethodCash, "1,00")
	assert.ErrorIs(t, err, ErrSessionSettled)
	_, err = s.Finalize()
	assert.ErrorIs(t, err, ErrSessionSettled)
}

func TestResetSelectionDropsEverything(t *testing.T) {
	s := NewSession(twoOrders())
	assert.NoError(t, s.ApplyAdjustment(AdjustmentDiscount, 10, true))

	fresh := append(twoOrders(), Order{ID: 3, Subtotal: 2000})
	s.ResetSelection(fresh)

	assert.Equal(t, []uint{1, 2, 3}, s.SelectedOrderIDs())
	assert.Nil(t, s.Adjustment())
	assert.Empty(t, s.Payments())
	assert.Equal(t, int64(10000), s.Totals().Subtotal)
}

func TestSnapshotFormatsDisplayAmounts(t *testing.T) {
	s := NewSession(twoOrders())
	view := s.Snapshot()

	assert.Len(t, view.Orders, 2)
	assert.True(t, view.Orders[0].Selected)
	assert.Equal(t, "R$ 80,00", view.GrandDisplay)
	assert.Equal(t, "R$ 80,00", view.RemainingDisplay)
	assert.Equal(t, "R$ 0,00", view.ServiceDisplay)
	assert.False(t, view.Settled)
}
