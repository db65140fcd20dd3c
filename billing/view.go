package billing

// OrderView is one order line on the on-screen bill.
type OrderView struct {
	ID         uint       `json:"id"`
	Subtotal   int64      `json:"subtotal"`
	ServiceFee int64      `json:"service_fee"`
	Selected   bool       `json:"selected"`
	Items      []LineItem `json:"items"`
}

// View is the read-only snapshot returned to the UI after every
// operation: selection, totals, ledger and remaining balance, with
// amounts pre-formatted for display.
type View struct {
	Orders           []OrderView `json:"orders"`
	Adjustment       *Adjustment `json:"adjustment,omitempty"`
	Totals           Totals      `json:"totals"`
	Payments         []Payment   `json:"payments"`
	PaidTotal        int64       `json:"paid_total"`
	RemainingBalance int64       `json:"remaining_balance"`
	Settled          bool        `json:"settled"`

	SubtotalDisplay  string `json:"subtotal_display"`
	ServiceDisplay   string `json:"service_fee_display"`
	GrandDisplay     string `json:"grand_total_display"`
	RemainingDisplay string `json:"remaining_display"`
}

// Snapshot builds the current View of a session.
func (s *Session) Snapshot() View {
	totals := s.Totals()
	remaining := s.RemainingBalance()

	orders := make([]OrderView, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, OrderView{
			ID:         o.ID,
			Subtotal:   o.Subtotal,
			ServiceFee: o.ServiceFee,
			Selected:   s.selected[o.ID],
			Items:      o.Items,
		})
	}

	return View{
		Orders:           orders,
		Adjustment:       s.Adjustment(),
		Totals:           totals,
		Payments:         s.Payments(),
		PaidTotal:        s.PaidTotal(),
		RemainingBalance: remaining,
		Settled:          s.settled,
		SubtotalDisplay:  FormatBRL(totals.Subtotal),
		ServiceDisplay:   FormatBRL(totals.ServiceFee),
		GrandDisplay:     FormatBRL(totals.GrandTotal),
		RemainingDisplay: FormatBRL(remaining),
	}
}
