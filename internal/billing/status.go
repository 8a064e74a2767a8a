package billing

type TicketStatus string

const (
	TicketOpen          TicketStatus = "open"
	TicketPartiallyPaid TicketStatus = "partially_paid"
	TicketPaid          TicketStatus = "paid"
	TicketCancelled     TicketStatus = "cancelled"
)

type ItemStatus string

const (
	ItemUnpaid        ItemStatus = "unpaid"
	ItemPartiallyPaid ItemStatus = "partially_paid"
	ItemPaid          ItemStatus = "paid"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentFailed    PaymentStatus = "failed"
)

// ItemStatusFor derives an item's payment status. Clamping paidQuantity
// to the valid range is the caller's job.
func ItemStatusFor(quantity, paidQuantity int) ItemStatus {
	if paidQuantity == 0 {
		return ItemUnpaid
	}
	if paidQuantity >= quantity {
		return ItemPaid
	}
	return ItemPartiallyPaid
}

// TicketStatusFor aggregates item statuses. Cancelled is never derived
// here; it is only set by an explicit cancel.
func TicketStatusFor(items []ItemStatus) TicketStatus {
	if len(items) == 0 {
		return TicketOpen
	}

	allPaid := true
	somePaid := false
	for _, status := range items {
		if status != ItemPaid {
			allPaid = false
		}
		if status == ItemPaid || status == ItemPartiallyPaid {
			somePaid = true
		}
	}

	if allPaid {
		return TicketPaid
	}
	if somePaid {
		return TicketPartiallyPaid
	}
	return TicketOpen
}
