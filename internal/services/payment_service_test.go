package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/tavola/pos-api/internal/billing"
	"github.com/tavola/pos-api/internal/models"
	"gorm.io/gorm"
)

func itemByName(t *testing.T, ticket *models.Ticket, name string) models.TicketItem {
	t.Helper()
	for _, item := range ticket.Items {
		if item.Name == name {
			return item
		}
	}
	t.Fatalf("item %s not found on ticket", name)
	return models.TicketItem{}
}

func countPayments(t *testing.T, db *gorm.DB, ticketID uuid.UUID) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.Payment{}).Where("ticket_id = ?", ticketID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count payments: %v", err)
	}
	return count
}

func TestSubmitPaymentPartialLeavesTicketPartiallyPaid(t *testing.T) {
	db := setupTestDB(t)
	payments := NewPaymentService(db, testPosConfig())
	tickets := NewTicketService(db, testPosConfig())

	ticket := openTicket(t, db,
		NewItem{Name: "Mofongo", UnitPrice: 350, Quantity: 2},
		NewItem{Name: "Churrasco", UnitPrice: 750, Quantity: 1},
	)
	mofongo := itemByName(t, ticket, "Mofongo")

	payment, err := payments.Submit(PaymentRequest{
		TicketID:          ticket.ID,
		Items:             []Allocation{{ItemID: mofongo.ID, Quantity: 2}},
		Amount:            700,
		Method:            "card",
		ExternalProvider:  "simulator",
		ExternalPaymentID: "ext-1",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if payment.Status != billing.PaymentConfirmed {
		t.Errorf("payment status = %s, want confirmed", payment.Status)
	}
	if len(payment.Items) != 1 || payment.Items[0].Amount != 700 {
		t.Errorf("unexpected allocations: %+v", payment.Items)
	}

	refreshed, err := tickets.Get(ticket.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if refreshed.Status != billing.TicketPartiallyPaid {
		t.Errorf("ticket status = %s, want partially_paid", refreshed.Status)
	}
	if refreshed.ClosedAt != nil {
		t.Error("partially paid ticket must not be closed")
	}
	if refreshed.PaidAmount != 700 {
		t.Errorf("paid_amount = %d, want 700", refreshed.PaidAmount)
	}

	paid := itemByName(t, refreshed, "Mofongo")
	if paid.Status != billing.ItemPaid || paid.PaidQuantity != 2 {
		t.Errorf("paid item state = %s/%d, want paid/2", paid.Status, paid.PaidQuantity)
	}
	unpaid := itemByName(t, refreshed, "Churrasco")
	if unpaid.Status != billing.ItemUnpaid || unpaid.PaidQuantity != 0 {
		t.Errorf("unpaid item state = %s/%d, want unpaid/0", unpaid.Status, unpaid.PaidQuantity)
	}
}

func TestSubmitPaymentFullClosesTicket(t *testing.T) {
	db := setupTestDB(t)
	payments := NewPaymentService(db, testPosConfig())
	tickets := NewTicketService(db, testPosConfig())

	ticket := openTicket(t, db,
		NewItem{Name: "Mofongo", UnitPrice: 350, Quantity: 2},
		NewItem{Name: "Churrasco", UnitPrice: 750, Quantity: 1},
	)

	allocations := []Allocation{
		{ItemID: itemByName(t, ticket, "Mofongo").ID, Quantity: 2},
		{ItemID: itemByName(t, ticket, "Churrasco").ID, Quantity: 1},
	}

	_, err := payments.Submit(PaymentRequest{
		TicketID:          ticket.ID,
		Items:             allocations,
		Amount:            1450,
		Method:            "cash",
		ExternalProvider:  "simulator",
		ExternalPaymentID: "ext-1",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	refreshed, err := tickets.Get(ticket.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if refreshed.Status != billing.TicketPaid {
		t.Errorf("ticket status = %s, want paid", refreshed.Status)
	}
	if refreshed.ClosedAt == nil {
		t.Error("fully paid ticket must have closed_at stamped")
	}
	for _, item := range refreshed.Items {
		if item.Status != billing.ItemPaid {
			t.Errorf("item %s status = %s, want paid", item.Name, item.Status)
		}
	}
}

func TestSubmitPaymentAmountMismatch(t *testing.T) {
	db := setupTestDB(t)
	payments := NewPaymentService(db, testPosConfig())
	tickets := NewTicketService(db, testPosConfig())

	ticket := openTicket(t, db, NewItem{Name: "Mofongo", UnitPrice: 350, Quantity: 2})
	mofongo := itemByName(t, ticket, "Mofongo")

	_, err := payments.Submit(PaymentRequest{
		TicketID:          ticket.ID,
		Items:             []Allocation{{ItemID: mofongo.ID, Quantity: 2}},
		Amount:            650,
		Method:            "card",
		ExternalProvider:  "simulator",
		ExternalPaymentID: "ext-1",
	})
	assertKind(t, err, billing.Conflict)
	if !strings.Contains(err.Error(), "amount mismatch") {
		t.Errorf("error should mention the mismatch, got %q", err.Error())
	}

	refreshed, err := tickets.Get(ticket.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if refreshed.Status != billing.TicketOpen {
		t.Errorf("ticket status = %s, want open after rejected payment", refreshed.Status)
	}
	if item := itemByName(t, refreshed, "Mofongo"); item.PaidQuantity != 0 {
		t.Errorf("paid_quantity = %d, want 0 after rejected payment", item.PaidQuantity)
	}
	if count := countPayments(t, db, ticket.ID); count != 0 {
		t.Errorf("expected no payment rows, found %d", count)
	}
}

func TestSubmitPaymentOverAllocation(t *testing.T) {
	db := setupTestDB(t)
	payments := NewPaymentService(db, testPosConfig())

	ticket := openTicket(t, db, NewItem{Name: "Mofongo", UnitPrice: 350, Quantity: 2})
	mofongo := itemByName(t, ticket, "Mofongo")

	_, err := payments.Submit(PaymentRequest{
		TicketID:          ticket.ID,
		Items:             []Allocation{{ItemID: mofongo.ID, Quantity: 3}},
		Amount:            1050,
		Method:            "card",
		ExternalProvider:  "simulator",
		ExternalPaymentID: "ext-1",
	})
	assertKind(t, err, billing.Conflict)
	if !strings.Contains(err.Error(), "available") {
		t.Errorf("error should mention availability, got %q", err.Error())
	}

	if count := countPayments(t, db, ticket.ID); count != 0 {
		t.Errorf("expected no payment rows, found %d", count)
	}
}

func TestSubmitPaymentRepeatedItemOverAllocation(t *testing.T) {
	db := setupTestDB(t)
	payments := NewPaymentService(db, testPosConfig())
	tickets := NewTicketService(db, testPosConfig())

	ticket := openTicket(t, db, NewItem{Name: "Mofongo", UnitPrice: 350, Quantity: 2})
	mofongo := itemByName(t, ticket, "Mofongo")

	_, err := payments.Submit(PaymentRequest{
		TicketID: ticket.ID,
		Items: []Allocation{
			{ItemID: mofongo.ID, Quantity: 2},
			{ItemID: mofongo.ID, Quantity: 2},
		},
		Amount:            1400,
		Method:            "card",
		ExternalProvider:  "simulator",
		ExternalPaymentID: "ext-1",
	})
	assertKind(t, err, billing.Conflict)
	if !strings.Contains(err.Error(), "available") {
		t.Errorf("error should mention availability, got %q", err.Error())
	}

	refreshed, err := tickets.Get(ticket.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	item := itemByName(t, refreshed, "Mofongo")
	if item.PaidQuantity != 0 {
		t.Errorf("paid_quantity = %d, want 0 after rejected payment", item.PaidQuantity)
	}
	if item.PaidQuantity > item.Quantity {
		t.Errorf("paid_quantity %d exceeds quantity %d", item.PaidQuantity, item.Quantity)
	}
	if count := countPayments(t, db, ticket.ID); count != 0 {
		t.Errorf("expected no payment rows, found %d", count)
	}
}

func TestSubmitPaymentRepeatedItemWithinAvailability(t *testing.T) {
	db := setupTestDB(t)
	payments := NewPaymentService(db, testPosConfig())
	tickets := NewTicketService(db, testPosConfig())

	ticket := openTicket(t, db, NewItem{Name: "Mofongo", UnitPrice: 350, Quantity: 2})
	mofongo := itemByName(t, ticket, "Mofongo")

	_, err := payments.Submit(PaymentRequest{
		TicketID: ticket.ID,
		Items: []Allocation{
			{ItemID: mofongo.ID, Quantity: 1},
			{ItemID: mofongo.ID, Quantity: 1},
		},
		Amount:            700,
		Method:            "card",
		ExternalProvider:  "simulator",
		ExternalPaymentID: "ext-1",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	refreshed, err := tickets.Get(ticket.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	item := itemByName(t, refreshed, "Mofongo")
	if item.PaidQuantity != 2 || item.Status != billing.ItemPaid {
		t.Errorf("item state = %s/%d, want paid/2", item.Status, item.PaidQuantity)
	}
	if refreshed.Status != billing.TicketPaid {
		t.Errorf("ticket status = %s, want paid", refreshed.Status)
	}
}

func TestSubmitPaymentLastUnitTwice(t *testing.T) {
	db := setupTestDB(t)
	payments := NewPaymentService(db, testPosConfig())
	tickets := NewTicketService(db, testPosConfig())

	ticket := openTicket(t, db,
		NewItem{Name: "Cerveza", UnitPrice: 200, Quantity: 1},
		NewItem{Name: "Flan", UnitPrice: 150, Quantity: 1},
	)
	cerveza := itemByName(t, ticket, "Cerveza")

	request := PaymentRequest{
		TicketID:          ticket.ID,
		Items:             []Allocation{{ItemID: cerveza.ID, Quantity: 1}},
		Amount:            200,
		Method:            "cash",
		ExternalProvider:  "simulator",
		ExternalPaymentID: "ext-1",
	}
	if _, err := payments.Submit(request); err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}

	request.ExternalPaymentID = "ext-2"
	_, err := payments.Submit(request)
	assertKind(t, err, billing.Conflict)
	if !strings.Contains(err.Error(), "already fully paid") {
		t.Errorf("error should say the item is already fully paid, got %q", err.Error())
	}

	refreshed, err := tickets.Get(ticket.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if item := itemByName(t, refreshed, "Cerveza"); item.PaidQuantity > item.Quantity {
		t.Errorf("paid_quantity %d exceeds quantity %d", item.PaidQuantity, item.Quantity)
	}
	if count := countPayments(t, db, ticket.ID); count != 1 {
		t.Errorf("expected exactly 1 payment row, found %d", count)
	}
}

func TestSubmitPaymentDuplicateExternalID(t *testing.T) {
	db := setupTestDB(t)
	payments := NewPaymentService(db, testPosConfig())

	ticket := openTicket(t, db, NewItem{Name: "Cerveza", UnitPrice: 200, Quantity: 2})
	cerveza := itemByName(t, ticket, "Cerveza")

	request := PaymentRequest{
		TicketID:          ticket.ID,
		Items:             []Allocation{{ItemID: cerveza.ID, Quantity: 1}},
		Amount:            200,
		Method:            "card",
		ExternalProvider:  "simulator",
		ExternalPaymentID: "ext-1",
	}
	if _, err := payments.Submit(request); err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}

	_, err := payments.Submit(request)
	assertKind(t, err, billing.Conflict)

	if count := countPayments(t, db, ticket.ID); count != 1 {
		t.Errorf("retry must not create a second payment, found %d", count)
	}
}

func TestSubmitPaymentRederivesPaidQuantity(t *testing.T) {
	db := setupTestDB(t)
	payments := NewPaymentService(db, testPosConfig())
	tickets := NewTicketService(db, testPosConfig())

	ticket := openTicket(t, db, NewItem{Name: "Mofongo", UnitPrice: 350, Quantity: 3})
	mofongo := itemByName(t, ticket, "Mofongo")

	for i, quantity := range []int{1, 2} {
		_, err := payments.Submit(PaymentRequest{
			TicketID:          ticket.ID,
			Items:             []Allocation{{ItemID: mofongo.ID, Quantity: quantity}},
			Amount:            int64(quantity) * 350,
			Method:            "cash",
			ExternalProvider:  "simulator",
			ExternalPaymentID: fmt.Sprintf("ext-%d", i+1),
		})
		if err != nil {
			t.Fatalf("Submit %d failed: %v", i+1, err)
		}
	}

	refreshed, err := tickets.Get(ticket.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	item := itemByName(t, refreshed, "Mofongo")
	if item.PaidQuantity != 3 {
		t.Errorf("paid_quantity = %d, want 3 (sum of confirmed allocations)", item.PaidQuantity)
	}
	if item.Status != billing.ItemPaid {
		t.Errorf("item status = %s, want paid", item.Status)
	}
	if refreshed.Status != billing.TicketPaid {
		t.Errorf("ticket status = %s, want paid", refreshed.Status)
	}
}

func TestSubmitPaymentValidation(t *testing.T) {
	db := setupTestDB(t)
	payments := NewPaymentService(db, testPosConfig())

	ticket := openTicket(t, db, NewItem{Name: "Cerveza", UnitPrice: 200, Quantity: 1})
	cerveza := itemByName(t, ticket, "Cerveza")

	valid := PaymentRequest{
		TicketID:          ticket.ID,
		Items:             []Allocation{{ItemID: cerveza.ID, Quantity: 1}},
		Amount:            200,
		Method:            "card",
		ExternalProvider:  "simulator",
		ExternalPaymentID: "ext-1",
	}

	cases := []struct {
		name   string
		mutate func(*PaymentRequest)
		kind   billing.Kind
	}{
		{"no items", func(r *PaymentRequest) { r.Items = nil }, billing.InvalidArgument},
		{"zero amount", func(r *PaymentRequest) { r.Amount = 0 }, billing.InvalidArgument},
		{"bad method", func(r *PaymentRequest) { r.Method = "crypto" }, billing.InvalidArgument},
		{"missing provider", func(r *PaymentRequest) { r.ExternalProvider = "" }, billing.InvalidArgument},
		{"missing external id", func(r *PaymentRequest) { r.ExternalPaymentID = "" }, billing.InvalidArgument},
		{"zero allocation quantity", func(r *PaymentRequest) { r.Items = []Allocation{{ItemID: cerveza.ID, Quantity: 0}} }, billing.InvalidArgument},
		{"unknown ticket", func(r *PaymentRequest) { r.TicketID = uuid.New() }, billing.NotFound},
		{"unknown item", func(r *PaymentRequest) { r.Items = []Allocation{{ItemID: uuid.New(), Quantity: 1}} }, billing.NotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			request := valid
			tc.mutate(&request)
			_, err := payments.Submit(request)
			assertKind(t, err, tc.kind)
		})
	}

	if count := countPayments(t, db, ticket.ID); count != 0 {
		t.Errorf("rejected payments must not persist, found %d rows", count)
	}
}

func TestSubmitPaymentOnCancelledTicket(t *testing.T) {
	db := setupTestDB(t)
	payments := NewPaymentService(db, testPosConfig())
	tickets := NewTicketService(db, testPosConfig())

	ticket := openTicket(t, db, NewItem{Name: "Cerveza", UnitPrice: 200, Quantity: 1})
	cerveza := itemByName(t, ticket, "Cerveza")

	if _, err := tickets.Cancel(ticket.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	_, err := payments.Submit(PaymentRequest{
		TicketID:          ticket.ID,
		Items:             []Allocation{{ItemID: cerveza.ID, Quantity: 1}},
		Amount:            200,
		Method:            "card",
		ExternalProvider:  "simulator",
		ExternalPaymentID: "ext-1",
	})
	assertKind(t, err, billing.Conflict)
	if !strings.Contains(err.Error(), "cancelled") {
		t.Errorf("error should mention cancellation, got %q", err.Error())
	}
}

func TestSubmitPaymentOnPaidTicket(t *testing.T) {
	db := setupTestDB(t)
	payments := NewPaymentService(db, testPosConfig())

	ticket := openTicket(t, db, NewItem{Name: "Cerveza", UnitPrice: 200, Quantity: 1})
	cerveza := itemByName(t, ticket, "Cerveza")

	request := PaymentRequest{
		TicketID:          ticket.ID,
		Items:             []Allocation{{ItemID: cerveza.ID, Quantity: 1}},
		Amount:            200,
		Method:            "card",
		ExternalProvider:  "simulator",
		ExternalPaymentID: "ext-1",
	}
	if _, err := payments.Submit(request); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	request.ExternalPaymentID = "ext-2"
	_, err := payments.Submit(request)
	assertKind(t, err, billing.Conflict)
	if !strings.Contains(err.Error(), "already fully paid") {
		t.Errorf("error should say the ticket is already fully paid, got %q", err.Error())
	}
}

func TestListPayments(t *testing.T) {
	db := setupTestDB(t)
	payments := NewPaymentService(db, testPosConfig())

	ticket := openTicket(t, db,
		NewItem{Name: "Mofongo", UnitPrice: 350, Quantity: 2},
		NewItem{Name: "Churrasco", UnitPrice: 750, Quantity: 1},
	)
	mofongo := itemByName(t, ticket, "Mofongo")
	churrasco := itemByName(t, ticket, "Churrasco")

	_, err := payments.Submit(PaymentRequest{
		TicketID: ticket.ID,
		Items: []Allocation{
			{ItemID: mofongo.ID, Quantity: 1},
			{ItemID: churrasco.ID, Quantity: 1},
		},
		Amount:            1100,
		Method:            "transfer",
		ExternalProvider:  "simulator",
		ExternalPaymentID: "ext-1",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	listed, err := payments.ListByTicket(ticket.ID)
	if err != nil {
		t.Fatalf("ListByTicket failed: %v", err)
	}

	if len(listed) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(listed))
	}
	payment := listed[0]
	if len(payment.Items) != 2 {
		t.Fatalf("expected 2 allocations, got %d", len(payment.Items))
	}

	var allocated int64
	for _, allocation := range payment.Items {
		allocated += allocation.Amount
	}
	if allocated != payment.Amount {
		t.Errorf("allocations sum to %d, payment amount is %d", allocated, payment.Amount)
	}

	_, err = payments.ListByTicket(uuid.New())
	assertKind(t, err, billing.NotFound)
}
