package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tavola/pos-api/config"
	"github.com/tavola/pos-api/internal/billing"
	"github.com/tavola/pos-api/internal/models"
	"gorm.io/gorm"
)

// PaymentService validates external payments against ticket-item
// availability and commits the payment, its allocations and the derived
// statuses as one transaction.
type PaymentService struct {
	db  *gorm.DB
	cfg config.PosConfig
}

func NewPaymentService(db *gorm.DB, cfg config.PosConfig) *PaymentService {
	return &PaymentService{db: db, cfg: cfg}
}

type Allocation struct {
	ItemID   uuid.UUID
	Quantity int
}

type PaymentRequest struct {
	TicketID          uuid.UUID
	Items             []Allocation
	Amount            int64
	Method            string
	ExternalProvider  string
	ExternalPaymentID string
}

var paymentMethods = map[string]bool{
	"card":     true,
	"cash":     true,
	"transfer": true,
}

// Submit runs the full validation sequence before touching anything,
// then commits payment, allocations and re-derived statuses atomically.
// The caller-supplied amount must equal the server-computed allocation
// total exactly; pricing is never taken from the client.
func (s *PaymentService) Submit(req PaymentRequest) (*models.Payment, error) {
	if len(req.Items) == 0 {
		return nil, billing.NewError(billing.InvalidArgument, "ticketId and items array are required")
	}
	if req.Amount <= 0 {
		return nil, billing.NewError(billing.InvalidArgument, "amount must be greater than 0")
	}
	if !paymentMethods[req.Method] {
		return nil, billing.NewError(billing.InvalidArgument, "method must be one of: card, cash, transfer")
	}
	if req.ExternalProvider == "" || req.ExternalPaymentID == "" {
		return nil, billing.NewError(billing.InvalidArgument, "externalProvider and externalPaymentId are required")
	}
	for _, allocation := range req.Items {
		if allocation.ItemID == uuid.Nil || allocation.Quantity <= 0 {
			return nil, billing.NewError(billing.InvalidArgument, "Each payment item must have itemId and quantity")
		}
	}

	var payment models.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var ticket models.Ticket
		if err := lockForUpdate(tx).First(&ticket, "id = ?", req.TicketID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return billing.NewError(billing.NotFound, "Ticket not found")
			}
			return err
		}

		if ticket.Status == billing.TicketPaid {
			return billing.NewError(billing.Conflict, "Ticket is already fully paid")
		}
		if ticket.Status == billing.TicketCancelled {
			return billing.NewError(billing.Conflict, "Ticket is cancelled")
		}

		var items []models.TicketItem
		if err := tx.Where("ticket_id = ?", ticket.ID).Find(&items).Error; err != nil {
			return err
		}
		itemsByID := make(map[uuid.UUID]*models.TicketItem, len(items))
		for i := range items {
			itemsByID[items[i].ID] = &items[i]
		}

		// Requested quantities are summed per item, so a request that
		// repeats an itemId counts against the same availability.
		requested := make(map[uuid.UUID]int, len(req.Items))
		var calculatedAmount int64
		for _, allocation := range req.Items {
			item, ok := itemsByID[allocation.ItemID]
			if !ok {
				return billing.NewError(billing.NotFound, "Item %s not found on ticket", allocation.ItemID)
			}

			available := item.Quantity - item.PaidQuantity
			if available == 0 {
				return billing.NewError(billing.Conflict, "Item %s (%s) is already fully paid", item.ID, item.Name)
			}
			requested[item.ID] += allocation.Quantity
			if requested[item.ID] > available {
				return billing.NewError(billing.Conflict,
					"Only %d units of %s are available for payment (%d already paid)",
					available, item.Name, item.PaidQuantity)
			}

			calculatedAmount += item.UnitPrice * int64(allocation.Quantity)
		}

		var duplicates int64
		err := tx.Model(&models.Payment{}).
			Where("ticket_id = ? AND external_payment_id = ?", ticket.ID, req.ExternalPaymentID).
			Count(&duplicates).Error
		if err != nil {
			return err
		}
		if duplicates > 0 {
			return billing.NewError(billing.Conflict, "Duplicate external payment id: %s", req.ExternalPaymentID)
		}

		if calculatedAmount != req.Amount {
			return billing.NewError(billing.Conflict,
				"Payment amount mismatch. Expected %d, got %d", calculatedAmount, req.Amount)
		}

		payment = models.Payment{
			TicketID:          ticket.ID,
			Amount:            req.Amount,
			Method:            req.Method,
			ExternalProvider:  req.ExternalProvider,
			ExternalPaymentID: req.ExternalPaymentID,
			Status:            billing.PaymentConfirmed,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		allocations := make([]models.PaymentItem, 0, len(req.Items))
		for _, allocation := range req.Items {
			item := itemsByID[allocation.ItemID]
			allocations = append(allocations, models.PaymentItem{
				PaymentID:    payment.ID,
				TicketItemID: item.ID,
				Quantity:     allocation.Quantity,
				Amount:       item.UnitPrice * int64(allocation.Quantity),
			})
		}
		if err := tx.Create(&allocations).Error; err != nil {
			return err
		}

		// Paid quantities are re-derived from the confirmed allocation
		// history, not incremented, so a replayed or concurrent payment
		// can never double-count.
		for _, allocation := range req.Items {
			item := itemsByID[allocation.ItemID]

			var paidQuantity int64
			err := tx.Model(&models.PaymentItem{}).
				Joins("JOIN payments ON payments.id = payment_items.payment_id").
				Where("payment_items.ticket_item_id = ? AND payments.status = ?", item.ID, billing.PaymentConfirmed).
				Select("COALESCE(SUM(payment_items.quantity), 0)").
				Scan(&paidQuantity).Error
			if err != nil {
				return err
			}

			item.PaidQuantity = int(paidQuantity)
			item.Status = billing.ItemStatusFor(item.Quantity, item.PaidQuantity)

			err = tx.Model(&models.TicketItem{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
				"paid_quantity": item.PaidQuantity,
				"status":        item.Status,
			}).Error
			if err != nil {
				return err
			}
		}

		ticketStatus := billing.TicketStatusFor(statusesOf(items))
		updates := map[string]interface{}{"status": ticketStatus}
		if ticketStatus == billing.TicketPaid && ticket.ClosedAt == nil {
			updates["closed_at"] = time.Now()
		}
		if err := tx.Model(&ticket).Updates(updates).Error; err != nil {
			return err
		}

		payment.Items = allocations
		return nil
	})
	if err != nil {
		return nil, domainErr(err)
	}

	return &payment, nil
}

func (s *PaymentService) ListByTicket(ticketID uuid.UUID) ([]models.Payment, error) {
	var ticket models.Ticket
	if err := s.db.First(&ticket, "id = ?", ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.NewError(billing.NotFound, "Ticket not found")
		}
		return nil, domainErr(err)
	}

	var payments []models.Payment
	err := s.db.Preload("Items").
		Where("ticket_id = ?", ticketID).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, domainErr(err)
	}
	return payments, nil
}
