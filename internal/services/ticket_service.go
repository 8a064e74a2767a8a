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

// TicketService owns ticket and ticket-item records. Mutations run as
// single transactions; totals and statuses are always recomputed, never
// patched in place.
type TicketService struct {
	db  *gorm.DB
	cfg config.PosConfig
}

func NewTicketService(db *gorm.DB, cfg config.PosConfig) *TicketService {
	return &TicketService{db: db, cfg: cfg}
}

type NewItem struct {
	Name      string
	UnitPrice int64
	Quantity  int
	Notes     string
}

func (s *TicketService) Create(tableID uuid.UUID) (*models.Ticket, error) {
	var table models.Table
	if err := s.db.First(&table, "id = ?", tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.NewError(billing.NotFound, "Table not found")
		}
		return nil, domainErr(err)
	}

	ticket := models.Ticket{
		TableID:  table.ID,
		Status:   billing.TicketOpen,
		Currency: s.cfg.Currency,
		OpenedAt: time.Now(),
	}

	if err := s.db.Create(&ticket).Error; err != nil {
		return nil, domainErr(err)
	}

	ticket.Items = []models.TicketItem{}
	return &ticket, nil
}

func (s *TicketService) Get(ticketID uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		First(&ticket, "id = ?", ticketID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.NewError(billing.NotFound, "Ticket not found")
		}
		return nil, domainErr(err)
	}

	ticket.PaidAmount = billing.PaidAmount(linesOf(ticket.Items))
	return &ticket, nil
}

func (s *TicketService) List(status billing.TicketStatus, tableID *uuid.UUID) ([]models.Ticket, error) {
	query := s.db.Order("opened_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if tableID != nil {
		query = query.Where("table_id = ?", *tableID)
	}

	var tickets []models.Ticket
	if err := query.Find(&tickets).Error; err != nil {
		return nil, domainErr(err)
	}
	return tickets, nil
}

func (s *TicketService) Items(ticketID uuid.UUID) ([]models.TicketItem, error) {
	var ticket models.Ticket
	if err := s.db.First(&ticket, "id = ?", ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.NewError(billing.NotFound, "Ticket not found")
		}
		return nil, domainErr(err)
	}

	var items []models.TicketItem
	if err := s.db.Where("ticket_id = ?", ticketID).Order("created_at").Find(&items).Error; err != nil {
		return nil, domainErr(err)
	}
	return items, nil
}

// AddItems appends order lines and recomputes the ticket totals in one
// transaction. Either every item lands and the totals match, or nothing
// changes.
func (s *TicketService) AddItems(ticketID uuid.UUID, newItems []NewItem) ([]models.TicketItem, error) {
	if len(newItems) == 0 {
		return nil, billing.NewError(billing.InvalidArgument, "items array is required")
	}
	for _, item := range newItems {
		if item.Name == "" {
			return nil, billing.NewError(billing.InvalidArgument, "Each item must have name, unitPrice, and quantity")
		}
		if item.Quantity <= 0 {
			return nil, billing.NewError(billing.InvalidArgument, "Quantity must be greater than 0")
		}
		if item.UnitPrice < 0 {
			return nil, billing.NewError(billing.InvalidArgument, "Unit price must be non-negative")
		}
	}

	var added []models.TicketItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var ticket models.Ticket
		if err := lockForUpdate(tx).First(&ticket, "id = ?", ticketID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return billing.NewError(billing.NotFound, "Ticket not found")
			}
			return err
		}

		if ticket.Status == billing.TicketCancelled {
			return billing.NewError(billing.Conflict, "Cannot add items to a cancelled ticket")
		}
		if ticket.Status == billing.TicketPaid {
			return billing.NewError(billing.Conflict, "Cannot add items to a fully paid ticket")
		}

		items := make([]models.TicketItem, 0, len(newItems))
		for _, item := range newItems {
			items = append(items, models.TicketItem{
				TicketID:     ticket.ID,
				Name:         item.Name,
				UnitPrice:    item.UnitPrice,
				Quantity:     item.Quantity,
				PaidQuantity: 0,
				Notes:        item.Notes,
				Status:       billing.ItemUnpaid,
			})
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		var all []models.TicketItem
		if err := tx.Where("ticket_id = ?", ticket.ID).Find(&all).Error; err != nil {
			return err
		}

		totals := billing.ComputeTotals(linesOf(all), s.cfg.TaxRate)
		err := tx.Model(&ticket).Updates(map[string]interface{}{
			"subtotal": totals.Subtotal,
			"tax":      totals.Tax,
			"total":    totals.Total,
		}).Error
		if err != nil {
			return err
		}

		added = items
		return nil
	})
	if err != nil {
		return nil, domainErr(err)
	}

	return added, nil
}

// Cancel marks a ticket cancelled. Tickets with confirmed payments
// cannot be cancelled; there are no refund semantics to unwind them.
func (s *TicketService) Cancel(ticketID uuid.UUID) (*models.Ticket, error) {
	var cancelled models.Ticket
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var ticket models.Ticket
		if err := lockForUpdate(tx).First(&ticket, "id = ?", ticketID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return billing.NewError(billing.NotFound, "Ticket not found")
			}
			return err
		}

		if ticket.Status == billing.TicketCancelled {
			return billing.NewError(billing.Conflict, "Ticket already cancelled")
		}
		if ticket.ClosedAt != nil {
			return billing.NewError(billing.Conflict, "Ticket already closed")
		}

		var confirmed int64
		err := tx.Model(&models.Payment{}).
			Where("ticket_id = ? AND status = ?", ticket.ID, billing.PaymentConfirmed).
			Count(&confirmed).Error
		if err != nil {
			return err
		}
		if confirmed > 0 {
			return billing.NewError(billing.Conflict, "Cannot cancel a ticket with confirmed payments")
		}

		now := time.Now()
		err = tx.Model(&ticket).Updates(map[string]interface{}{
			"status":    billing.TicketCancelled,
			"closed_at": now,
		}).Error
		if err != nil {
			return err
		}

		ticket.Status = billing.TicketCancelled
		ticket.ClosedAt = &now
		cancelled = ticket
		return nil
	})
	if err != nil {
		return nil, domainErr(err)
	}

	return &cancelled, nil
}
