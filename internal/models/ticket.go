package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tavola/pos-api/internal/billing"
	"gorm.io/gorm"
)

type Ticket struct {
	ID        uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	TableID   uuid.UUID            `gorm:"type:uuid;not null;index" json:"table_id"`
	Table     *Table               `gorm:"foreignKey:TableID" json:"-"`
	Status    billing.TicketStatus `gorm:"not null;default:'open'" json:"status"`
	Currency  string               `gorm:"not null" json:"currency"`
	Subtotal  int64                `gorm:"not null;default:0" json:"subtotal"`
	Tax       int64                `gorm:"not null;default:0" json:"tax"`
	Total     int64                `gorm:"not null;default:0" json:"total"`
	OpenedAt  time.Time            `gorm:"not null" json:"opened_at"`
	ClosedAt  *time.Time           `json:"closed_at,omitempty"`
	// PaidAmount is derived from the items on read, never stored.
	PaidAmount int64        `gorm:"-" json:"paid_amount"`
	Items      []TicketItem `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

func (ticket *Ticket) BeforeCreate(tx *gorm.DB) (err error) {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	return
}

// TicketItem is one order line. Price and quantity are immutable after
// creation; paid_quantity only grows and status is derived from it.
type TicketItem struct {
	ID           uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	TicketID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"ticket_id"`
	Name         string             `gorm:"not null" json:"name"`
	UnitPrice    int64              `gorm:"not null" json:"unit_price"`
	Quantity     int                `gorm:"not null" json:"quantity"`
	PaidQuantity int                `gorm:"not null;default:0" json:"paid_quantity"`
	Notes        string             `json:"notes,omitempty"`
	Status       billing.ItemStatus `gorm:"not null;default:'unpaid'" json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func (item *TicketItem) BeforeCreate(tx *gorm.DB) (err error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return
}

func (item *TicketItem) Line() billing.Line {
	return billing.Line{
		UnitPrice:    item.UnitPrice,
		Quantity:     item.Quantity,
		PaidQuantity: item.PaidQuantity,
	}
}
