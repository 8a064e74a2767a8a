package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tavola/pos-api/internal/billing"
	"gorm.io/gorm"
)

// Payment is append-only; rows are never updated after confirmation and
// never deleted. (ticket_id, external_payment_id) is unique so client
// retries cannot double-charge.
type Payment struct {
	ID                uuid.UUID             `gorm:"type:uuid;primary_key" json:"id"`
	TicketID          uuid.UUID             `gorm:"type:uuid;not null;index;uniqueIndex:idx_payments_ticket_external" json:"ticket_id"`
	Amount            int64                 `gorm:"not null" json:"amount"`
	Method            string                `gorm:"not null" json:"method"`
	ExternalProvider  string                `gorm:"not null" json:"external_provider"`
	ExternalPaymentID string                `gorm:"not null;uniqueIndex:idx_payments_ticket_external" json:"external_payment_id"`
	Status            billing.PaymentStatus `gorm:"not null;default:'pending'" json:"status"`
	Items             []PaymentItem         `gorm:"foreignKey:PaymentID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

func (payment *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	return
}

// PaymentItem allocates part of a payment to one ticket item. The
// allocation amounts of a payment sum to the payment's amount.
type PaymentItem struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	PaymentID    uuid.UUID `gorm:"type:uuid;not null;index" json:"payment_id"`
	TicketItemID uuid.UUID `gorm:"type:uuid;not null;index" json:"ticket_item_id"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	Amount       int64     `gorm:"not null" json:"amount"`
	CreatedAt    time.Time `json:"created_at"`
}

func (paymentItem *PaymentItem) BeforeCreate(tx *gorm.DB) (err error) {
	if paymentItem.ID == uuid.Nil {
		paymentItem.ID = uuid.New()
	}
	return
}
