package services

import (
	"errors"

	"github.com/tavola/pos-api/internal/billing"
	"github.com/tavola/pos-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate serializes concurrent mutations of the same ticket.
// sqlite (used in tests) has no FOR UPDATE but serializes writes itself.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// domainErr passes billing errors through untouched and hides storage
// errors behind a generic Internal message.
func domainErr(err error) error {
	var billingErr *billing.Error
	if errors.As(err, &billingErr) {
		return billingErr
	}
	return billing.NewError(billing.Internal, "Storage error")
}

func linesOf(items []models.TicketItem) []billing.Line {
	lines := make([]billing.Line, 0, len(items))
	for i := range items {
		lines = append(lines, items[i].Line())
	}
	return lines
}

func statusesOf(items []models.TicketItem) []billing.ItemStatus {
	statuses := make([]billing.ItemStatus, 0, len(items))
	for i := range items {
		statuses = append(statuses, items[i].Status)
	}
	return statuses
}
