package services

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/tavola/pos-api/config"
	"github.com/tavola/pos-api/internal/billing"
	"github.com/tavola/pos-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(&models.Table{}, &models.Ticket{}, &models.TicketItem{}, &models.Payment{}, &models.PaymentItem{})
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func testPosConfig() config.PosConfig {
	return config.PosConfig{
		Name:     "Test POS",
		Currency: "DOP",
		TaxRate:  0.18,
		APIKey:   "test-key",
	}
}

func createTestTable(t *testing.T, db *gorm.DB) models.Table {
	t.Helper()

	table := models.Table{MesaID: "mesa-" + uuid.NewString(), Label: "Mesa", Seats: 4}
	if err := db.Create(&table).Error; err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	return table
}

// openTicket creates a ticket and adds the given items through the
// service so totals and statuses go through the real code path.
func openTicket(t *testing.T, db *gorm.DB, items ...NewItem) *models.Ticket {
	t.Helper()

	svc := NewTicketService(db, testPosConfig())
	table := createTestTable(t, db)

	ticket, err := svc.Create(table.ID)
	if err != nil {
		t.Fatalf("failed to create ticket: %v", err)
	}

	if len(items) > 0 {
		if _, err := svc.AddItems(ticket.ID, items); err != nil {
			t.Fatalf("failed to add items: %v", err)
		}
	}

	refreshed, err := svc.Get(ticket.ID)
	if err != nil {
		t.Fatalf("failed to reload ticket: %v", err)
	}
	return refreshed
}

func assertKind(t *testing.T, err error, kind billing.Kind) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	var billingErr *billing.Error
	if !errors.As(err, &billingErr) {
		t.Fatalf("expected billing error, got %v", err)
	}
	if billingErr.Kind != kind {
		t.Fatalf("expected %s error, got %s (%s)", kind, billingErr.Kind, billingErr.Message)
	}
}
