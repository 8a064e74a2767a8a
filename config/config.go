package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/tavola/pos-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
}

func LoadConfig() (*Config, error) {
	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
	}, nil
}

// PosConfig is the read-only pricing configuration injected into the
// ticket and payment services. Money is integer minor units throughout.
type PosConfig struct {
	Name     string
	Currency string
	TaxRate  float64
	APIKey   string
}

var supportedCurrencies = map[string]bool{
	"DOP": true,
	"USD": true,
}

func LoadPosConfig() (*PosConfig, error) {
	name := os.Getenv("POS_NAME")
	if name == "" {
		name = "POS Simulator"
	}

	currency := os.Getenv("POS_CURRENCY")
	if currency == "" {
		currency = "DOP"
	}
	if !supportedCurrencies[currency] {
		return nil, fmt.Errorf("unsupported currency: %s", currency)
	}

	taxRate := 0.18
	if v := os.Getenv("POS_TAX_RATE"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid POS_TAX_RATE: %v", err)
		}
		if parsed < 0 || parsed >= 1 {
			return nil, fmt.Errorf("POS_TAX_RATE must be in [0, 1), got %v", parsed)
		}
		taxRate = parsed
	}

	apiKey := os.Getenv("POS_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("POS_API_KEY is not set")
	}

	return &PosConfig{
		Name:     name,
		Currency: currency,
		TaxRate:  taxRate,
		APIKey:   apiKey,
	}, nil
}

func InitDatabase(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(&models.Table{}, &models.Ticket{}, &models.TicketItem{}, &models.Payment{}, &models.PaymentItem{})
	if err != nil {
		return nil, err
	}

	seedTables(db)

	return db, nil
}

func seedTables(db *gorm.DB) {
	tables := []models.Table{
		{MesaID: "mesa-1", Label: "Mesa 1", Seats: 4},
		{MesaID: "mesa-2", Label: "Mesa 2", Seats: 4},
		{MesaID: "mesa-3", Label: "Mesa 3", Seats: 6},
		{MesaID: "mesa-4", Label: "Terraza 1", Seats: 2},
	}

	for _, table := range tables {
		var existing models.Table
		result := db.Where("mesa_id = ?", table.MesaID).First(&existing)
		if result.Error != nil {
			db.Create(&table)
		}
	}
}
