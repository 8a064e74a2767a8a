package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Table struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	MesaID    string    `gorm:"not null;unique" json:"mesa_id"`
	Label     string    `gorm:"not null" json:"label"`
	Seats     int       `gorm:"not null;default:4" json:"seats"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (table *Table) BeforeCreate(tx *gorm.DB) (err error) {
	if table.ID == uuid.Nil {
		table.ID = uuid.New()
	}
	return
}
