package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type AuditEntry struct {
	ID uint `gorm:"primaryKey"`

	Action       string `gorm:"not null"`
	NumeroTicket string `gorm:"index;not null"`
	EventID      uint   `gorm:"index;not null"`
	ActorID      *uint
	Location     string
	HolderName   string
	Prix         float64
	Gratuit      bool

	CreatedAt time.Time
}

func (AuditEntry) TableName() string {
	return "audit_entries"
}

type AuditDAO struct {
	db *gorm.DB
}

func NewAuditDAO(db *gorm.DB) *AuditDAO {
	return &AuditDAO{
		db: db,
	}
}

func (d *AuditDAO) Insert(ctx context.Context, entry AuditEntry) (AuditEntry, error) {
	result := d.db.WithContext(ctx).Create(&entry)
	if result.Error != nil {
		return AuditEntry{}, result.Error
	}

	return entry, nil
}
