package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QuoteLine is one billable row of a quote. Totals are computed, never set directly.
type QuoteLine struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	QuoteID        uuid.UUID       `gorm:"column:quote_id;type:uuid;not null;index"`
	Label          string          `gorm:"column:label;type:varchar(255);not null"`
	Description    *string         `gorm:"column:description;type:text"`
	Quantity       int             `gorm:"column:quantity;not null"`
	UnitPrice      decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	TaxRate        decimal.Decimal `gorm:"column:tax_rate;type:numeric(7,2);not null"`
	TotalExclusive decimal.Decimal `gorm:"column:total_exclusive;type:numeric(24,2);not null"`
	TotalTax       decimal.Decimal `gorm:"column:total_tax;type:numeric(24,2);not null"`
	TotalInclusive decimal.Decimal `gorm:"column:total_inclusive;type:numeric(24,2);not null"`
	Position       int             `gorm:"column:position;not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (l *QuoteLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
