package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/eventdesk-backend/pkg/enums"
)

// Quote is a priced proposal (devis) sent to a client. Totals are derived from Lines.
type Quote struct {
	ID                 uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Reference          string            `gorm:"column:reference;type:varchar(32);not null;uniqueIndex"`
	ClientID           uuid.UUID         `gorm:"column:client_id;type:uuid;not null;index"`
	EventID            *uuid.UUID        `gorm:"column:event_id;type:uuid"`
	Status             enums.QuoteStatus `gorm:"column:status;type:varchar(32);not null;index"`
	CreatedBy          uuid.UUID         `gorm:"column:created_by;type:uuid;not null"`
	ValidUntil         *time.Time        `gorm:"column:valid_until"`
	Message            *string           `gorm:"column:message;type:text"`
	ModificationReason *string           `gorm:"column:modification_reason;type:text"`
	TotalExclusive     decimal.Decimal   `gorm:"column:total_exclusive;type:numeric(24,2);not null"`
	TotalTax           decimal.Decimal   `gorm:"column:total_tax;type:numeric(24,2);not null"`
	TotalInclusive     decimal.Decimal   `gorm:"column:total_inclusive;type:numeric(24,2);not null"`
	Version            int               `gorm:"column:version;not null"`
	SentAt             *time.Time        `gorm:"column:sent_at"`
	RespondedAt        *time.Time        `gorm:"column:responded_at"`
	CreatedAt          time.Time         `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt          time.Time         `gorm:"column:updated_at;autoUpdateTime"`
	Lines              []QuoteLine       `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns the primary key and the initial optimistic-lock version.
func (q *Quote) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.Version == 0 {
		q.Version = 1
	}
	return nil
}
