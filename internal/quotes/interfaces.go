package quotes

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/eventdesk-backend/pkg/db/models"
	"github.com/angelmondragon/eventdesk-backend/pkg/pagination"
)

// ErrStaleQuote is returned by RunAtomic when the stored version moved on
// between load and save.
var ErrStaleQuote = errors.New("quote was modified concurrently")

// MutateFunc mutates a freshly loaded quote inside the repository transaction.
// Returning an error rolls the whole unit back.
type MutateFunc func(tx *gorm.DB, quote *models.Quote) error

// Repository defines persistence operations for quotes and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, quote *models.Quote) (*models.Quote, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*QuoteList, error)
	RunAtomic(ctx context.Context, id uuid.UUID, fn MutateFunc) (*models.Quote, error)
}

// DocumentRenderer turns a quote into a printable document.
type DocumentRenderer interface {
	Render(ctx context.Context, quote *models.Quote) ([]byte, error)
	ContentType() string
}

// MetricsRecorder receives best-effort operation metrics.
type MetricsRecorder interface {
	ObserveOperation(operation, outcome string, duration time.Duration)
	IncTransition(action, from, to string)
}
