package quotes

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/eventdesk-backend/internal/repo"
	"github.com/angelmondragon/eventdesk-backend/pkg/db/models"
	"github.com/angelmondragon/eventdesk-backend/pkg/pagination"
)

type repository struct {
	repo.Base
}

// NewRepository builds a quotes repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

func (r *repository) Create(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	if err := r.DB(ctx).Create(quote).Error; err != nil {
		return nil, err
	}
	return quote, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.DB(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) (*QuoteList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.DB(ctx).Model(&models.Quote{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.ClientID != nil {
		query = query.Where("client_id = ?", *filters.ClientID)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at < ? OR (created_at = ? AND id < ?))", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Quote
	err = query.
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	page, last := pagination.SplitPage(rows, limit)
	list := &QuoteList{Items: page}
	if last != nil {
		list.NextCursor = pagination.CursorAfter(last.CreatedAt, last.ID)
	}
	return list, nil
}

// RunAtomic loads the quote under a row lock, applies fn, and writes the
// header with a version check before syncing added and removed lines.
func (r *repository) RunAtomic(ctx context.Context, id uuid.UUID, fn MutateFunc) (*models.Quote, error) {
	var result *models.Quote
	err := r.Transaction(ctx, func(tx *gorm.DB) error {
		quote, err := lockQuote(tx, id)
		if err != nil {
			return err
		}

		loadedVersion := quote.Version
		before := lineIDs(quote.Lines)

		if err := fn(tx, quote); err != nil {
			return err
		}
		if err := saveHeader(tx, quote, loadedVersion); err != nil {
			return err
		}
		if err := syncLines(tx, quote, before); err != nil {
			return err
		}
		result = quote
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func lockQuote(tx *gorm.DB, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := repo.ForUpdate(tx).
		Where("id = ?", id).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	if err := tx.Where("quote_id = ?", id).Order("position ASC").Find(&quote.Lines).Error; err != nil {
		return nil, fmt.Errorf("load quote lines: %w", err)
	}
	return &quote, nil
}

func saveHeader(tx *gorm.DB, quote *models.Quote, loadedVersion int) error {
	now := time.Now().UTC()
	res := tx.Model(&models.Quote{}).
		Where("id = ? AND version = ?", quote.ID, loadedVersion).
		Updates(map[string]any{
			"status":              quote.Status,
			"valid_until":         quote.ValidUntil,
			"message":             quote.Message,
			"modification_reason": quote.ModificationReason,
			"total_exclusive":     quote.TotalExclusive,
			"total_tax":           quote.TotalTax,
			"total_inclusive":     quote.TotalInclusive,
			"sent_at":             quote.SentAt,
			"responded_at":        quote.RespondedAt,
			"version":             loadedVersion + 1,
			"updated_at":          now,
		})
	if res.Error != nil {
		return fmt.Errorf("update quote: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleQuote
	}
	quote.Version = loadedVersion + 1
	quote.UpdatedAt = now
	return nil
}

func syncLines(tx *gorm.DB, quote *models.Quote, before map[uuid.UUID]struct{}) error {
	after := lineIDs(quote.Lines)

	removed := make([]uuid.UUID, 0)
	for id := range before {
		if _, ok := after[id]; !ok {
			removed = append(removed, id)
		}
	}
	if len(removed) > 0 {
		if err := tx.Where("quote_id = ? AND id IN ?", quote.ID, removed).Delete(&models.QuoteLine{}).Error; err != nil {
			return fmt.Errorf("delete quote lines: %w", err)
		}
	}

	for i := range quote.Lines {
		if _, ok := before[quote.Lines[i].ID]; ok {
			continue
		}
		quote.Lines[i].QuoteID = quote.ID
		if err := tx.Create(&quote.Lines[i]).Error; err != nil {
			return fmt.Errorf("insert quote line: %w", err)
		}
	}
	return nil
}

func lineIDs(lines []models.QuoteLine) map[uuid.UUID]struct{} {
	ids := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		ids[line.ID] = struct{}{}
	}
	return ids
}
