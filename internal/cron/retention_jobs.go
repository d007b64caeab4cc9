package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/eventdesk-backend/pkg/logger"
)

const (
	defaultOutboxRetentionDays = 30
	defaultDLQRetentionDays    = 90
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type publishedPruner interface {
	DeletePublishedBefore(tx *gorm.DB, cutoff time.Time) (int64, error)
}

type deadLetterPruner interface {
	DeleteFailedBefore(tx *gorm.DB, cutoff time.Time) (int64, error)
}

type RetentionJobParams struct {
	Logger        *logger.Logger
	DB            txRunner
	RetentionDays int
}

// retentionJob deletes rows older than a cutoff inside one transaction.
type retentionJob struct {
	name  string
	logg  *logger.Logger
	db    txRunner
	days  int
	prune func(tx *gorm.DB, cutoff time.Time) (int64, error)
	now   func() time.Time
}

// NewOutboxRetentionJob prunes outbox events already relayed to the broker.
// Unpublished and parked rows are never touched.
func NewOutboxRetentionJob(params RetentionJobParams, repo publishedPruner) (Job, error) {
	if repo == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	return newRetentionJob("outbox-retention", params, defaultOutboxRetentionDays, repo.DeletePublishedBefore)
}

// NewDLQRetentionJob prunes dead-lettered events past their audit window.
func NewDLQRetentionJob(params RetentionJobParams, repo deadLetterPruner) (Job, error) {
	if repo == nil {
		return nil, fmt.Errorf("dlq repository required")
	}
	return newRetentionJob("dlq-retention", params, defaultDLQRetentionDays, repo.DeleteFailedBefore)
}

func newRetentionJob(name string, params RetentionJobParams, fallbackDays int, prune func(*gorm.DB, time.Time) (int64, error)) (Job, error) {
	switch {
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	case params.DB == nil:
		return nil, fmt.Errorf("db runner required")
	}
	days := params.RetentionDays
	if days <= 0 {
		days = fallbackDays
	}
	return &retentionJob{
		name:  name,
		logg:  params.Logger,
		db:    params.DB,
		days:  days,
		prune: prune,
		now:   time.Now,
	}, nil
}

func (j *retentionJob) Name() string { return j.name }

func (j *retentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().AddDate(0, 0, -j.days)
	var removed int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := j.prune(tx, cutoff)
		removed = n
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", j.name, err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.days,
		"rows_deleted":   removed,
	}), "retention sweep complete")
	return nil
}
