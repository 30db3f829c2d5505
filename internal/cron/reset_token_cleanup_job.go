package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/talabarteria/rodriguez-backend/pkg/logger"
	"gorm.io/gorm"
)

// Used tokens are kept briefly so support can answer "did my reset work".
const usedTokenRetentionDays = 30

// ResetTokenCleanupJobParams configure the password-reset token purge.
type ResetTokenCleanupJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository resetTokenCleanupRepo
	Retention  int
}

type resetTokenCleanupRepo interface {
	DeleteStale(ctx context.Context, tx *gorm.DB, now, usedCutoff time.Time) (int64, error)
}

// NewResetTokenCleanupJob builds the job that removes expired reset tokens
// and used tokens past the retention window.
func NewResetTokenCleanupJob(params ResetTokenCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("reset token repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = usedTokenRetentionDays
	}
	return &resetTokenCleanupJob{
		logg:      params.Logger,
		db:        params.DB,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type resetTokenCleanupJob struct {
	logg      *logger.Logger
	db        txRunner
	repo      resetTokenCleanupRepo
	retention int
	now       func() time.Time
}

func (j *resetTokenCleanupJob) Name() string { return "reset-token-cleanup" }

func (j *resetTokenCleanupJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	usedCutoff := now.Add(-time.Duration(j.retention) * 24 * time.Hour)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.DeleteStale(ctx, tx, now, usedCutoff)
		if err != nil {
			return err
		}
		deleted = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("reset token cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"rows_deleted":   deleted,
		"retention_days": j.retention,
	})
	j.logg.Info(logCtx, "reset token cleanup complete")
	return nil
}
