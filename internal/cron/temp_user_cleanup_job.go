package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/talabarteria/rodriguez-backend/pkg/logger"
	"gorm.io/gorm"
)

// TempUserCleanupJobParams configure the unverified-registration purge.
type TempUserCleanupJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository tempUserCleanupRepo
}

type tempUserCleanupRepo interface {
	DeleteExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error)
}

// NewTempUserCleanupJob builds the job that removes registrations whose
// verification window lapsed without a confirmed code.
func NewTempUserCleanupJob(params TempUserCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("temp user repository required")
	}
	return &tempUserCleanupJob{
		logg: params.Logger,
		db:   params.DB,
		repo: params.Repository,
		now:  time.Now,
	}, nil
}

type tempUserCleanupJob struct {
	logg *logger.Logger
	db   txRunner
	repo tempUserCleanupRepo
	now  func() time.Time
}

func (j *tempUserCleanupJob) Name() string { return "temp-user-cleanup" }

func (j *tempUserCleanupJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.DeleteExpired(ctx, tx, now)
		if err != nil {
			return err
		}
		deleted = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("temp user cleanup: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "rows_deleted", deleted)
	j.logg.Info(logCtx, "temp user cleanup complete")
	return nil
}
