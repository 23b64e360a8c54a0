package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/senjaya/lokapasar-backend/pkg/logger"
)

type notificationCleaner interface {
	Cleanup(ctx context.Context, retention time.Duration) (int64, error)
}

// NotificationCleanupJobParams configure the inbox retention job.
type NotificationCleanupJobParams struct {
	Logger        *logger.Logger
	Notifications notificationCleaner
	Retention     time.Duration
}

// NewNotificationCleanupJob builds the job that prunes read notifications
// past the retention window.
func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Notifications == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	if params.Retention <= 0 {
		return nil, fmt.Errorf("retention must be positive")
	}
	return &notificationCleanupJob{
		logg:          params.Logger,
		notifications: params.Notifications,
		retention:     params.Retention,
	}, nil
}

type notificationCleanupJob struct {
	logg          *logger.Logger
	notifications notificationCleaner
	retention     time.Duration
}

func (j *notificationCleanupJob) Name() string { return "notification-cleanup" }

func (j *notificationCleanupJob) Run(ctx context.Context) error {
	deleted, err := j.notifications.Cleanup(ctx, j.retention)
	if err != nil {
		return fmt.Errorf("cleanup notifications: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "deleted", deleted), "notification cleanup complete")
	return nil
}
