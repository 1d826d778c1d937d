package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/paddockshare/paddockshare-backend/pkg/logger"
)

type fakeCleanupRepo struct {
	cutoff  time.Time
	deleted int64
	err     error
}

func (f *fakeCleanupRepo) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return f.deleted, nil
}

func TestNotificationCleanupUsesRetentionWindow(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	repo := &fakeCleanupRepo{deleted: 12}
	job, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     logg,
		Repository: repo,
		Retention:  7,
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	fixed := time.Date(2026, 4, 8, 0, 0, 0, 0, time.UTC)
	job.(*notificationCleanupJob).now = func() time.Time { return fixed }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := fixed.Add(-7 * 24 * time.Hour)
	if !repo.cutoff.Equal(want) {
		t.Fatalf("expected cutoff %v, got %v", want, repo.cutoff)
	}
}

func TestNotificationCleanupDefaultsRetention(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	job, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     logg,
		Repository: &fakeCleanupRepo{},
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if job.(*notificationCleanupJob).retention != notificationRetentionDays {
		t.Fatalf("expected default retention %d", notificationRetentionDays)
	}
}

func TestNotificationCleanupPropagatesFailure(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	job, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     logg,
		Repository: &fakeCleanupRepo{err: errors.New("db down")},
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected failure to propagate")
	}
}
