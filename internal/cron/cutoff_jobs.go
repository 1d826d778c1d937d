package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/paddockshare/paddockshare-backend/pkg/logger"
)

// expirySweeper closes open records whose cutoff has passed and reports how
// many were touched.
type expirySweeper interface {
	CloseExpired(ctx context.Context, asOf time.Time) (int, error)
}

// SweepJobParams configure a cutoff sweep job.
type SweepJobParams struct {
	Logger  *logger.Logger
	Sweeper expirySweeper
}

type sweepJob struct {
	name    string
	logg    *logger.Logger
	sweeper expirySweeper
	now     func() time.Time
}

func newSweepJob(name string, params SweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sweeper == nil {
		return nil, fmt.Errorf("sweeper required")
	}
	return &sweepJob{
		name:    name,
		logg:    params.Logger,
		sweeper: params.Sweeper,
		now:     time.Now,
	}, nil
}

// NewBallotCutoffJob closes open ballots whose entry cutoff has passed so the
// draw can run without racing late entries.
func NewBallotCutoffJob(params SweepJobParams) (Job, error) {
	return newSweepJob("ballot-cutoff", params)
}

// NewVoteCutoffJob closes open votes whose cutoff has passed.
func NewVoteCutoffJob(params SweepJobParams) (Job, error) {
	return newSweepJob("vote-cutoff", params)
}

// NewRenewalCycleCloseJob closes renewal cycles whose window has ended.
func NewRenewalCycleCloseJob(params SweepJobParams) (Job, error) {
	return newSweepJob("renewal-cycle-close", params)
}

func (j *sweepJob) Name() string { return j.name }

func (j *sweepJob) Run(ctx context.Context) error {
	asOf := j.now().UTC()
	closed, err := j.sweeper.CloseExpired(ctx, asOf)
	if err != nil {
		return fmt.Errorf("%s sweep: %w", j.name, err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"as_of":       asOf,
		"rows_closed": closed,
	})
	j.logg.Info(logCtx, "cutoff sweep complete")
	return nil
}
