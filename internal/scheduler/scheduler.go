// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the dashboard's background jobs: sweeping
// abandoned staged uploads and keeping the reference-data cache warm.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/orgdesk/orgdesk/internal/refdata"
	"github.com/orgdesk/orgdesk/internal/staging"
)

// Scheduler owns the cron runner.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	staging *staging.Store
	refdata *refdata.Service

	stagingMaxAge time.Duration
}

// Config wires the scheduler's dependencies.
type Config struct {
	Logger  *slog.Logger
	Staging *staging.Store
	Refdata *refdata.Service

	// StagingMaxAge is how long a staged upload may sit unsubmitted
	// before the sweep removes it.
	StagingMaxAge time.Duration
}

// New creates a scheduler instance.
func New(cfg Config) *Scheduler {
	maxAge := cfg.StagingMaxAge
	if maxAge == 0 {
		maxAge = 24 * time.Hour
	}
	return &Scheduler{
		cron:          cron.New(),
		logger:        cfg.Logger,
		staging:       cfg.Staging,
		refdata:       cfg.Refdata,
		stagingMaxAge: maxAge,
	}
}

// Start registers the jobs and begins the cron loop. The reference-data
// warm job also runs once immediately so the first organization form
// does not wait on the upstream fetch.
func (s *Scheduler) Start() error {
	if s.staging != nil {
		if _, err := s.cron.AddFunc("*/30 * * * *", s.sweepStaging); err != nil {
			return err
		}
	}
	if s.refdata != nil {
		if _, err := s.cron.AddFunc("0 * * * *", s.warmRefdata); err != nil {
			return err
		}
		go s.warmRefdata()
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) sweepStaging() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := s.staging.CleanupStale(ctx, s.stagingMaxAge)
	if err != nil {
		s.logger.Error("staged upload sweep failed", "error", err)
		return
	}
	if removed > 0 {
		s.logger.Info("swept stale staged uploads", "count", removed)
	}
}

func (s *Scheduler) warmRefdata() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.refdata.Warm(ctx); err != nil {
		s.logger.Error("reference data warm failed", "error", err)
	}
}
