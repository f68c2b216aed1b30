// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the reminder cycle on an in-process cron schedule,
// for deployments without an external trigger hitting /api/run-reminders.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/examday-go/internal/reminder"
)

// Scheduler drives the reminder runner on a cron expression.
type Scheduler struct {
	runner *reminder.Runner
	cron   *cron.Cron
	spec   string
	logger *slog.Logger
}

// New creates a scheduler that fires the runner per the cron spec.
func New(runner *reminder.Runner, spec string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner: runner,
		cron:   cron.New(),
		spec:   spec,
		logger: logger,
	}
}

// Start registers the reminder job and starts the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if err := s.runOnce(); err != nil {
			s.logger.Error("scheduled reminder run failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "spec", s.spec, "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, draining the running job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runOnce() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	today := time.Now().UTC()
	sent, err := s.runner.RunCycle(ctx, today)
	if err != nil {
		return err
	}
	s.logger.Info("scheduled reminders sent", "sent", sent)

	return s.runner.RunBriefing(ctx, today)
}
