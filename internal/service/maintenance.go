package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"loanflow/internal/repository"
)

// MaintenanceService backs the cron jobs: stale awaiting-salary
// sessions expire into rejection, old agent logs get pruned.
type MaintenanceService struct {
	Repo           repository.Repository
	Logger         *zap.Logger
	SalaryWaitMax  time.Duration
	AgentLogMaxAge time.Duration
}

func (s *MaintenanceService) ExpireStaleSalarySessions(ctx context.Context) error {
	wait := s.SalaryWaitMax
	if wait <= 0 {
		wait = 72 * time.Hour
	}
	n, err := s.Repo.ExpireAwaitingSalarySessions(ctx, time.Now().UTC().Add(-wait))
	if err != nil {
		return err
	}
	if n > 0 && s.Logger != nil {
		s.Logger.Info("expired stale awaiting-salary sessions", zap.Int64("count", n))
	}
	return nil
}

func (s *MaintenanceService) PruneAgentLogs(ctx context.Context) error {
	maxAge := s.AgentLogMaxAge
	if maxAge <= 0 {
		maxAge = 30 * 24 * time.Hour
	}
	n, err := s.Repo.DeleteAgentLogsBefore(ctx, time.Now().UTC().Add(-maxAge))
	if err != nil {
		return err
	}
	if n > 0 && s.Logger != nil {
		s.Logger.Info("pruned agent logs", zap.Int64("count", n))
	}
	return nil
}
