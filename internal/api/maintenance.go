package api

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const limiterIdle = 30 * time.Minute

// PurgeChat drops chat messages older than the retention window.
func (s *Server) PurgeChat(ctx context.Context) (int64, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	return s.store.PurgeChatBefore(ctx, s.now().Add(-s.retention))
}

// StartMaintenance schedules rate-limiter pruning and chat retention. Stop the returned
// scheduler on shutdown.
func (s *Server) StartMaintenance() *cron.Cron {
	c := cron.New()
	c.AddFunc("@every 10m", func() {
		if n := s.limiter.Cleanup(limiterIdle); n > 0 {
			s.logger.Debug("pruned rate limiters", zap.Int("removed", n))
		}
	})
	c.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := s.PurgeChat(ctx)
		if err != nil {
			s.logger.Error("chat retention purge failed", zap.Error(err))
			return
		}
		if n > 0 {
			s.logger.Info("purged chat messages", zap.Int64("removed", n))
		}
	})
	c.Start()
	return c
}
