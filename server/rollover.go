package server

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/existflow/dayboard/internal/cache"
	"github.com/existflow/dayboard/internal/logger"
)

// rolloverSpec fires at local midnight
const rolloverSpec = "0 0 * * *"

// StartRollover schedules the midnight job that drops cached views, since
// today markers and countdown labels change with the date.
func (s *Server) StartRollover() error {
	if s.cron != nil {
		return nil
	}
	c := cron.New(cron.WithLocation(s.loc))
	if _, err := c.AddFunc(rolloverSpec, s.rollover); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	logger.Info("Rollover job scheduled", logger.F("location", s.loc.String()))
	return nil
}

// StopRollover stops the midnight job and waits for a running one
func (s *Server) StopRollover() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
}

func (s *Server) rollover() {
	s.cache.Bump(context.Background(), cache.ViewScope)
	logger.Info("Day rolled over", logger.F("today", s.today()))
}
