// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yahayabawa/maktaba/internal/circulation"
)

// OverdueSweeper periodically marks loans past their due date as overdue.
type OverdueSweeper struct {
	circulation *circulation.Service
	schedule    string

	mu         sync.RWMutex
	cron       *cron.Cron
	entryID    cron.EntryID
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewOverdueSweeper creates a sweeper that runs on the given cron schedule.
func NewOverdueSweeper(svc *circulation.Service, schedule string) *OverdueSweeper {
	return &OverdueSweeper{
		circulation: svc,
		schedule:    schedule,
		cron:        cron.New(),
	}
}

// Start begins the periodic sweep. It runs one sweep immediately so that
// loans which became overdue while the server was down are caught on boot.
func (s *OverdueSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule overdue sweep: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Overdue sweeper: started with schedule '%s'", s.schedule)

	go s.runSweep()

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for any running sweep to finish and halts the scheduler.
func (s *OverdueSweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Overdue sweeper: stopped")
}

// RunNow triggers an immediate sweep outside the schedule.
func (s *OverdueSweeper) RunNow() {
	go s.runSweep()
}

// IsRunning returns whether the scheduler is active.
func (s *OverdueSweeper) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *OverdueSweeper) runSweep() {
	count, err := s.circulation.SweepOverdue(time.Now())
	if err != nil {
		log.Printf("Overdue sweeper: sweep failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("Overdue sweeper: marked %d loan(s) overdue", count)
	}
}
