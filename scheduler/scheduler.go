package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"estate_e2e/config"
	"estate_e2e/models"
	"estate_e2e/runner"

	"github.com/robfig/cron/v3"
)

const commandPoll = 2 * time.Second

// Suite is the part of the runner the daemon drives.
type Suite interface {
	RunIfActive(ctx context.Context, f runner.Filter) error
	HandleCommand(ctx context.Context, cmd *models.Command) error
}

// Queue is where control commands wait until the daemon picks them up.
type Queue interface {
	GetPendingCommands() ([]models.Command, error)
	MarkCommandProcessed(id int64) error
	LastRunTime(siteID string) (time.Time, error)
}

type Scheduler struct {
	cfg    *config.Config
	suite  Suite
	queue  Queue
	poll   time.Duration
	cron   *cron.Cron
	ticker *time.Ticker
	stopCh chan struct{}
}

func New(cfg *config.Config, suite Suite, queue Queue) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		suite:  suite,
		queue:  queue,
		poll:   commandPoll,
		cron:   cron.New(),
		stopCh: make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	go s.pollCommands(ctx)

	if s.cfg.Scheduler.Cron != "" {
		log.Printf("Starting scheduler with cron: %s", s.cfg.Scheduler.Cron)
		_, err := s.cron.AddFunc(s.cfg.Scheduler.Cron, func() { s.runScheduled(ctx) })
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
	} else if s.cfg.Scheduler.Interval > 0 {
		log.Printf("Starting scheduler with interval: %s", s.cfg.Scheduler.Interval)
		s.ticker = time.NewTicker(s.cfg.Scheduler.Interval)
		go func() {
			if s.Overdue(time.Now()) {
				log.Println("Last completed run is older than the interval, running now")
				s.runScheduled(ctx)
			}
			for {
				select {
				case <-s.ticker.C:
					s.runScheduled(ctx)
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	} else {
		log.Println("No schedule configured, daemon will only respond to commands")
	}

	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}

// Overdue reports whether an interval schedule has missed a run, for example
// because the daemon was down.
func (s *Scheduler) Overdue(now time.Time) bool {
	interval := s.cfg.Scheduler.Interval
	if interval <= 0 {
		return false
	}
	last, err := s.queue.LastRunTime(s.cfg.SiteID)
	if err != nil {
		log.Printf("Error getting last run time for %s: %v", s.cfg.SiteID, err)
		return false
	}
	return last.IsZero() || now.Sub(last) >= interval
}

func (s *Scheduler) runScheduled(ctx context.Context) {
	if err := s.suite.RunIfActive(ctx, runner.Filter{}); err != nil {
		log.Printf("Scheduled run error: %v", err)
	}
}

func (s *Scheduler) pollCommands(ctx context.Context) {
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.drain(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// drain handles every pending command in queue order. A command that fails is
// still marked processed so it is not retried forever.
func (s *Scheduler) drain(ctx context.Context) {
	cmds, err := s.queue.GetPendingCommands()
	if err != nil {
		log.Printf("Error getting commands: %v", err)
		return
	}

	for i := range cmds {
		cmd := &cmds[i]
		log.Printf("Processing command: %s", cmd.Command)
		if err := s.suite.HandleCommand(ctx, cmd); err != nil {
			log.Printf("Command error: %v", err)
		}
		if err := s.queue.MarkCommandProcessed(cmd.ID); err != nil {
			log.Printf("Error marking command processed: %v", err)
		}
	}
}

// TriggerNow runs the whole suite immediately, ignoring the schedule.
func (s *Scheduler) TriggerNow(ctx context.Context) error {
	return s.suite.RunIfActive(ctx, runner.Filter{})
}
