// Package scheduler wraps cron with explicit start/stop and per-job
// skip-if-running semantics, so two invocations of the same job never overlap.
package scheduler

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler owns the recurring jobs of the process
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a stopped scheduler. Specs use the standard 5-field cron
// format; a leading seconds field is accepted too.
func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		cron:   cron.New(cron.WithParser(parser)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers a recurring job under a cron expression. If the previous
// run of the same job is still in flight when the timer fires, the new
// invocation is skipped and logged.
func (s *Scheduler) AddJob(name string, cronSpec string, run func(ctx context.Context) error) error {
	var busy int32
	_, err := s.cron.AddFunc(cronSpec, func() {
		if !atomic.CompareAndSwapInt32(&busy, 0, 1) {
			log.Printf("[%s] previous run still active, skipping this invocation", name)
			return
		}
		defer atomic.StoreInt32(&busy, 0)

		start := time.Now()
		if err := run(s.ctx); err != nil {
			log.Printf("[%s] run failed after %s: %v", name, time.Since(start).Round(time.Millisecond), err)
			return
		}
		log.Printf("[%s] run finished in %s", name, time.Since(start).Round(time.Millisecond))
	})
	return err
}

// Start begins firing jobs on their schedules
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("[SCHEDULER] started")
}

// Stop cancels in-flight runs and waits for the cron loop to drain
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	log.Println("[SCHEDULER] stopped")
}
