package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a function periodically. The cache core never owns a
// timer itself; callers inject a Scheduler so cleanup scheduling carries
// no dependency on any particular runtime or framework lifecycle.
type Scheduler interface {
	// Schedule runs fn every interval until the returned stop function
	// is called.
	Schedule(interval time.Duration, fn func()) (stop func())
}

// TickerScheduler is a time.Ticker-backed Scheduler.
type TickerScheduler struct{}

// Schedule implements Scheduler.
func (TickerScheduler) Schedule(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}
}

// CronScheduler adapts robfig/cron to the Scheduler interface, for
// hosts that already run a cron instance for their periodic jobs.
type CronScheduler struct {
	cron *cron.Cron
}

// NewCronScheduler creates a started cron-backed scheduler.
func NewCronScheduler() *CronScheduler {
	c := cron.New()
	c.Start()
	return &CronScheduler{cron: c}
}

// Schedule implements Scheduler. Intervals are rounded up to one second,
// the finest granularity cron's @every supports.
func (s *CronScheduler) Schedule(interval time.Duration, fn func()) func() {
	if interval < time.Second {
		interval = time.Second
	}
	id, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), fn)
	if err != nil {
		// @every with a positive duration cannot fail to parse; degrade
		// to a no-op stop rather than panicking the host.
		return func() {}
	}
	return func() { s.cron.Remove(id) }
}

// Close stops the underlying cron and waits for running jobs.
func (s *CronScheduler) Close() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
