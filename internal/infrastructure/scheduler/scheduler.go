// Package scheduler runs deferred side effects on timers.
package scheduler

import (
	"sync"
	"time"

	"github.com/rentora/access-layer/internal/core/ports"
)

// TimerScheduler fires each task once on its own timer. Wait blocks until
// every task that was not stopped has run, so short-lived processes can flush
// pending redirects before exiting.
type TimerScheduler struct {
	wg sync.WaitGroup
}

var _ ports.Scheduler = (*TimerScheduler)(nil)

func New() *TimerScheduler {
	return &TimerScheduler{}
}

type timerTask struct {
	timer *time.Timer
	wg    *sync.WaitGroup
	once  sync.Once
}

// Stop cancels the task. It reports false if the task already ran or was
// already stopped.
func (t *timerTask) Stop() bool {
	if !t.timer.Stop() {
		return false
	}
	t.once.Do(t.wg.Done)
	return true
}

func (s *TimerScheduler) AfterFunc(d time.Duration, f func()) ports.Task {
	task := &timerTask{wg: &s.wg}
	s.wg.Add(1)
	task.timer = time.AfterFunc(d, func() {
		defer task.once.Do(s.wg.Done)
		f()
	})
	return task
}

// Wait blocks until all pending tasks have fired or been stopped.
func (s *TimerScheduler) Wait() {
	s.wg.Wait()
}
