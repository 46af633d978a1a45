package ports

import "time"

// Task is a scheduled function that has not necessarily run yet.
type Task interface {
	// Stop cancels the task. It reports false if the task already ran or was
	// already stopped.
	Stop() bool
}

// Scheduler runs functions after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
}
