package chrono

import (
	"context"
	"fmt"
	"time"
	"willamette-dining/internal/components/assert"
	"willamette-dining/internal/components/telemetry"

	"github.com/robfig/cron/v3"
)

const (
	report_scheduler_run_task = "scheduler.run-task"
)

// Task is a unit of work registered on a Scheduler.
type Task func(ctx context.Context) error

type entry struct {
	name     string
	schedule cron.Schedule
	task     Task
	next     time.Time
}

// Scheduler runs tasks on cron schedules from a loop the caller drives.
//
// It never runs two tasks at the same time and never interrupts a running task. Firings
// missed while a task ran (or while the process was down) are skipped, not made up.
type Scheduler struct {
	time         TimeAPI
	tel          telemetry.API
	pollInterval time.Duration
	entries      []*entry
}

type SchedulerOption func(s *Scheduler)

// WithPollInterval sets how long Run idles between checks, the default is one second.
func WithPollInterval(interval time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.pollInterval = interval
	}
}

// NewScheduler is the constructor of Scheduler.
func NewScheduler(timeAPI TimeAPI, tel telemetry.API, options ...SchedulerOption) *Scheduler {
	assert.NotNil(timeAPI, "timeAPI")
	assert.NotNil(tel, "tel")

	s := &Scheduler{
		time:         timeAPI,
		tel:          telemetry.NewScopedAPI("chrono", tel),
		pollInterval: time.Second,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.pollInterval <= 0 {
		panic("poll interval must be positive")
	}
	return s
}

func (s *Scheduler) now() time.Time {
	return s.time.Now().In(s.time.Location())
}

// Add registers a task under a standard 5 field cron spec (ex. "1 14 * * *" for
// every day at 14:01), interpreted in the location of the TimeAPI.
func (s *Scheduler) Add(name, spec string, task Task) error {
	assert.NotNil(task, "task")

	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	e := &entry{
		name:     name,
		schedule: schedule,
		task:     task,
	}
	e.next = schedule.Next(s.now())
	s.entries = append(s.entries, e)

	s.tel.ReportDebug("scheduled task", name, e.next)
	return nil
}

// Next returns the earliest upcoming firing, false if there are no tasks.
func (s *Scheduler) Next() (time.Time, bool) {
	var earliest time.Time
	for _, e := range s.entries {
		if earliest.IsZero() || e.next.Before(earliest) {
			earliest = e.next
		}
	}
	return earliest, !earliest.IsZero()
}

// RunPending synchronously runs every task that is due and returns how many ran.
// A failing task is reported and does not stop the other tasks or future firings.
func (s *Scheduler) RunPending(ctx context.Context) int {
	ran := 0
	for _, e := range s.entries {
		if e.next.After(s.now()) {
			continue
		}

		s.tel.ReportDebug("running task", e.name)
		err := e.task(ctx)
		if err != nil {
			s.tel.ReportBroken(report_scheduler_run_task, err, e.name)
		}
		ran++

		e.next = e.schedule.Next(s.now())
		s.tel.ReportDebug("scheduled task", e.name, e.next)
	}
	return ran
}

// Run polls for due tasks until ctx is done, it always returns a non-nil error.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.RunPending(ctx)
		err := s.time.Sleep(ctx, s.pollInterval)
		if err != nil {
			return err
		}
	}
}
