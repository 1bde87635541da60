// Package heartbeat runs keepalive loops on a cron schedule. Each connected
// stream owns one Service; it only wakes on its own timer or when its context
// ends.
package heartbeat

import (
	"context"
	"errors"
	"fmt"
	"time"

	robfigcron "github.com/robfig/cron/v3"
)

// DefaultSchedule fires every 15 seconds.
const DefaultSchedule = "@every 15s"

// ErrNeverFires is returned for a schedule with no upcoming activation.
var ErrNeverFires = errors.New("schedule never fires")

// OnBeatFunc is called on every tick. Returning an error stops the loop.
type OnBeatFunc func(ctx context.Context) error

// Service runs OnBeatFunc on every activation of a schedule.
type Service struct {
	schedule robfigcron.Schedule
	onBeat   OnBeatFunc
}

// ParseSchedule parses a standard cron expression or descriptor such as
// "@every 15s". An empty spec yields DefaultSchedule.
func ParseSchedule(spec string) (robfigcron.Schedule, error) {
	if spec == "" {
		spec = DefaultSchedule
	}
	s, err := robfigcron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse keepalive schedule %q: %w", spec, err)
	}
	if s.Next(time.Now()).IsZero() {
		return nil, fmt.Errorf("keepalive schedule %q: %w", spec, ErrNeverFires)
	}
	return s, nil
}

// NewService creates a Service. schedule defaults to DefaultSchedule if nil.
func NewService(schedule robfigcron.Schedule, onBeat OnBeatFunc) *Service {
	if schedule == nil {
		schedule = robfigcron.Every(15 * time.Second)
	}
	return &Service{schedule: schedule, onBeat: onBeat}
}

// Start runs the loop until ctx is cancelled or onBeat fails. It returns
// ErrNeverFires when the schedule runs out of activations.
func (s *Service) Start(ctx context.Context) error {
	for {
		now := time.Now()
		next := s.schedule.Next(now)
		if next.IsZero() {
			return ErrNeverFires
		}
		timer := time.NewTimer(next.Sub(now))
		select {
		case <-timer.C:
			if err := s.onBeat(ctx); err != nil {
				return err
			}
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}
