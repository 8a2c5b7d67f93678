package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ScheduledTask represents a recurring sync task for one source.
type ScheduledTask struct {
	// ID is the unique identifier for the task (the source ID).
	ID string

	// Name is a human-readable name for the task.
	Name string

	// Interval defines how often the task should run.
	Interval time.Duration

	// LastRun is when the task last ran.
	LastRun time.Time

	// NextRun is when the task should run next.
	NextRun time.Time

	// LastError contains the last error message, if any.
	LastError string

	// LastSuccess is when the task last completed successfully.
	LastSuccess time.Time

	// Enabled indicates whether the task is active.
	Enabled bool
}

// TaskResult represents the outcome of a task execution.
type TaskResult struct {
	// TaskID identifies which task was run.
	TaskID string

	// StartedAt is when the task started.
	StartedAt time.Time

	// EndedAt is when the task completed.
	EndedAt time.Time

	// Success indicates whether the task completed without error.
	Success bool

	// Error contains the error message if Success is false.
	Error string

	// ItemsProcessed is a count of parents handled by the run.
	ItemsProcessed int
}

var intervalRe = regexp.MustCompile(`^(\d+)(s|m|h|d)?$`)

// FormatInterval renders a duration in the compact form ParseInterval
// accepts, preferring the largest exact unit. Zero yields the empty
// string, which ParseInterval maps back to zero.
func FormatInterval(d time.Duration) string {
	if d == 0 {
		return ""
	}
	day := 24 * time.Hour
	switch {
	case d%day == 0:
		return fmt.Sprintf("%dd", d/day)
	case d%time.Hour == 0:
		return fmt.Sprintf("%dh", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%dm", d/time.Minute)
	default:
		return fmt.Sprintf("%ds", d/time.Second)
	}
}

// ParseInterval parses a compact interval such as "30s", "5m", "1h" or "2d".
// The unit defaults to minutes, matching the source configuration format.
// "manual" and the empty string yield zero (no scheduled runs).
func ParseInterval(s string) (time.Duration, error) {
	if s == "" || s == "manual" {
		return 0, nil
	}

	m := intervalRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: interval %q", ErrInvalidInput, s)
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: interval %q", ErrInvalidInput, s)
	}

	unit := time.Minute
	switch m[2] {
	case "s":
		unit = time.Second
	case "h":
		unit = time.Hour
	case "d":
		unit = 24 * time.Hour
	}

	return time.Duration(n) * unit, nil
}
