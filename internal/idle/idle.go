// Package idle reports how long the user session has been without
// keyboard/mouse input, backing the Idle condition variant (§4.4).
// Grounded on original_source's idle_cond.rs (which calls the
// user_idle crate's UserIdle::get_time()); Go has no single
// cross-platform equivalent, so this package approximates it with
// gopsutil/v3/host.
package idle

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/host"
)

// Source reports elapsed idle time. Production code uses
// GopsutilSource; tests substitute a fixed-value fake.
type Source interface {
	IdleTime() (time.Duration, error)
}

// GopsutilSource approximates idle time as the time elapsed since host
// boot (gopsutil's host.BootTime). It does not read keyboard or mouse
// activity or the session-lock time, so the value keeps growing while
// the user is active; no platform-specific idle source is provided.
type GopsutilSource struct{}

func (GopsutilSource) IdleTime() (time.Duration, error) {
	boot, err := host.BootTime()
	if err != nil {
		return 0, fmt.Errorf("idle: reading boot time: %w", err)
	}
	uptime := time.Since(time.Unix(int64(boot), 0))
	if uptime < 0 {
		return 0, fmt.Errorf("idle: negative uptime")
	}
	return uptime, nil
}

// FixedSource is a test double returning a constant idle duration.
type FixedSource time.Duration

func (f FixedSource) IdleTime() (time.Duration, error) { return time.Duration(f), nil }
