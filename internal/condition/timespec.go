package condition

import (
	"time"

	"github.com/whenever-go/whenever/internal/model"
)

// timeSpecMatches reports whether t satisfies spec under §4.4's partial
// time specification rules: an omitted year/month/day/weekday/hour is a
// wildcard (any value matches); an omitted minute defaults to 0 (first
// minute of the hour); an omitted second defaults to 0 (first second of
// the minute).
func timeSpecMatches(spec model.TimeSpec, t time.Time) bool {
	if spec.Year != nil && *spec.Year != t.Year() {
		return false
	}
	if spec.Month != nil && *spec.Month != int(t.Month()) {
		return false
	}
	if spec.Day != nil && *spec.Day != t.Day() {
		return false
	}
	if spec.Weekday != nil && *spec.Weekday != t.Weekday() {
		return false
	}
	if spec.Hour != nil && *spec.Hour != t.Hour() {
		return false
	}
	wantMinute := 0
	if spec.Minute != nil {
		wantMinute = *spec.Minute
	}
	if wantMinute != t.Minute() {
		return false
	}
	wantSecond := 0
	if spec.Second != nil {
		wantSecond = *spec.Second
	}
	return wantSecond == t.Second()
}

// maxTimeScanSeconds bounds how far timeSpecFiredSince will walk
// forward looking for a matching instant, so a condition left unchecked
// for a very long time (process paused for days) doesn't stall a tick
// worker. A year-granular spec with a long gap may miss a match beyond
// this horizon; in practice ticks are seconds apart so this bound is
// never approached during normal operation.
const maxTimeScanSeconds = 2 * 24 * 3600

// timeSpecsFiredSince reports whether any configured spec has a
// matching instant in (since, now].
func timeSpecsFiredSince(specs []model.TimeSpec, since, now time.Time) bool {
	if !now.After(since) {
		return false
	}
	start := since.Add(time.Second).Truncate(time.Second)
	end := now.Truncate(time.Second)
	if end.Sub(start) > maxTimeScanSeconds*time.Second {
		start = end.Add(-maxTimeScanSeconds * time.Second)
	}
	for ts := start; !ts.After(end); ts = ts.Add(time.Second) {
		for _, spec := range specs {
			if timeSpecMatches(spec, ts) {
				return true
			}
		}
	}
	return false
}
