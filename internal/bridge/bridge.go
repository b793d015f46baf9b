// Package bridge implements the event-to-condition debounce surface
// (§3, §4.5): listeners post event names; the bridge coalesces any
// number of postings for the same event within a tick into a single
// "fired" flag on the associated Bucket condition, consumed (and
// cleared) at most once per tick by the condition predicate.
package bridge

import "sync"

// Bridge maps event names to the Bucket condition they feed and tracks
// a debounced fired flag per condition.
type Bridge struct {
	mu          sync.Mutex
	eventToCond map[string]string
	fired       map[string]bool
}

func New() *Bridge {
	return &Bridge{
		eventToCond: make(map[string]string),
		fired:       make(map[string]bool),
	}
}

// Bind associates eventName with the Bucket condition it feeds.
func (b *Bridge) Bind(eventName, conditionName string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.eventToCond[eventName] = conditionName
}

// Unbind removes an event's association, e.g. when its listener stops.
func (b *Bridge) Unbind(eventName string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.eventToCond, eventName)
}

// Post records that eventName fired; any number of posts before the
// next Consume collapse into a single pending firing.
func (b *Bridge) Post(eventName string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cond, ok := b.eventToCond[eventName]
	if !ok {
		return
	}
	b.fired[cond] = true
}

// Consume reports and clears whether conditionName has a pending
// firing, used by the Bucket predicate (§4.4).
func (b *Bridge) Consume(conditionName string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fired[conditionName] {
		delete(b.fired, conditionName)
		return true
	}
	return false
}
