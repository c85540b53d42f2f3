package domain

import "time"

// ActivityState is the canonical activity taxonomy for downloader items.
// The downloader adapter maps its raw state strings onto these three values;
// everything downstream works only with the canonical form.
type ActivityState int

const (
	// StateIgnored covers every state that is neither actively consuming
	// download I/O nor held in queue (seeding, errored, moving, ...).
	// Ignored items never take part in scheduling decisions.
	StateIgnored ActivityState = iota

	// StateActive covers items currently consuming download I/O:
	// downloading, stalled-but-trying, fetching metadata, checking,
	// forced, allocating.
	StateActive

	// StateQueued covers items held without active I/O, whether stopped by
	// the user, paused by this system, or queued by the downloader's own
	// scheduler.
	StateQueued
)

// String returns the state name for logs and reports.
func (s ActivityState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateQueued:
		return "queued"
	default:
		return "ignored"
	}
}

// Item is one entry of a downloader snapshot.
type Item struct {
	Hash          string
	Name          string
	SavePath      string
	SizeTotal     int64
	SizeRemaining int64
	State         ActivityState
	AddedAt       time.Time
}

// IsActive reports whether the item currently consumes download I/O.
func (i Item) IsActive() bool {
	return i.State == StateActive
}

// IsQueued reports whether the item is held without active I/O.
func (i Item) IsQueued() bool {
	return i.State == StateQueued
}

// Completed reports whether the item has no bytes left to download.
// Completed-but-queued items are resumed without headroom accounting since
// they add no future disk growth.
func (i Item) Completed() bool {
	return i.SizeRemaining == 0
}
