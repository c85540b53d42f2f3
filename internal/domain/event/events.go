package event

import (
	"time"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	// EventName returns the name of the event
	EventName() string
	// OccurredAt returns when the event occurred
	OccurredAt() time.Time
}

// BaseEvent provides common fields for all events
type BaseEvent struct {
	Timestamp time.Time
}

// OccurredAt returns when the event occurred
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// ItemAdded is raised when a new item is registered with a downloader.
// It triggers an immediate scheduling cycle so the item can be held before
// it starts consuming space.
type ItemAdded struct {
	BaseEvent
	Downloader string
	Hash       string
}

// EventName returns the event name
func (e ItemAdded) EventName() string {
	return "item.added"
}

// NewItemAdded creates a new ItemAdded event
func NewItemAdded(downloader, hash string) ItemAdded {
	return ItemAdded{
		BaseEvent:  BaseEvent{Timestamp: time.Now()},
		Downloader: downloader,
		Hash:       hash,
	}
}

// ItemsPaused is raised when overflow control pauses items in a directory.
// Hashes is never empty; a directory that needs pauses but has no victims
// left raises DirectoryCritical instead.
type ItemsPaused struct {
	BaseEvent
	Downloader     string
	Directory      string
	Hashes         []string
	FreeBytes      int64
	Deficit        int64
	EstimatedSaved int64
}

// EventName returns the event name
func (e ItemsPaused) EventName() string {
	return "items.paused"
}

// NewItemsPaused creates a new ItemsPaused event
func NewItemsPaused(downloader, directory string, hashes []string, freeBytes, deficit, estimatedSaved int64) ItemsPaused {
	return ItemsPaused{
		BaseEvent:      BaseEvent{Timestamp: time.Now()},
		Downloader:     downloader,
		Directory:      directory,
		Hashes:         hashes,
		FreeBytes:      freeBytes,
		Deficit:        deficit,
		EstimatedSaved: estimatedSaved,
	}
}

// DirectoryCritical is raised when a LOW directory has exhausted every
// eligible pause victim without covering its deficit. Raised at most once
// per cycle per directory; Hashes may be empty when nothing was left to
// pause this cycle.
type DirectoryCritical struct {
	BaseEvent
	Downloader     string
	Directory      string
	FreeBytes      int64
	Deficit        int64
	EstimatedSaved int64
	Hashes         []string
}

// EventName returns the event name
func (e DirectoryCritical) EventName() string {
	return "directory.critical"
}

// NewDirectoryCritical creates a new DirectoryCritical event
func NewDirectoryCritical(downloader, directory string, freeBytes, deficit, estimatedSaved int64, hashes []string) DirectoryCritical {
	return DirectoryCritical{
		BaseEvent:      BaseEvent{Timestamp: time.Now()},
		Downloader:     downloader,
		Directory:      directory,
		FreeBytes:      freeBytes,
		Deficit:        deficit,
		EstimatedSaved: estimatedSaved,
		Hashes:         hashes,
	}
}

// ItemsResumed is raised when release control resumes ledgered items in a
// directory that regained headroom.
type ItemsResumed struct {
	BaseEvent
	Downloader string
	Directory  string
	Hashes     []string
	Headroom   int64
}

// EventName returns the event name
func (e ItemsResumed) EventName() string {
	return "items.resumed"
}

// NewItemsResumed creates a new ItemsResumed event
func NewItemsResumed(downloader, directory string, hashes []string, headroom int64) ItemsResumed {
	return ItemsResumed{
		BaseEvent:  BaseEvent{Timestamp: time.Now()},
		Downloader: downloader,
		Directory:  directory,
		Hashes:     hashes,
		Headroom:   headroom,
	}
}

// DeadlockBroken is raised when the deadlock guard force-resumes an item in
// a stalled directory despite LOW status.
type DeadlockBroken struct {
	BaseEvent
	Downloader    string
	Directory     string
	Hash          string
	SizeRemaining int64
	StalledCycles int
}

// EventName returns the event name
func (e DeadlockBroken) EventName() string {
	return "deadlock.broken"
}

// NewDeadlockBroken creates a new DeadlockBroken event
func NewDeadlockBroken(downloader, directory, hash string, sizeRemaining int64, stalledCycles int) DeadlockBroken {
	return DeadlockBroken{
		BaseEvent:     BaseEvent{Timestamp: time.Now()},
		Downloader:    downloader,
		Directory:     directory,
		Hash:          hash,
		SizeRemaining: sizeRemaining,
		StalledCycles: stalledCycles,
	}
}

// CycleCompleted is raised after every scheduling cycle, successful or
// degraded to skip-and-report.
type CycleCompleted struct {
	BaseEvent
	Downloader string
	Paused     int
	Resumed    int
	Skipped    bool
	Duration   time.Duration
}

// EventName returns the event name
func (e CycleCompleted) EventName() string {
	return "cycle.completed"
}

// NewCycleCompleted creates a new CycleCompleted event
func NewCycleCompleted(downloader string, paused, resumed int, skipped bool, duration time.Duration) CycleCompleted {
	return CycleCompleted{
		BaseEvent:  BaseEvent{Timestamp: time.Now()},
		Downloader: downloader,
		Paused:     paused,
		Resumed:    resumed,
		Skipped:    skipped,
		Duration:   duration,
	}
}
