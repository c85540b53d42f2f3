package domain

import "time"

// DirectoryReport is the per-directory slice of a cycle report.
type DirectoryReport struct {
	Path      string
	Status    DirStatus
	FreeBytes int64
	// Deficit is watermark minus free bytes when the directory is LOW.
	Deficit int64

	Paused  []string
	Resumed []string
	// DeadlockBroken lists hashes force-resumed by the deadlock guard.
	DeadlockBroken []string

	// Error carries the reason a directory was skipped this cycle.
	Error string
}

// CycleReport is the structured outcome of one scheduling cycle for one
// downloader.
type CycleReport struct {
	Downloader  string
	StartedAt   time.Time
	Duration    time.Duration
	Directories []DirectoryReport

	// Skipped is set when the whole cycle degraded to skip-and-report,
	// typically because the downloader snapshot could not be fetched.
	Skipped bool
	Error   string

	// PurgedStale lists ledger entries dropped because the item no longer
	// exists in the downloader.
	PurgedStale []string
	// PurgedUserResumed lists ledger entries dropped because the item was
	// found active again without a resume from us.
	PurgedUserResumed []string
}

// TotalPaused returns the number of pause commands issued this cycle.
func (r *CycleReport) TotalPaused() int {
	n := 0
	for _, d := range r.Directories {
		n += len(d.Paused)
	}
	return n
}

// TotalResumed returns the number of resume commands issued this cycle,
// deadlock interventions included.
func (r *CycleReport) TotalResumed() int {
	n := 0
	for _, d := range r.Directories {
		n += len(d.Resumed) + len(d.DeadlockBroken)
	}
	return n
}
