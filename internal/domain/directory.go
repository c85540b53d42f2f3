package domain

// MonitoredDirectory is a download directory guarded by a free-space
// watermark. Free bytes are re-queried every cycle; nothing here is cached.
type MonitoredDirectory struct {
	// Path is the absolute directory path items are matched against.
	Path string

	// LowWatermark is the free-space threshold in bytes. The directory is
	// space-constrained once free bytes fall under it.
	LowWatermark int64
}

// DirStatus is the per-cycle space verdict for a monitored directory.
type DirStatus string

const (
	// StatusOK means free space is at or above the watermark.
	StatusOK DirStatus = "OK"

	// StatusLow means free space is under the watermark and overflow
	// control is in effect.
	StatusLow DirStatus = "LOW"

	// StatusCritical means the directory is under the watermark and every
	// eligible pause victim is already exhausted. Not an error; consumed by
	// the deadlock guard and reporting.
	StatusCritical DirStatus = "CRITICAL"

	// StatusUnknown marks a directory whose space query or configuration
	// check failed this cycle. The directory is skipped, others continue.
	StatusUnknown DirStatus = "UNKNOWN"
)
