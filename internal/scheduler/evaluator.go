package scheduler

import (
	"github.com/vertextoedge/torrent-space-guard/internal/domain"
	"github.com/vertextoedge/torrent-space-guard/internal/port"
)

// spaceStatus is one directory's free-space verdict for the current cycle.
// Never carried across cycles; free space changes outside this system's
// control.
type spaceStatus struct {
	Free      int64
	Total     int64
	Watermark int64
}

// Low reports whether the directory is space-constrained.
func (s spaceStatus) Low() bool {
	return s.Free < s.Watermark
}

// Deficit is the margin to rebuild when LOW: watermark minus free bytes.
// Reclaiming only up to the watermark would oscillate, so the full margin
// is the pause target.
func (s spaceStatus) Deficit() int64 {
	return s.Watermark - s.Free
}

// Headroom is the budget above the watermark available for resumes.
func (s spaceStatus) Headroom() int64 {
	return s.Free - s.Watermark
}

// evaluateSpace queries current free space for a directory and validates
// its watermark against the volume capacity. A watermark at or above
// capacity can never be satisfied and marks the directory as misconfigured.
func evaluateSpace(q port.SpaceQuerier, dir domain.MonitoredDirectory) (spaceStatus, error) {
	free, total, err := q.FreeBytes(dir.Path)
	if err != nil {
		return spaceStatus{}, err
	}

	if total > 0 && dir.LowWatermark >= total {
		return spaceStatus{}, domain.NewConfigurationError(dir.Path, domain.ErrWatermarkExceedsCapacity)
	}

	return spaceStatus{
		Free:      free,
		Total:     total,
		Watermark: dir.LowWatermark,
	}, nil
}
