package scheduler

import (
	"context"

	"go.uber.org/zap"

	"github.com/vertextoedge/torrent-space-guard/internal/domain"
	"github.com/vertextoedge/torrent-space-guard/internal/domain/event"
)

// dirState carries one directory's intermediate results through the phases
// of a single cycle.
type dirState struct {
	dir    domain.MonitoredDirectory
	status spaceStatus
	b      *buckets

	paused         []string
	resumed        []string
	deadlockBroken []string
	critical       bool
	skipErr        error
}

// downloaderCounters tracks the downloader-wide release bounds as commands
// are issued during a cycle.
type downloaderCounters struct {
	active          int
	activeRemaining int64
}

// runCycle executes one full scheduling cycle for one downloader:
// snapshot, ledger hygiene, classification, space evaluation, overflow
// control, release control, deadlock guard, report. The per-downloader
// mutex keeps ledger access single-writer; cycles for other downloaders
// run independently.
func (s *Service) runCycle(ctx context.Context, d *managedDownloader) *domain.CycleReport {
	d.mu.Lock()
	defer d.mu.Unlock()

	started := s.now()
	report := &domain.CycleReport{Downloader: d.name(), StartedAt: started}
	finish := func() *domain.CycleReport {
		report.Duration = s.now().Sub(started)
		s.events.Dispatch(event.NewCycleCompleted(
			d.name(), report.TotalPaused(), report.TotalResumed(), report.Skipped, report.Duration))
		return report
	}

	sctx, cancel := context.WithTimeout(ctx, s.cfg.CommandTimeout)
	items, err := d.client.Snapshot(sctx)
	cancel()
	if err != nil {
		report.Skipped = true
		report.Error = err.Error()
		s.logger.Warn("cycle skipped: snapshot unavailable",
			zap.String("downloader", d.name()),
			zap.Error(err))
		return finish()
	}

	records, err := s.ledger.List(d.name())
	if err != nil {
		report.Skipped = true
		report.Error = err.Error()
		s.logger.Warn("cycle skipped: ledger unavailable",
			zap.String("downloader", d.name()),
			zap.Error(err))
		return finish()
	}

	byHash := make(map[string]domain.Item, len(items))
	for _, item := range items {
		byHash[item.Hash] = item
	}

	// Ledger hygiene: actual item state is ground truth, never our own
	// prior commands. A missing item is an invariant violation; an active
	// one means the user resumed it behind our back.
	ledgered := make(map[string]domain.PauseRecord, len(records))
	for _, rec := range records {
		item, exists := byHash[rec.Hash]
		switch {
		case !exists:
			_ = s.ledger.Delete(d.name(), rec.Hash)
			report.PurgedStale = append(report.PurgedStale, rec.Hash)
			s.logger.Warn("ledger entry references a nonexistent item, purged",
				zap.String("downloader", d.name()),
				zap.String("hash", rec.Hash))
		case item.IsActive():
			_ = s.ledger.Delete(d.name(), rec.Hash)
			report.PurgedUserResumed = append(report.PurgedUserResumed, rec.Hash)
			s.logger.Debug("ledgered item active again, dropping record",
				zap.String("downloader", d.name()),
				zap.String("hash", rec.Hash))
		case item.IsQueued():
			ledgered[rec.Hash] = rec
		default:
			// Left the download phase entirely (completed, errored);
			// nothing for us to resume anymore.
			_ = s.ledger.Delete(d.name(), rec.Hash)
			report.PurgedStale = append(report.PurgedStale, rec.Hash)
			s.logger.Debug("ledgered item left download phase, dropping record",
				zap.String("downloader", d.name()),
				zap.String("hash", rec.Hash))
		}
	}

	perDir := classify(items, d.dirs)

	counters := &downloaderCounters{}
	for _, dir := range d.dirs {
		for _, item := range perDir[dir.Path].Active {
			counters.active++
			counters.activeRemaining += item.SizeRemaining
		}
	}

	states := make([]*dirState, 0, len(d.dirs))
	for _, dir := range d.dirs {
		ds := &dirState{dir: dir, b: perDir[dir.Path]}
		states = append(states, ds)

		status, err := evaluateSpace(s.space, dir)
		if err != nil {
			ds.skipErr = err
			s.logger.Warn("directory skipped this cycle",
				zap.String("downloader", d.name()),
				zap.String("directory", dir.Path),
				zap.Bool("misconfigured", domain.IsConfiguration(err)),
				zap.Error(err))
			continue
		}
		ds.status = status

		if status.Low() {
			s.pauseOverflow(ctx, d, ds, ledgered)
			// Paused victims no longer count against the release bounds.
			pausedSet := make(map[string]bool, len(ds.paused))
			for _, h := range ds.paused {
				pausedSet[h] = true
			}
			for _, item := range ds.b.Active {
				if pausedSet[item.Hash] {
					counters.active--
					counters.activeRemaining -= item.SizeRemaining
				}
			}
		} else if len(ledgered) > 0 {
			s.releaseHeld(ctx, d, ds, ledgered, counters)
		}
	}

	for _, ds := range states {
		if ds.skipErr != nil {
			continue
		}
		s.checkDeadlock(ctx, d, ds, ledgered, counters)
	}

	for _, ds := range states {
		dr := domain.DirectoryReport{
			Path:           ds.dir.Path,
			Paused:         ds.paused,
			Resumed:        ds.resumed,
			DeadlockBroken: ds.deadlockBroken,
		}
		switch {
		case ds.skipErr != nil:
			dr.Status = domain.StatusUnknown
			dr.Error = ds.skipErr.Error()
		case ds.critical:
			dr.Status = domain.StatusCritical
			dr.FreeBytes = ds.status.Free
			dr.Deficit = ds.status.Deficit()
		case ds.status.Low():
			dr.Status = domain.StatusLow
			dr.FreeBytes = ds.status.Free
			dr.Deficit = ds.status.Deficit()
		default:
			dr.Status = domain.StatusOK
			dr.FreeBytes = ds.status.Free
		}
		report.Directories = append(report.Directories, dr)
	}

	s.logger.Info("cycle completed",
		zap.String("downloader", d.name()),
		zap.Int("paused", report.TotalPaused()),
		zap.Int("resumed", report.TotalResumed()),
		zap.Int("purged_stale", len(report.PurgedStale)),
		zap.Int("purged_user_resumed", len(report.PurgedUserResumed)))
	return finish()
}
