package scheduler

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/vertextoedge/torrent-space-guard/internal/domain"
	"github.com/vertextoedge/torrent-space-guard/internal/domain/event"
)

// stallCyclesBeforeBreak is how many consecutive stalled cycles a directory
// tolerates before the guard intervenes on the next one.
const stallCyclesBeforeBreak = 2

// checkDeadlock runs after overflow and release for one directory. A
// directory is stalled when it ends the cycle with no active work while
// ledger-tracked queued candidates exist. Once the stall persists past
// stallCyclesBeforeBreak consecutive cycles, exactly one ledgered item is
// force-resumed even while status is LOW: a bounded single-item overflow
// risk traded for guaranteed liveness. The active-item cap is never
// relaxed; resuming despite LOW status is the only exception this guard
// is allowed.
func (s *Service) checkDeadlock(ctx context.Context, d *managedDownloader, ds *dirState, ledgered map[string]domain.PauseRecord, counters *downloaderCounters) {
	resumedSet := make(map[string]bool, len(ds.resumed))
	for _, h := range ds.resumed {
		resumedSet[h] = true
	}

	activeAfter := len(ds.b.Active) - len(ds.paused) + len(ds.resumed)

	var cands []domain.Item
	for _, item := range ds.b.Queued {
		if resumedSet[item.Hash] {
			continue
		}
		if _, held := ledgered[item.Hash]; held {
			cands = append(cands, item)
		}
	}

	if activeAfter > 0 || len(cands) == 0 {
		delete(d.stalls, ds.dir.Path)
		return
	}

	// Empty with a saturated cap is deferral, not deadlock: other
	// directories still have active work, so a slot frees without
	// intervention.
	if d.maxActive > 0 && counters.active >= d.maxActive {
		delete(d.stalls, ds.dir.Path)
		return
	}

	stalled := d.stalls[ds.dir.Path]
	if stalled < stallCyclesBeforeBreak {
		d.stalls[ds.dir.Path] = stalled + 1
		s.logger.Debug("directory stalled",
			zap.String("downloader", d.name()),
			zap.String("directory", ds.dir.Path),
			zap.Int("consecutive_cycles", stalled+1))
		return
	}

	// Smallest remaining first minimizes the overshoot risk of resuming
	// into a LOW directory.
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].SizeRemaining < cands[j].SizeRemaining
	})

	for _, cand := range cands {
		cctx, cancel := context.WithTimeout(ctx, s.cfg.CommandTimeout)
		err := d.client.Resume(cctx, cand.Hash)
		cancel()
		if err != nil {
			s.logger.Warn("deadlock-break resume rejected",
				zap.String("downloader", d.name()),
				zap.String("hash", cand.Hash),
				zap.Error(err))
			continue
		}

		if err := s.ledger.Delete(d.name(), cand.Hash); err != nil {
			s.logger.Error("failed to clear managed pause",
				zap.String("downloader", d.name()),
				zap.String("hash", cand.Hash),
				zap.Error(err))
		}

		ds.deadlockBroken = append(ds.deadlockBroken, cand.Hash)
		delete(d.stalls, ds.dir.Path)
		counters.active++
		counters.activeRemaining += cand.SizeRemaining

		s.logger.Warn("deadlock broken: force-resumed one item despite low space",
			zap.String("downloader", d.name()),
			zap.String("directory", ds.dir.Path),
			zap.String("hash", cand.Hash),
			zap.String("name", cand.Name),
			zap.Int64("size_remaining", cand.SizeRemaining),
			zap.Int("stalled_cycles", stalled))
		s.events.Dispatch(event.NewDeadlockBroken(
			d.name(), ds.dir.Path, cand.Hash, cand.SizeRemaining, stalled))
		return
	}

	// Every candidate refused the command; keep the stall counter so the
	// next cycle tries again immediately.
}
