package scheduler

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/vertextoedge/torrent-space-guard/internal/domain"
	"github.com/vertextoedge/torrent-space-guard/internal/domain/event"
)

// ReleaseOrder values.
const (
	ReleaseByAge  = "age"
	ReleaseBySize = "size"
)

// releaseHeld resumes ledger-tracked items in an OK directory, one at a
// time, while the directory headroom, the downloader's active-item cap and
// its capacity budget all allow it. Only items this system paused are ever
// resumed; each resume removes the ledger entry.
func (s *Service) releaseHeld(ctx context.Context, d *managedDownloader, ds *dirState, ledgered map[string]domain.PauseRecord, counters *downloaderCounters) {
	cands := make([]domain.Item, 0, len(ds.b.Queued))
	for _, item := range ds.b.Queued {
		if _, held := ledgered[item.Hash]; held {
			cands = append(cands, item)
		}
	}
	if len(cands) == 0 {
		return
	}

	switch d.releaseOrder {
	case ReleaseBySize:
		sort.SliceStable(cands, func(i, j int) bool {
			return cands[i].SizeRemaining < cands[j].SizeRemaining
		})
	default:
		// Oldest managed pause first, for fairness.
		sort.SliceStable(cands, func(i, j int) bool {
			return ledgered[cands[i].Hash].PausedAt.Before(ledgered[cands[j].Hash].PausedAt)
		})
	}

	headroom := ds.status.Headroom()
	for _, cand := range cands {
		// Completed-but-held items add no future growth; let them go
		// without headroom or cap accounting.
		if cand.Completed() {
			if s.resumeCandidate(ctx, d, ds, cand) {
				s.logger.Info("resumed completed item",
					zap.String("downloader", d.name()),
					zap.String("hash", cand.Hash),
					zap.String("name", cand.Name))
			}
			continue
		}

		// A saturated cap blocks every further resume this cycle; the
		// ledger entries stay until a slot frees.
		if d.maxActive > 0 && counters.active >= d.maxActive {
			s.logger.Debug("active cap saturated, deferring",
				zap.String("downloader", d.name()),
				zap.String("directory", ds.dir.Path),
				zap.Int("max_active", d.maxActive))
			break
		}

		// Re-check before each resume that the item would not drive
		// projected free space straight back under the watermark.
		if cand.SizeRemaining > headroom {
			if d.smartSkip {
				continue
			}
			break
		}

		if d.maxActiveBytes > 0 && counters.activeRemaining+cand.SizeRemaining > d.maxActiveBytes {
			if d.smartSkip {
				continue
			}
			break
		}

		if !s.resumeCandidate(ctx, d, ds, cand) {
			continue
		}

		headroom -= cand.SizeRemaining
		counters.active++
		counters.activeRemaining += cand.SizeRemaining
		s.logger.Info("resumed",
			zap.String("downloader", d.name()),
			zap.String("directory", ds.dir.Path),
			zap.String("hash", cand.Hash),
			zap.String("name", cand.Name),
			zap.Int64("size_remaining", cand.SizeRemaining),
			zap.Int64("headroom_left", headroom))
	}

	if len(ds.resumed) > 0 {
		s.events.Dispatch(event.NewItemsResumed(d.name(), ds.dir.Path, ds.resumed, ds.status.Headroom()))
	}
}

// resumeCandidate issues one resume command and keeps the ledger in step.
// A rejected command drops the item from this cycle; the ledger entry stays
// so the next cycle reconsiders it against fresh state.
func (s *Service) resumeCandidate(ctx context.Context, d *managedDownloader, ds *dirState, cand domain.Item) bool {
	cctx, cancel := context.WithTimeout(ctx, s.cfg.CommandTimeout)
	err := d.client.Resume(cctx, cand.Hash)
	cancel()
	if err != nil {
		s.logger.Warn("resume rejected",
			zap.String("downloader", d.name()),
			zap.String("hash", cand.Hash),
			zap.Error(err))
		return false
	}

	if err := s.ledger.Delete(d.name(), cand.Hash); err != nil {
		s.logger.Error("failed to clear managed pause",
			zap.String("downloader", d.name()),
			zap.String("hash", cand.Hash),
			zap.Error(err))
	}

	ds.resumed = append(ds.resumed, cand.Hash)
	return true
}
