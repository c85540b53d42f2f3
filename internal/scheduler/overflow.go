package scheduler

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/vertextoedge/torrent-space-guard/internal/domain"
	"github.com/vertextoedge/torrent-space-guard/internal/domain/event"
)

// pauseOverflow pauses active items in a LOW directory until the estimated
// avoided growth covers the deficit or the active set is exhausted. The
// estimate is each victim's remaining size: avoided future growth, not
// bytes freed, since already-written data stays on disk.
//
// Victims are ordered largest remaining first; ties pause the most recently
// added item first so older downloads are protected. Items already in the
// ledger are never re-paused, and nothing outside this directory is touched.
func (s *Service) pauseOverflow(ctx context.Context, d *managedDownloader, ds *dirState, ledgered map[string]domain.PauseRecord) {
	deficit := ds.status.Deficit()

	// Pauses from earlier cycles have not changed free bytes, only avoided
	// future growth. Count the growth already avoided by held items so the
	// same deficit is not re-covered with fresh victims every cycle.
	var estimated int64
	for _, item := range ds.b.Queued {
		if _, held := ledgered[item.Hash]; held {
			estimated += item.SizeRemaining
		}
	}

	victims := make([]domain.Item, 0, len(ds.b.Active))
	for _, item := range ds.b.Active {
		if _, held := ledgered[item.Hash]; held {
			continue
		}
		victims = append(victims, item)
	}

	sort.SliceStable(victims, func(i, j int) bool {
		if victims[i].SizeRemaining != victims[j].SizeRemaining {
			return victims[i].SizeRemaining > victims[j].SizeRemaining
		}
		return victims[i].AddedAt.After(victims[j].AddedAt)
	})

	for _, victim := range victims {
		if estimated >= deficit {
			break
		}

		cctx, cancel := context.WithTimeout(ctx, s.cfg.CommandTimeout)
		err := d.client.Pause(cctx, victim.Hash)
		cancel()
		if err != nil {
			// Rejected commands drop the item from this cycle only.
			s.logger.Warn("pause rejected",
				zap.String("downloader", d.name()),
				zap.String("hash", victim.Hash),
				zap.Error(err))
			continue
		}

		rec := domain.PauseRecord{
			Downloader: d.name(),
			Hash:       victim.Hash,
			Directory:  ds.dir.Path,
			PausedAt:   s.now(),
		}
		if err := s.ledger.Put(rec); err != nil {
			s.logger.Error("failed to record managed pause",
				zap.String("downloader", d.name()),
				zap.String("hash", victim.Hash),
				zap.Error(err))
		}

		ds.paused = append(ds.paused, victim.Hash)
		estimated += victim.SizeRemaining
		s.logger.Info("paused for low space",
			zap.String("downloader", d.name()),
			zap.String("directory", ds.dir.Path),
			zap.String("hash", victim.Hash),
			zap.String("name", victim.Name),
			zap.Int64("size_remaining", victim.SizeRemaining),
			zap.Int64("deficit", deficit))
	}

	// Exhausting the active set without covering the deficit is a status,
	// not an error; the deadlock guard and reporting consume it.
	ds.critical = estimated < deficit

	if len(ds.paused) > 0 {
		s.events.Dispatch(event.NewItemsPaused(
			d.name(), ds.dir.Path, ds.paused,
			ds.status.Free, deficit, estimated))
	}
	if ds.critical {
		s.events.Dispatch(event.NewDirectoryCritical(
			d.name(), ds.dir.Path,
			ds.status.Free, deficit, estimated, ds.paused))
	}
}
