package qbittorrent

import (
	qbt "github.com/autobrr/go-qbittorrent"

	"github.com/vertextoedge/torrent-space-guard/internal/domain"
)

// mapState folds qBittorrent's torrent states into the canonical activity
// taxonomy. Download-side states only; seeding, errored and moving torrents
// are ignored since they add no future download growth to manage.
func mapState(state qbt.TorrentState) domain.ActivityState {
	switch state {
	case qbt.TorrentStateDownloading,
		qbt.TorrentStateStalledDl,
		qbt.TorrentStateMetaDl,
		qbt.TorrentStateCheckingDl,
		qbt.TorrentStateForcedDl,
		qbt.TorrentStateAllocating:
		return domain.StateActive
	case qbt.TorrentStatePausedDl,
		qbt.TorrentStateStoppedDl,
		qbt.TorrentStateQueuedDl:
		return domain.StateQueued
	default:
		return domain.StateIgnored
	}
}
