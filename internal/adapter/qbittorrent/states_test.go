package qbittorrent

import (
	"testing"

	qbt "github.com/autobrr/go-qbittorrent"

	"github.com/vertextoedge/torrent-space-guard/internal/domain"
)

func TestMapState(t *testing.T) {
	tests := []struct {
		name  string
		state qbt.TorrentState
		want  domain.ActivityState
	}{
		{"downloading is active", qbt.TorrentStateDownloading, domain.StateActive},
		{"stalled download is active", qbt.TorrentStateStalledDl, domain.StateActive},
		{"metadata download is active", qbt.TorrentStateMetaDl, domain.StateActive},
		{"checking download is active", qbt.TorrentStateCheckingDl, domain.StateActive},
		{"forced download is active", qbt.TorrentStateForcedDl, domain.StateActive},
		{"allocating is active", qbt.TorrentStateAllocating, domain.StateActive},

		{"paused download is queued", qbt.TorrentStatePausedDl, domain.StateQueued},
		{"stopped download is queued", qbt.TorrentStateStoppedDl, domain.StateQueued},
		{"queued download is queued", qbt.TorrentStateQueuedDl, domain.StateQueued},

		{"seeding is ignored", qbt.TorrentStateUploading, domain.StateIgnored},
		{"stalled upload is ignored", qbt.TorrentStateStalledUp, domain.StateIgnored},
		{"paused upload is ignored", qbt.TorrentStatePausedUp, domain.StateIgnored},
		{"errored is ignored", qbt.TorrentStateError, domain.StateIgnored},
		{"moving is ignored", qbt.TorrentStateMoving, domain.StateIgnored},
		{"missing files is ignored", qbt.TorrentStateMissingFiles, domain.StateIgnored},
		{"unknown is ignored", qbt.TorrentStateUnknown, domain.StateIgnored},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapState(tt.state); got != tt.want {
				t.Errorf("mapState(%q) = %v, want %v", tt.state, got, tt.want)
			}
		})
	}
}
