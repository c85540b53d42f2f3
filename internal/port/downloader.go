package port

import (
	"context"

	"github.com/vertextoedge/torrent-space-guard/internal/domain"
)

// DownloaderClient is the command-and-snapshot surface of one download
// client instance. Every call must be bounded by the passed context; the
// scheduler never retries inline and re-reads the snapshot as ground truth
// on the next cycle rather than trusting its own prior commands.
type DownloaderClient interface {
	// Name returns the configured downloader identity.
	Name() string

	// Snapshot returns the full item list with canonical activity states.
	// Failures should be wrapped as domain.TransientError.
	Snapshot(ctx context.Context) ([]domain.Item, error)

	// Pause stops the item identified by hash.
	// A refusal should be wrapped as domain.CommandRejectedError.
	Pause(ctx context.Context, hash string) error

	// Resume starts the item identified by hash.
	// A refusal should be wrapped as domain.CommandRejectedError.
	Resume(ctx context.Context, hash string) error
}
