//go:build !windows
// +build !windows

package filesystem

import (
	"fmt"
	"os"
	"syscall"

	"github.com/vertextoedge/torrent-space-guard/internal/domain"
)

// FreeBytes returns free and total bytes of the volume holding path
func (q *Querier) FreeBytes(path string) (int64, int64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		if os.IsNotExist(err) {
			return 0, 0, domain.NewConfigurationError(path, domain.ErrDirectoryUnavailable)
		}
		return 0, 0, domain.NewTransientError("statfs "+path, fmt.Errorf("failed to get disk stats: %w", err))
	}

	total := int64(stat.Blocks) * int64(stat.Bsize)
	free := int64(stat.Bavail) * int64(stat.Bsize)

	return free, total, nil
}
