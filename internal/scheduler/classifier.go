package scheduler

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/vertextoedge/torrent-space-guard/internal/domain"
)

// buckets holds one directory's partition of a downloader snapshot.
type buckets struct {
	Active []domain.Item
	Queued []domain.Item
}

// normalizePath cleans a path for prefix comparison: forward slashes, no
// trailing separator except for the root itself.
func normalizePath(p string) string {
	return path.Clean(filepath.ToSlash(p))
}

// underDirectory reports whether savePath equals dir or lies beneath it.
// Both arguments must already be normalized.
func underDirectory(savePath, dir string) bool {
	if savePath == dir {
		return true
	}
	if dir == "/" {
		return strings.HasPrefix(savePath, "/")
	}
	return strings.HasPrefix(savePath, dir+"/")
}

// matchDirectory returns the monitored directory whose path is the longest
// prefix match of savePath. Items matching no directory are excluded from
// all decisions.
func matchDirectory(savePath string, dirs []domain.MonitoredDirectory) (domain.MonitoredDirectory, bool) {
	sp := normalizePath(savePath)

	var best domain.MonitoredDirectory
	bestLen := -1
	for _, dir := range dirs {
		dp := normalizePath(dir.Path)
		if underDirectory(sp, dp) && len(dp) > bestLen {
			best = dir
			bestLen = len(dp)
		}
	}

	return best, bestLen >= 0
}

// classify partitions a downloader's items into per-directory active and
// queued sets. Ignored-state items and items outside every monitored
// directory are dropped here and never seen downstream.
func classify(items []domain.Item, dirs []domain.MonitoredDirectory) map[string]*buckets {
	out := make(map[string]*buckets, len(dirs))
	for _, dir := range dirs {
		out[dir.Path] = &buckets{}
	}

	for _, item := range items {
		if item.State == domain.StateIgnored {
			continue
		}
		dir, ok := matchDirectory(item.SavePath, dirs)
		if !ok {
			continue
		}
		b := out[dir.Path]
		if item.IsActive() {
			b.Active = append(b.Active, item)
		} else {
			b.Queued = append(b.Queued, item)
		}
	}

	return out
}
