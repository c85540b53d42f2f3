package filesystem

import (
	"github.com/vertextoedge/torrent-space-guard/internal/port"
)

// Querier reports free space for monitored directories by statting the
// filesystem mount containing each path. It holds no state and caches
// nothing; every call hits the OS.
type Querier struct{}

// Ensure Querier implements port.SpaceQuerier
var _ port.SpaceQuerier = (*Querier)(nil)

// NewQuerier creates a new Querier
func NewQuerier() *Querier {
	return &Querier{}
}
