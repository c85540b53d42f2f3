package port

import (
	"github.com/vertextoedge/torrent-space-guard/internal/domain"
)

// PauseLedger is the durable record of pauses issued by this system, keyed
// by (downloader, item hash). It is the only cross-step shared mutable
// state; within one downloader's cycle access is single-writer.
type PauseLedger interface {
	// Put records a managed pause. Re-recording an existing (downloader,
	// hash) pair keeps the original PausedAt.
	Put(rec domain.PauseRecord) error

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(downloader, hash string) error

	// List returns all records for a downloader, oldest pause first.
	List(downloader string) ([]domain.PauseRecord, error)
}
