package domain

import "time"

// PauseRecord marks an item paused by this system, as opposed to the user.
// It lives from the moment the overflow controller pauses the item until a
// resume is issued, or until the item is found active again (user
// intervention) or gone (purged as stale). The ledger of these records is
// durable so a process restart never misattributes a user pause as ours.
type PauseRecord struct {
	Downloader string
	Hash       string
	Directory  string
	PausedAt   time.Time
}
