package sqlite

import (
	"time"

	"github.com/vertextoedge/torrent-space-guard/internal/domain"
)

// Put records a managed pause. Re-recording an existing (downloader, hash)
// pair keeps the original paused_at so release ordering stays fair.
func (s *Store) Put(rec domain.PauseRecord) error {
	pausedAt := rec.PausedAt
	if pausedAt.IsZero() {
		pausedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO managed_pauses (downloader, hash, directory, paused_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (downloader, hash) DO UPDATE SET directory = excluded.directory
	`

	_, err := s.db.Exec(query, rec.Downloader, rec.Hash, rec.Directory, pausedAt)
	return err
}

// Delete removes a record. Deleting a missing record is not an error.
func (s *Store) Delete(downloader, hash string) error {
	_, err := s.db.Exec(
		`DELETE FROM managed_pauses WHERE downloader = ? AND hash = ?`,
		downloader, hash)
	return err
}

// List returns all records for a downloader, oldest pause first.
func (s *Store) List(downloader string) ([]domain.PauseRecord, error) {
	query := `
		SELECT downloader, hash, directory, paused_at
		FROM managed_pauses
		WHERE downloader = ?
		ORDER BY paused_at ASC, hash ASC
	`

	rows, err := s.db.Query(query, downloader)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.PauseRecord
	for rows.Next() {
		var rec domain.PauseRecord
		if err := rows.Scan(&rec.Downloader, &rec.Hash, &rec.Directory, &rec.PausedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
