package store

import (
	"time"

	"github.com/jmoiron/sqlx"

	"modvault/internal/models"
)

// GetOrCreateDownloadEventTx inserts the dedup record for (version, ip)
// or returns the existing one. The unique constraint resolves concurrent
// creations: the loser observes created=false and falls through to the
// windowed-validity path.
func (s *Store) GetOrCreateDownloadEventTx(tx *sqlx.Tx, versionID int64, sourceIP string, now time.Time) (*models.DownloadEvent, bool, error) {
	res, err := tx.Exec(`
		INSERT INTO download_events (version_id, source_ip, total_downloads, last_download)
		VALUES (?, ?, 1, ?)
		ON CONFLICT (version_id, source_ip) DO NOTHING`,
		versionID, sourceIP, now)
	if err != nil {
		return nil, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	var ev models.DownloadEvent
	err = tx.Get(&ev, `SELECT id, version_id, source_ip, total_downloads, last_download FROM download_events WHERE version_id = ? AND source_ip = ?`, versionID, sourceIP)
	if err != nil {
		return nil, false, notFound(err)
	}
	return &ev, n > 0, nil
}

// RecordRepeatDownloadTx bumps the event's attempt counter and, when the
// download is counted, refreshes last_download.
func (s *Store) RecordRepeatDownloadTx(tx *sqlx.Tx, eventID int64, counted bool, now time.Time) error {
	if counted {
		_, err := tx.Exec(`UPDATE download_events SET total_downloads = total_downloads + 1, last_download = ? WHERE id = ?`, now, eventID)
		return err
	}
	_, err := tx.Exec(`UPDATE download_events SET total_downloads = total_downloads + 1 WHERE id = ?`, eventID)
	return err
}
