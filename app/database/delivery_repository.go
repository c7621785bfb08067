package database

import (
	"database/sql"
	"fmt"
	"time"
)

// DeliveryRepo is the durable dedup store for pushed entries. Records are
// append-only; each (feed_url, entry_link) pair is independent, so no
// cross-record locking is needed.
type DeliveryRepo struct {
	db *DB
}

var _ DeliveryRepository = (*DeliveryRepo)(nil)

// NewDeliveryRepository creates a new delivery repository
func NewDeliveryRepository(db *DB) *DeliveryRepo {
	return &DeliveryRepo{db: db}
}

// Has reports whether the entry has already been marked delivered for the feed.
func (r *DeliveryRepo) Has(feedURL, entryLink string) (bool, error) {
	var one int
	err := r.db.QueryRow(`
		SELECT 1 FROM deliveries
		WHERE feed_url = ? AND entry_link = ?
		LIMIT 1
	`, feedURL, entryLink).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check delivery: %w", err)
	}
	return true, nil
}

// MarkDelivered records the delivery. Marking an already-recorded pair is a
// no-op, never an error.
func (r *DeliveryRepo) MarkDelivered(feedURL, entryLink string) error {
	_, err := r.db.Exec(`
		INSERT INTO deliveries (feed_url, entry_link, delivered_at)
		VALUES (?, ?, ?)
		ON CONFLICT (feed_url, entry_link) DO NOTHING
	`, feedURL, entryLink, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to mark delivered: %w", err)
	}
	return nil
}

func (r *DeliveryRepo) GetDeliveryCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM deliveries").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get delivery count: %w", err)
	}
	return count, nil
}
