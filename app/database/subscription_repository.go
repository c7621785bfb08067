package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// SubscriptionRepo handles database operations for feed subscriptions
type SubscriptionRepo struct {
	db *DB
}

var _ SubscriptionRepository = (*SubscriptionRepo)(nil)

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *DB) *SubscriptionRepo {
	return &SubscriptionRepo{db: db}
}

func (r *SubscriptionRepo) Add(url, destination string, renderAsImage bool) (*Subscription, bool, bool, error) {
	existing, err := r.GetByURL(url)
	if err != nil {
		return nil, false, false, fmt.Errorf("failed to check existing subscription: %w", err)
	}

	subCreated := false
	var subID string

	if existing != nil {
		subID = existing.ID
	} else {
		subID = uuid.NewString()
		_, err = r.db.Exec(`
			INSERT INTO subscriptions (id, url, render_as_image)
			VALUES (?, ?, ?)
		`, subID, url, renderAsImage)
		if err != nil {
			return nil, false, false, fmt.Errorf("failed to insert subscription: %w", err)
		}
		subCreated = true
	}

	res, err := r.db.Exec(`
		INSERT INTO subscription_destinations (subscription_id, destination)
		VALUES (?, ?)
		ON CONFLICT (subscription_id, destination) DO NOTHING
	`, subID, destination)
	if err != nil {
		return nil, false, false, fmt.Errorf("failed to register destination: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	sub, err := r.GetByID(subID)
	if err != nil {
		return nil, false, false, err
	}

	return sub, subCreated, affected > 0, nil
}

func (r *SubscriptionRepo) GetByID(id string) (*Subscription, error) {
	return r.getOne(`
		SELECT id, url, render_as_image, created_at, updated_at
		FROM subscriptions
		WHERE id = ?
	`, id)
}

func (r *SubscriptionRepo) GetByURL(url string) (*Subscription, error) {
	return r.getOne(`
		SELECT id, url, render_as_image, created_at, updated_at
		FROM subscriptions
		WHERE url = ?
	`, url)
}

func (r *SubscriptionRepo) getOne(query string, arg string) (*Subscription, error) {
	var sub Subscription
	err := r.db.QueryRow(query, arg).Scan(
		&sub.ID, &sub.URL, &sub.RenderAsImage, &sub.CreatedAt, &sub.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	sub.Destinations, err = r.getDestinations(sub.ID)
	if err != nil {
		return nil, err
	}

	return &sub, nil
}

// List returns all subscriptions ordered by creation time, including ones
// with an empty destination set.
func (r *SubscriptionRepo) List() ([]Subscription, error) {
	return r.list(`
		SELECT id, url, render_as_image, created_at, updated_at
		FROM subscriptions
		ORDER BY rowid
	`)
}

// ListForDestination returns subscriptions that include the given
// destination in their destination set.
func (r *SubscriptionRepo) ListForDestination(destination string) ([]Subscription, error) {
	return r.list(`
		SELECT s.id, s.url, s.render_as_image, s.created_at, s.updated_at
		FROM subscriptions s
		JOIN subscription_destinations sd ON sd.subscription_id = s.id
		WHERE sd.destination = ?
		ORDER BY s.rowid
	`, destination)
}

func (r *SubscriptionRepo) list(query string, args ...interface{}) ([]Subscription, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []Subscription
	for rows.Next() {
		var sub Subscription
		err := rows.Scan(&sub.ID, &sub.URL, &sub.RenderAsImage, &sub.CreatedAt, &sub.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription row: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscription rows: %w", err)
	}

	for i := range subs {
		subs[i].Destinations, err = r.getDestinations(subs[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return subs, nil
}

func (r *SubscriptionRepo) getDestinations(subscriptionID string) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT destination
		FROM subscription_destinations
		WHERE subscription_id = ?
		ORDER BY rowid
	`, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get destinations: %w", err)
	}
	defer rows.Close()

	var destinations []string
	for rows.Next() {
		var destination string
		if err := rows.Scan(&destination); err != nil {
			return nil, fmt.Errorf("failed to scan destination row: %w", err)
		}
		destinations = append(destinations, destination)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating destination rows: %w", err)
	}

	return destinations, nil
}

func (r *SubscriptionRepo) RemoveDestination(id, destination string) (bool, error) {
	res, err := r.db.Exec(`
		DELETE FROM subscription_destinations
		WHERE subscription_id = ? AND destination = ?
	`, id, destination)
	if err != nil {
		return false, fmt.Errorf("failed to remove destination: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *SubscriptionRepo) GetSubscriptionCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM subscriptions").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get subscription count: %w", err)
	}
	return count, nil
}
