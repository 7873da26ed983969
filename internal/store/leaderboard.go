package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/ecomindsapp/ecominds-server/internal/domain"
)

const leaderboardPrefix = "lb:"

// leaderboardEntryKey buckets entries by window and period so a window
// read is one prefix scan and old periods age out untouched.
func leaderboardEntryKey(window domain.LeaderboardWindow, periodKey, userID string) []byte {
	return []byte(leaderboardPrefix + string(window) + ":" + periodKey + ":" + userID)
}

// AddScore upserts the delta into every window's current period in one
// transaction. The windows are independent buckets: a weekly rollover
// never touches the monthly or all-time totals.
func (s *Store) AddScore(ctx context.Context, user *domain.User, delta int, now time.Time, loc *time.Location) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if delta == 0 {
		return nil
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, window := range domain.AllWindows {
			periodKey := window.PeriodKey(now, loc)
			key := leaderboardEntryKey(window, periodKey, user.ID)

			entry := domain.LeaderboardEntry{
				UserID:      user.ID,
				DisplayName: user.Name(),
				Window:      window,
				PeriodKey:   periodKey,
				Grade:       user.Grade,
				College:     user.College,
			}
			if err := getInTxn(txn, key, &entry); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			entry.Score += delta
			if entry.Score < 0 {
				entry.Score = 0
			}
			entry.UpdatedAt = now

			if err := setInTxn(txn, key, &entry); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListWindow returns every entry in one window period, unranked.
func (s *Store) ListWindow(_ context.Context, window domain.LeaderboardWindow, periodKey string) ([]*domain.LeaderboardEntry, error) {
	prefix := []byte(leaderboardPrefix + string(window) + ":" + periodKey + ":")
	var entries []*domain.LeaderboardEntry

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var entry domain.LeaderboardEntry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				continue
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s leaderboard %s: %w", window, periodKey, err)
	}

	return entries, nil
}

// GetWindowEntry returns one user's entry in a window period, or
// ErrNotFound if they have not scored yet.
func (s *Store) GetWindowEntry(_ context.Context, window domain.LeaderboardWindow, periodKey, userID string) (*domain.LeaderboardEntry, error) {
	var entry domain.LeaderboardEntry
	if err := s.get(leaderboardEntryKey(window, periodKey, userID), &entry); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get leaderboard entry: %w", err)
	}
	return &entry, nil
}
