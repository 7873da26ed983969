package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/ecomindsapp/ecominds-server/internal/domain"
)

const streakPrefix = "streak:"

// GetStreak retrieves the streak state for a user.
// A user with no recorded activity reads as a zeroed streak.
func (s *Store) GetStreak(_ context.Context, userID string) (*domain.Streak, error) {
	key := buildKey(streakPrefix, userID)
	defer releaseKey(key)

	streak := domain.Streak{UserID: userID}
	if err := s.get(key, &streak); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("get streak for %s: %w", userID, err)
	}
	return &streak, nil
}

// UpdateStreak applies fn to the user's streak inside a single
// transaction, so concurrent touches for one user cannot both read the
// same stale state. fn mutates the streak in place; returning an error
// aborts the write.
func (s *Store) UpdateStreak(ctx context.Context, userID string, fn func(*domain.Streak) error) (*domain.Streak, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var streak domain.Streak

	err := s.db.Update(func(txn *badger.Txn) error {
		key := []byte(streakPrefix + userID)
		streak = domain.Streak{UserID: userID}

		if err := getInTxn(txn, key, &streak); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := fn(&streak); err != nil {
			return err
		}
		streak.UpdatedAt = time.Now()

		return setInTxn(txn, key, &streak)
	})
	if err != nil {
		return nil, err
	}

	return &streak, nil
}
