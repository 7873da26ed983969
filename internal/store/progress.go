package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/ecomindsapp/ecominds-server/internal/domain"
)

// GetProgress retrieves the aggregates for a user.
// A user with no recorded activity reads as a zeroed level-1 progress.
func (s *Store) GetProgress(_ context.Context, userID string) (*domain.UserProgress, error) {
	key := buildKey(progressPrefix, userID)
	defer releaseKey(key)

	progress := domain.UserProgress{UserID: userID, Level: 1}
	if err := s.get(key, &progress); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("get progress for %s: %w", userID, err)
	}
	return &progress, nil
}

// UpdateProgress applies fn to the user's aggregates inside a single
// transaction. fn sees the current state (zeroed for new users) and
// mutates it in place; returning an error aborts the write.
func (s *Store) UpdateProgress(ctx context.Context, userID string, fn func(*domain.UserProgress) error) (*domain.UserProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var progress domain.UserProgress

	err := s.db.Update(func(txn *badger.Txn) error {
		key := []byte(progressPrefix + userID)
		progress = domain.UserProgress{UserID: userID, Level: 1}

		if err := getInTxn(txn, key, &progress); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := fn(&progress); err != nil {
			return err
		}
		progress.UpdatedAt = time.Now()

		return setInTxn(txn, key, &progress)
	})
	if err != nil {
		return nil, err
	}

	return &progress, nil
}
