package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/ecomindsapp/ecominds-server/internal/domain"
)

const (
	unlockPrefix    = "unlock:"
	userBadgePrefix = "userbadge:"
)

// CreateUnlock records an achievement unlock. The key creation doubles
// as the uniqueness guard: a second unlock of the same (user,
// achievement) pair returns ErrAlreadyExists and writes nothing, so
// concurrent duplicate unlocks lose benignly.
func (s *Store) CreateUnlock(ctx context.Context, unlock *domain.UserAchievement) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(unlockPrefix + unlock.UserID + ":" + unlock.AchievementID)

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check unlock exists: %w", err)
		}
		return setInTxn(txn, key, unlock)
	})
}

// ListUnlocks returns every achievement a user has unlocked.
func (s *Store) ListUnlocks(_ context.Context, userID string) ([]*domain.UserAchievement, error) {
	prefix := []byte(unlockPrefix + userID + ":")
	var unlocks []*domain.UserAchievement

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var unlock domain.UserAchievement
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &unlock)
			}); err != nil {
				continue
			}
			unlocks = append(unlocks, &unlock)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list unlocks for %s: %w", userID, err)
	}

	return unlocks, nil
}

// GrantBadge records a badge for a user. Idempotent: re-granting an
// already held badge is a no-op.
func (s *Store) GrantBadge(ctx context.Context, grant *domain.UserBadge) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(userBadgePrefix + grant.UserID + ":" + grant.BadgeID)

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil // already held
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check badge exists: %w", err)
		}
		return setInTxn(txn, key, grant)
	})
}

// ListUserBadges returns every badge a user has earned.
func (s *Store) ListUserBadges(_ context.Context, userID string) ([]*domain.UserBadge, error) {
	prefix := []byte(userBadgePrefix + userID + ":")
	var badges []*domain.UserBadge

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var badge domain.UserBadge
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &badge)
			}); err != nil {
				continue
			}
			badges = append(badges, &badge)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list badges for %s: %w", userID, err)
	}

	return badges, nil
}
