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
	ledgerPrefix   = "ledger:"
	progressPrefix = "progress:"
)

// ledgerKey builds the key for one ledger entry. Entries sort by
// creation time within a user, so a reverse prefix scan pages
// newest-first.
func ledgerKey(userID string, entry *domain.PointsLedgerEntry) []byte {
	return fmt.Appendf(nil, "%s%s:%020d:%s", ledgerPrefix, userID, entry.CreatedAt.UnixNano(), entry.ID)
}

// AppendLedgerEntry appends a ledger entry and moves both denormalized
// mirrors in the same transaction: User.Points by the entry's signed
// amount and UserProgress.TotalXP by positive amounts only, so spends
// never lower the level. coinsDelta adjusts the coin balance alongside.
//
// Returns ErrInsufficientPoints or ErrInsufficientCoins when a spend
// would drive a balance negative; nothing is written in that case.
func (s *Store) AppendLedgerEntry(ctx context.Context, entry *domain.PointsLedgerEntry, coinsDelta int) (*domain.UserProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var progress domain.UserProgress

	err := s.db.Update(func(txn *badger.Txn) error {
		// Move the user's point balance.
		userKey := []byte(userPrefix + entry.UserID)
		var user domain.User
		if err := getInTxn(txn, userKey, &user); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if user.Points+entry.Points < 0 {
			return ErrInsufficientPoints
		}
		user.Points += entry.Points
		user.Touch()

		// Move the progress mirrors.
		progress = domain.UserProgress{UserID: entry.UserID, Level: 1}
		progressKey := []byte(progressPrefix + entry.UserID)
		if err := getInTxn(txn, progressKey, &progress); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if entry.Points > 0 {
			progress.TotalXP += entry.Points
		}
		if progress.Coins+coinsDelta < 0 {
			return ErrInsufficientCoins
		}
		progress.Coins += coinsDelta
		progress.Level = domain.LevelForPoints(progress.TotalXP)
		progress.UpdatedAt = user.UpdatedAt

		if err := setInTxn(txn, ledgerKey(entry.UserID, entry), entry); err != nil {
			return err
		}
		if err := setInTxn(txn, userKey, &user); err != nil {
			return err
		}
		return setInTxn(txn, progressKey, &progress)
	})
	if err != nil {
		return nil, err
	}

	return &progress, nil
}

// LedgerHistory returns a user's ledger entries newest-first.
// cursor is the ID of the last entry from the previous page; empty
// starts from the newest. Returns the page and the cursor for the next
// one ("" when exhausted).
func (s *Store) LedgerHistory(_ context.Context, userID string, limit int, cursor string) ([]*domain.PointsLedgerEntry, string, error) {
	if limit <= 0 {
		limit = 50
	}

	prefix := []byte(ledgerPrefix + userID + ":")
	var entries []*domain.PointsLedgerEntry
	next := ""

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = true

		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration needs a seek key past the prefix range.
		seek := append(append([]byte{}, prefix...), 0xff)
		skipping := cursor != ""

		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			var entry domain.PointsLedgerEntry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				continue
			}

			if skipping {
				if entry.ID == cursor {
					skipping = false
				}
				continue
			}

			if len(entries) == limit {
				next = entries[len(entries)-1].ID
				return nil
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("ledger history for %s: %w", userID, err)
	}

	return entries, next, nil
}

// SumLedger recomputes a user's balances straight from the ledger:
// the signed sum (point balance) and the positive sum (lifetime XP).
func (s *Store) SumLedger(_ context.Context, userID string) (balance, lifetimeXP int, err error) {
	prefix := []byte(ledgerPrefix + userID + ":")

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var entry domain.PointsLedgerEntry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				continue
			}
			balance += entry.Points
			if entry.Points > 0 {
				lifetimeXP += entry.Points
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("sum ledger for %s: %w", userID, err)
	}

	return balance, lifetimeXP, nil
}

// ReconcileBalances rewrites both mirrors from the ledger sums.
// Backstop for drift; returns the corrected progress.
func (s *Store) ReconcileBalances(ctx context.Context, userID string) (*domain.UserProgress, error) {
	balance, lifetimeXP, err := s.SumLedger(ctx, userID)
	if err != nil {
		return nil, err
	}

	var progress domain.UserProgress

	err = s.db.Update(func(txn *badger.Txn) error {
		userKey := []byte(userPrefix + userID)
		var user domain.User
		if err := getInTxn(txn, userKey, &user); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		progress = domain.UserProgress{UserID: userID, Level: 1}
		progressKey := []byte(progressPrefix + userID)
		if err := getInTxn(txn, progressKey, &progress); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		user.Points = balance
		user.Touch()
		progress.TotalXP = lifetimeXP
		progress.Level = domain.LevelForPoints(lifetimeXP)
		progress.UpdatedAt = user.UpdatedAt

		if err := setInTxn(txn, userKey, &user); err != nil {
			return err
		}
		return setInTxn(txn, progressKey, &progress)
	})
	if err != nil {
		return nil, err
	}

	return &progress, nil
}
