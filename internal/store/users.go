package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/ecomindsapp/ecominds-server/internal/domain"
)

const (
	userPrefix        = "user:"
	userByEmailPrefix = "idx:users:email:" // For login lookups
)

// CreateUser creates a new user account.
// The email index is checked and written in the same transaction as the
// user record, so duplicate registrations collide on ErrEmailExists.
func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	key := []byte(userPrefix + user.ID)
	emailKey := []byte(userByEmailPrefix + normalizeEmail(user.Email))

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check user exists: %w", err)
		}

		// Check if email is already in use
		_, err = txn.Get(emailKey)
		if err == nil {
			return ErrEmailExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check email exists: %w", err)
		}

		if err := setInTxn(txn, key, user); err != nil {
			return fmt.Errorf("save user: %w", err)
		}

		// Create email index
		return txn.Set(emailKey, []byte(user.ID))
	})
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(_ context.Context, id string) (*domain.User, error) {
	key := buildKey(userPrefix, id)
	defer releaseKey(key)

	var user domain.User
	if err := s.get(key, &user); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// GetUserByEmail retrieves a user by email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	emailKey := []byte(userByEmailPrefix + normalizeEmail(email))

	// Look up user ID from email index
	var userID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			userID = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	return s.GetUser(ctx, userID)
}

// UpdateUser updates an existing user.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	key := []byte(userPrefix + user.ID)

	// Get old user for email index updates
	oldUser, err := s.GetUser(ctx, user.ID)
	if err != nil {
		return err
	}

	user.Touch()

	return s.db.Update(func(txn *badger.Txn) error {
		if err := setInTxn(txn, key, user); err != nil {
			return fmt.Errorf("save user: %w", err)
		}

		// Update email index if email changed
		if !strings.EqualFold(oldUser.Email, user.Email) {
			oldEmailKey := []byte(userByEmailPrefix + normalizeEmail(oldUser.Email))
			if err := txn.Delete(oldEmailKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			newEmailKey := []byte(userByEmailPrefix + normalizeEmail(user.Email))
			_, err := txn.Get(newEmailKey)
			if err == nil {
				return ErrEmailExists
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("check new email: %w", err)
			}

			if err := txn.Set(newEmailKey, []byte(user.ID)); err != nil {
				return err
			}
		}

		return nil
	})
}

// ListUsers returns all users.
func (s *Store) ListUsers(_ context.Context) ([]*domain.User, error) {
	prefix := []byte(userPrefix)
	var users []*domain.User

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var user domain.User
				if unmarshalErr := json.Unmarshal(val, &user); unmarshalErr != nil {
					// Skip malformed users
					return nil //nolint:nilerr // intentionally skip malformed entries
				}
				users = append(users, &user)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

// normalizeEmail normalizes an email address for consistent lookups.
// Lowercases and trims whitespace.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
