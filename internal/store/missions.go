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

const (
	missionPrefix    = "mission:"
	missionGenPrefix = "missiongen:" // marks a (user, cadence, period) as generated
)

// missionKey nests missions under their user so per-user reads are a
// single prefix scan.
func missionKey(userID, missionID string) []byte {
	return []byte(missionPrefix + userID + ":" + missionID)
}

// genMarkerKey marks one generation period as done for a user.
func genMarkerKey(userID string, cadence domain.MissionCadence, periodKey string) []byte {
	return []byte(missionGenPrefix + userID + ":" + string(cadence) + ":" + periodKey)
}

// CreateMissions writes a batch of missions and the generation marker
// for their period in one transaction. If the marker already exists the
// batch is dropped and ErrAlreadyExists is returned; generation is
// idempotent per (user, cadence, period).
func (s *Store) CreateMissions(ctx context.Context, userID string, cadence domain.MissionCadence, periodKey string, missions []*domain.Mission) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	marker := genMarkerKey(userID, cadence, periodKey)

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(marker)
		if err == nil {
			return ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check generation marker: %w", err)
		}

		for _, m := range missions {
			if err := setInTxn(txn, missionKey(userID, m.ID), m); err != nil {
				return fmt.Errorf("save mission %s: %w", m.ID, err)
			}
		}

		return txn.Set(marker, []byte(time.Now().Format(time.RFC3339)))
	})
}

// GetMission retrieves one mission.
func (s *Store) GetMission(_ context.Context, userID, missionID string) (*domain.Mission, error) {
	var mission domain.Mission
	if err := s.get(missionKey(userID, missionID), &mission); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get mission %s: %w", missionID, err)
	}
	return &mission, nil
}

// ListMissions returns a user's missions, optionally filtered to one
// cadence and period. Empty filters match everything.
func (s *Store) ListMissions(_ context.Context, userID string, cadence domain.MissionCadence, periodKey string) ([]*domain.Mission, error) {
	prefix := []byte(missionPrefix + userID + ":")
	var missions []*domain.Mission

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var mission domain.Mission
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &mission)
			}); err != nil {
				continue
			}

			if cadence != "" && mission.Cadence != cadence {
				continue
			}
			if periodKey != "" && mission.PeriodKey != periodKey {
				continue
			}
			missions = append(missions, &mission)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list missions for %s: %w", userID, err)
	}

	return missions, nil
}

// ListActiveMissionsByType returns the user's active missions tracking
// the given goal type.
func (s *Store) ListActiveMissionsByType(ctx context.Context, userID string, missionType domain.MissionType) ([]*domain.Mission, error) {
	all, err := s.ListMissions(ctx, userID, "", "")
	if err != nil {
		return nil, err
	}

	var matched []*domain.Mission
	for _, m := range all {
		if m.Status == domain.MissionActive && m.Type == missionType {
			matched = append(matched, m)
		}
	}
	return matched, nil
}

// UpdateMission applies fn to one mission inside a single transaction.
// fn mutates the mission in place; returning an error aborts the write.
func (s *Store) UpdateMission(ctx context.Context, userID, missionID string, fn func(*domain.Mission) error) (*domain.Mission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var mission domain.Mission

	err := s.db.Update(func(txn *badger.Txn) error {
		key := missionKey(userID, missionID)
		if err := getInTxn(txn, key, &mission); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := fn(&mission); err != nil {
			return err
		}
		mission.Touch()

		return setInTxn(txn, key, &mission)
	})
	if err != nil {
		return nil, err
	}

	return &mission, nil
}

// ExpireMissions marks every active or needs_review mission past its
// deadline as expired, across all users. Returns how many flipped.
// Run periodically; RecordProgress also rejects lapsed missions inline,
// so the sweep only affects what users see in listings.
func (s *Store) ExpireMissions(_ context.Context, now time.Time) (int, error) {
	prefix := []byte(missionPrefix)
	expired := 0

	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		type pending struct {
			key     []byte
			mission *domain.Mission
		}
		var updates []pending

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var mission domain.Mission
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &mission)
			}); err != nil {
				continue
			}

			open := mission.Status == domain.MissionActive || mission.Status == domain.MissionNeedsReview
			if !open || !mission.IsExpired(now) {
				continue
			}

			mission.Status = domain.MissionExpired
			mission.Touch()
			updates = append(updates, pending{it.Item().KeyCopy(nil), &mission})
		}

		for _, u := range updates {
			if err := setInTxn(txn, u.key, u.mission); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("expire missions: %w", err)
	}

	return expired, nil
}
