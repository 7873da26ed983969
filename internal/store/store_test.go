package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ecomindsapp/ecominds-server/internal/domain"
	"github.com/ecomindsapp/ecominds-server/internal/id"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "store-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := New(dbPath, nil)
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return s, cleanup
}

// createTestUser seeds a user with zero points for ledger tests.
func createTestUser(t *testing.T, s *Store, id string) *domain.User {
	t.Helper()

	user := &domain.User{
		Base:        domain.Base{ID: id},
		Email:       id + "@example.com",
		DisplayName: "User " + id,
		Role:        domain.RoleStudent,
		Grade:       "8",
		College:     "Green Valley",
	}
	user.InitTimestamps()

	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

// ledgerEntry builds an entry with a unique ID and creation time so
// keys never collide inside a test.
var entrySeq int64

func ledgerEntry(userID string, points int, source domain.PointsSource) *domain.PointsLedgerEntry {
	entrySeq++
	return &domain.PointsLedgerEntry{
		ID:        id.MustGenerate("led"),
		UserID:    userID,
		Points:    points,
		Source:    source,
		CreatedAt: time.Now().Add(time.Duration(entrySeq) * time.Microsecond),
	}
}
