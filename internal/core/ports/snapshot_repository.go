package ports

import (
	"context"

	"github.com/gerenciadorpro/roster-api/internal/core/domain"
)

// SnapshotRepository persists the full roster snapshot of one user as a
// single document.
type SnapshotRepository interface {
	// Load returns the stored snapshot for the user, with history ordered
	// newest-first. A user with no stored document gets an empty snapshot,
	// not an error.
	Load(ctx context.Context, userID string) (*domain.Snapshot, error)

	// Save overwrites the stored snapshot wholesale. There is no merge and
	// no concurrency token: of two racing writers the later one wins and the
	// earlier write is silently discarded.
	Save(ctx context.Context, userID string, snap *domain.Snapshot) error
}
