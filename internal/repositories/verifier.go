package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/shazcloud/internal/shared"
)

// VerifierRepository persists PKCE verifiers in the verifiers table so a pending
// authorization survives a server restart. It satisfies auth.VerifierStore.
type VerifierRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewVerifierRepository creates a new [VerifierRepository] with the given database connection
func NewVerifierRepository(db *sql.DB) *VerifierRepository {
	return &VerifierRepository{db: db, now: time.Now}
}

// Save stores verifier under state, replacing any previous entry.
func (r *VerifierRepository) Save(ctx context.Context, state, verifier string, expiresAt time.Time) error {
	if state == "" || verifier == "" {
		return shared.ErrMissingArgument
	}

	query := `
		INSERT INTO verifiers (state, verifier, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(state) DO UPDATE SET verifier = excluded.verifier, expires_at = excluded.expires_at
	`
	if _, err := r.db.ExecContext(ctx, query, state, verifier, expiresAt.Unix()); err != nil {
		return fmt.Errorf("failed to save verifier: %w", err)
	}
	return nil
}

// Take deletes and returns the verifier for state in one transaction.
//
// Expired rows are deleted too but reported as [shared.ErrVerifierNotFound].
func (r *VerifierRepository) Take(ctx context.Context, state string) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		verifier  string
		expiresAt int64
	)
	err = tx.QueryRowContext(ctx, "SELECT verifier, expires_at FROM verifiers WHERE state = ?", state).Scan(&verifier, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", shared.ErrVerifierNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query verifier: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM verifiers WHERE state = ?", state); err != nil {
		return "", fmt.Errorf("failed to delete verifier: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit verifier transaction: %w", err)
	}

	if r.now().Unix() >= expiresAt {
		return "", shared.ErrVerifierNotFound
	}
	return verifier, nil
}

// Purge deletes every verifier expired at now.
func (r *VerifierRepository) Purge(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM verifiers WHERE expires_at <= ?", now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge verifiers: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged verifiers: %w", err)
	}
	return int(n), nil
}

// Count returns the number of pending verifiers.
func (r *VerifierRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM verifiers").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count verifiers: %w", err)
	}
	return n, nil
}
