package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/luasharp/internal/ir"
)

// Build modes.
const (
	ModeFull  = "full"
	ModeWatch = "watch"
)

// Build is one recorded build run.
type Build struct {
	ID          string `json:"id"`
	Seq         int64  `json:"seq"`
	Mode        string `json:"mode"`
	ToolVersion string `json:"tool_version"`
	Built       int    `json:"built"`
	Skipped     int    `json:"skipped"`
	Failed      int    `json:"failed"`
	Finished    bool   `json:"finished"`
}

// BeginBuild records the start of a build and returns it with a fresh
// time-ordered ID and the next sequence number.
func (s *Store) BeginBuild(ctx context.Context, mode string) (Build, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Build{}, fmt.Errorf("begin build: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Build{}, fmt.Errorf("begin build: begin tx: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM builds`).Scan(&seq); err != nil {
		return Build{}, fmt.Errorf("begin build: next seq: %w", err)
	}

	b := Build{ID: id.String(), Seq: seq, Mode: mode, ToolVersion: ir.ToolVersion}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO builds (id, seq, mode, tool_version)
		VALUES (?, ?, ?, ?)
	`, b.ID, b.Seq, b.Mode, b.ToolVersion)
	if err != nil {
		return Build{}, fmt.Errorf("begin build: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Build{}, fmt.Errorf("begin build: commit: %w", err)
	}
	return b, nil
}

// FinishBuild stores the final counts of a build.
func (s *Store) FinishBuild(ctx context.Context, id string, built, skipped, failed int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE builds SET built = ?, skipped = ?, failed = ?, finished = 1
		WHERE id = ?
	`, built, skipped, failed, id)
	if err != nil {
		return fmt.Errorf("finish build: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish build: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish build: unknown build %q", id)
	}
	return nil
}

// LastBuild returns the build with the highest sequence number.
func (s *Store) LastBuild(ctx context.Context) (Build, bool, error) {
	var b Build
	var finished int
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seq, mode, tool_version, built, skipped, failed, finished
		FROM builds
		ORDER BY seq DESC
		LIMIT 1
	`).Scan(&b.ID, &b.Seq, &b.Mode, &b.ToolVersion, &b.Built, &b.Skipped, &b.Failed, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return Build{}, false, nil
	}
	if err != nil {
		return Build{}, false, fmt.Errorf("last build: %w", err)
	}
	b.Finished = finished == 1
	return b, true, nil
}
