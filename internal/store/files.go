package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// FileStatus is the outcome of the last build of one source file.
type FileStatus string

const (
	StatusBuilt   FileStatus = "built"
	StatusSkipped FileStatus = "skipped"
	StatusFailed  FileStatus = "failed"
)

// FileRecord is the cached state of one source file.
type FileRecord struct {
	SourcePath string     `json:"source_path"` // relative to the source directory, slash separated
	SourceHash string     `json:"source_hash"`
	OutputPath string     `json:"output_path"` // relative to the output directory, slash separated
	OutputHash string     `json:"output_hash,omitempty"`
	Status     FileStatus `json:"status"`
	Message    string     `json:"message,omitempty"` // failure message when Status is StatusFailed
	BuildID    string     `json:"build_id,omitempty"`
}

// Lookup returns the record for sourcePath.
func (s *Store) Lookup(ctx context.Context, sourcePath string) (FileRecord, bool, error) {
	rec, err := scanFile(s.db.QueryRowContext(ctx, `
		SELECT source_path, source_hash, output_path, output_hash, status, message, build_id
		FROM files
		WHERE source_path = ?
	`, sourcePath))
	if errors.Is(err, sql.ErrNoRows) {
		return FileRecord{}, false, nil
	}
	if err != nil {
		return FileRecord{}, false, fmt.Errorf("lookup %s: %w", sourcePath, err)
	}
	return rec, true, nil
}

// Record inserts or replaces the record for rec.SourcePath.
func (s *Store) Record(ctx context.Context, rec FileRecord) error {
	if rec.SourcePath == "" {
		return errors.New("record: source path is required")
	}
	var buildID sql.NullString
	if rec.BuildID != "" {
		buildID = sql.NullString{String: rec.BuildID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO files
		(source_path, source_hash, output_path, output_hash, status, message, build_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_path) DO UPDATE SET
			source_hash = excluded.source_hash,
			output_path = excluded.output_path,
			output_hash = excluded.output_hash,
			status = excluded.status,
			message = excluded.message,
			build_id = excluded.build_id
	`,
		rec.SourcePath,
		rec.SourceHash,
		rec.OutputPath,
		rec.OutputHash,
		string(rec.Status),
		rec.Message,
		buildID,
	)
	if err != nil {
		return fmt.Errorf("record %s: %w", rec.SourcePath, err)
	}
	return nil
}

// Forget removes the record for sourcePath. Forgetting an unknown path is
// not an error.
func (s *Store) Forget(ctx context.Context, sourcePath string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE source_path = ?`, sourcePath); err != nil {
		return fmt.Errorf("forget %s: %w", sourcePath, err)
	}
	return nil
}

// Files returns every record ordered by source path.
func (s *Store) Files(ctx context.Context) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_path, source_hash, output_path, output_hash, status, message, build_id
		FROM files
		ORDER BY source_path ASC COLLATE BINARY
	`)
	if err != nil {
		return nil, fmt.Errorf("files: %w", err)
	}
	defer rows.Close()

	var out []FileRecord
	for rows.Next() {
		rec, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("files: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("files: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(row scanner) (FileRecord, error) {
	var rec FileRecord
	var status string
	var buildID sql.NullString
	if err := row.Scan(&rec.SourcePath, &rec.SourceHash, &rec.OutputPath, &rec.OutputHash, &status, &rec.Message, &buildID); err != nil {
		return FileRecord{}, err
	}
	rec.Status = FileStatus(status)
	rec.BuildID = buildID.String
	return rec, nil
}
