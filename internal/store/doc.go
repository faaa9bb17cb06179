// Package store provides the SQLite-backed build cache.
//
// The cache remembers, per source file, the hash of the input that was last
// transpiled and the hash of the Lua written for it, so unchanged files can
// be skipped on the next build. Every build is recorded with its counts.
//
// # Ordering
//
// Builds are ordered by seq, a logical counter assigned at BeginBuild, never
// by wall-clock time. Queries returning several rows order by a stable key
// with COLLATE BINARY so results do not depend on insertion order.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
//
// The cache is a performance aid only. Deleting the database file forces a
// full rebuild and is always safe.
package store
