// Package migrations embeds the schema for both SQL backends.
package migrations

import "embed"

// Postgres holds migrations with a {{schema}} placeholder.
//
//go:embed postgres/*.sql
var Postgres embed.FS

// SQLite holds migrations for the embedded backend.
//
//go:embed sqlite/*.sql
var SQLite embed.FS
