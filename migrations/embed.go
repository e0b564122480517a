// Package migrations embeds the SQLite schema migrations so the binary can apply them
// without files on disk.
package migrations

import "embed"

// FS holds the *.up.sql and *.down.sql migration files.
//
//go:embed *.sql
var FS embed.FS
