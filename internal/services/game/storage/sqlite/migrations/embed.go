package migrations

import "embed"

// FS contains embedded SQLite migrations for the local best score store.
//
//go:embed *.sql
var FS embed.FS
