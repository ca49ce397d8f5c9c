// Package migrations embeds SQL migration files for the sqlite record store.
package migrations

import "embed"

// FS holds the embedded SQL migration files.
//
//go:embed *.sql
var FS embed.FS
