// Package migrations holds the Postgres schema of a study site.
package migrations

import "embed"

// FS contains every numbered migration file.
//
//go:embed *.sql
var FS embed.FS
