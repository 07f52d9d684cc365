package migrations

import "embed"

// FS contains the journal schema migrations.
//
//go:embed *.sql
var FS embed.FS
