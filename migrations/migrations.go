// Package migrations embeds the goose SQL migration files so the binary can
// apply them at startup without a migrations directory on disk.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
