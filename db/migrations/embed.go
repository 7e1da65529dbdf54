// Package migrations embeds the queue store's SQL schema so the harness
// can apply it at startup without a separate migration tool.
package migrations

import "embed"

// Files contains all SQL migration files in ascending order by filename.
//
//go:embed *.sql
var Files embed.FS
