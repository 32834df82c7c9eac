// Package migrations embeds the SQL migration files that cmd/migrate applies
// through storage.NewMigrator. The worker itself does not run migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
