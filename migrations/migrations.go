// Package migrations embeds the goose SQL migrations for postgres deployments.
// sqlite workstations create the schema with database.AutoMigrate instead.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
