// Package migrations embeds the schema migrations for the Postgres account
// store, applied with goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
