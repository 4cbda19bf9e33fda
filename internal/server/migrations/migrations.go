// Package migrations embeds the goose SQL migrations for the giveaway schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
