// Package migrations holds the SQL schema of the PostgreSQL local store.
package migrations

import "embed"

//go:embed *.up.sql
var FS embed.FS
