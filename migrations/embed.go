// Package migrations embeds the schema applied at startup.
package migrations

import "embed"

// FS holds the *.up.sql files in lexical order of application.
//
//go:embed *.sql
var FS embed.FS
