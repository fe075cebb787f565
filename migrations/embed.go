// Package migrations carries the SQL schema so binaries and tests can run it
// without a checkout on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
