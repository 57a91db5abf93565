// Package migrations holds the schema of the postgres store: users, ads,
// view records, earnings, admins and the daily rollup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Version is the schema version db.Migrate moves the database to.
const Version = 1
