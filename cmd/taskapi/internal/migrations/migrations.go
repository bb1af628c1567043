package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds every registered schema migration. Files in this package
// register themselves from init().
var Migrations = migrate.NewMigrations()
