package bunx

import "github.com/google/uuid"

// NewUUIDv7 generates a time-ordered UUIDv7 string for database primary keys.
//
// UUIDv7 keeps inserts index-friendly and works on both PostgreSQL and SQLite
// without relying on gen_random_uuid(). Generation only fails when the
// entropy source is broken, so it panics instead of returning an error.
func NewUUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}
