package database

import (
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

// NewMockPool creates a new pgxmock pool for testing. The returned pool
// can be passed anywhere the engine's DBTX interface is accepted.
// Call ExpectationsWereMet() at the end of each test to verify all
// expectations were fulfilled.
func NewMockPool() (pgxmock.PgxPoolIface, error) {
	return pgxmock.NewPool()
}
