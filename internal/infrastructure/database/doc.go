// Package database provides SQLite connectivity for gadgetd.
//
// This package manages:
//   - Connection setup for either SQLite driver (mattn cgo or modernc pure Go)
//   - WAL mode, busy timeout and foreign key enforcement
//   - Versioned schema migrations read from any fs.FS
//
// Security Considerations:
//   - All queries use parameterised statements
//   - Database file permissions are set to 0600
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: "./data/gadgetd.db", WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
package database
