// Package database provides SQLite connectivity for Fleet Core.
//
// This package manages:
//   - Database connection with WAL mode and busy timeout
//   - Schema migrations from embedded SQL files
//   - Health checks and lifecycle management
//
// SQLite is used as the system of record for fleet entities (devices,
// locations, clients, users, alerts). Schedule session state is deliberately
// in-memory only; the device is the source of truth for schedules.
//
// # Usage
//
//	db, err := database.Open(ctx, database.Config{Path: "./data/fleetcore.db", WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
package database
