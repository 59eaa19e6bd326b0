// Package ledger records packaging runs in a SQLite database.
//
// Each run row stores the request, the final state, and the failing stage.
// Artifact rows store the per-artifact publish outcome so a partial publish
// can be inspected with `bideorai history` after the working directory is
// gone. The database uses modernc.org/sqlite in WAL mode and retries briefly
// on SQLITE_BUSY because several bideorai processes may share one state
// directory.
package ledger
