// Package queue persists dubbing jobs in SQLite and exposes the status
// machine the workflow manager drives. Jobs carry their segment list and
// accumulated metadata as JSON columns so a single row describes the full
// pipeline state.
package queue
