// Package daemon bundles the job store and workflow manager into a single
// worker lifecycle with flock-based locking to prevent multiple workers from
// processing the same queue database.
package daemon
