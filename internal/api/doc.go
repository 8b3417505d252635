// Package api exposes the in-process submit/poll surface front ends build
// on. It validates submissions, translates queue rows into transport
// friendly views, and never leaks storage types to callers.
package api
