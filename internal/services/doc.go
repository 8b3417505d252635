// Package services defines the shared error taxonomy used by pipeline
// stages and external tool adapters.
//
// Adapters wrap failures with a sentinel marker (external tool, timeout,
// validation, ...) so the workflow manager can classify degrade-vs-fail
// without string matching. Fatal policy errors additionally carry a
// machine-checkable reason code surfaced through the job status API.
package services
