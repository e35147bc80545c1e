// Package persistence stores the runtime state of a camera service.
//
// The service state file keeps the set of plugged camera profiles, so
// cameras hot-plugged through the inspection API survive a restart.
package persistence
