// Package dag provides the task graph the build orchestrator schedules
// descriptors on. Nodes carry an arbitrary task function; independent nodes
// run concurrently on a bounded worker pool, a failed node cancels the run
// and skips its dependents, and the first real failure is reported as the
// root cause.
package dag
