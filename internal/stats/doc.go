// Package stats aggregates execution intervals into summary statistics:
// shortest and longest execution, mean execution time and the idle gaps
// between consecutive executions.
//
// All functions are pure. Durations are signed microsecond counts so that
// overlapping executions yield negative gaps instead of wrapping around.
package stats
