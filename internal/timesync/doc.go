// Package timesync converts trace timestamps to wall-clock time.
//
// Trace timestamps are microseconds since an origin known only to the
// target (usually its boot). The converter anchors that origin at an epoch
// chosen on the host, by flag or environment, defaulting to the export time.
package timesync
