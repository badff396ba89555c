// Package output renders analyzed traces.
//
// Two consumers share the same inputs, a decoded TraceLog and its
// analyze.Info:
//
//	             +--> Report --> WriteText / WriteJSON / WriteYAML
//	TraceLog --+ |
//	Info ------+-+--> OTELFormatter --> spans (one root per trace,
//	                                    one child per execution)
//
// Neither recomputes anything: statistics come from analyze, custom
// attributes from attributes, wall-clock times from timesync.
package output
