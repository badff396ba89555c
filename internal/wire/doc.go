// Package wire defines the binary layout of scheduler tracelog records and
// converts between raw bytes and typed events.
//
// A tracelog is a flat sequence of tag-prefixed little-endian records with
// no length prefix or trailer:
//
//	┌─────┬──────────────────────────────────────────────┐
//	│ tag │ payload                                      │
//	├─────┼──────────────────────────────────────────────┤
//	│  0  │ u8 major, u8 minor, u8 patch, u8 name width  │  Config (first, once)
//	│  1  │ u32 timestamp, u32 task, [width]byte name    │  TaskCreate
//	│  2  │ u32 timestamp, u32 task                      │  TaskSwitchedIn
//	│  3  │ u32 timestamp, u32 task                      │  TaskSwitchedOut
//	└─────┴──────────────────────────────────────────────┘
//
// The name width announced by the Config record applies to every
// TaskCreate record of the trace. Only TaskCreate has a configuration
// dependent size; see Size.
package wire
