// Package eventprocessor routes decoded tracelog events to typed handlers.
//
// Architecture:
//
//	┌─────────────────────────────────────────┐
//	│   tracelog.Decode → []wire.Event        │
//	└─────────────────┬───────────────────────┘
//	                  │
//	                  ▼
//	┌─────────────────────────────────────────┐
//	│   eventprocessor                        │  ← Event routing
//	│   - Switches on the event variant       │
//	│   - Stops at the first handler error    │
//	└─────────┬───────────────────────────────┘
//	          │
//	          ├──→ Config ──────────→ HandleConfig
//	          │
//	          ├──→ TaskCreate ──────→ HandleTaskCreate
//	          │                       - task registry
//	          │
//	          ├──→ TaskSwitchedIn ──→ HandleTaskSwitchedIn
//	          │                       - opens an execution
//	          │
//	          └──→ TaskSwitchedOut ─→ HandleTaskSwitchedOut
//	                                  - closes an execution
//
// The execution analyzer in package analyze is the main TaskEventHandler.
package eventprocessor
