// Package attributes evaluates user expressions over analyzed traces.
//
// Expressions use the expr language and are compiled once, up front, so a
// typo fails before any trace is read.
//
//	Evaluator          per-task custom attributes
//	                   env: name, number, created, created_at, executions, busy
//	TraceIDEvaluator   trace ID for an exported trace (32 hex chars)
//	ParentIDEvaluator  parent span ID for an exported trace (16 hex chars)
//	                   env: source, version, tasks, events
//
// A trace ID expression whose result is not 32 hex characters is hashed
// with SHA-256 into a valid ID. An invalid parent ID yields no parent.
// Both cases attach warning attributes describing the rejected value.
package attributes
