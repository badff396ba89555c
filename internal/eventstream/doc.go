// Package eventstream runs the decode and analyze pipeline over a batch of
// trace files.
//
//	sources --> [load + analyze] x jobs --> results (source order) --> ResultHandler
//
// Each trace is independent, so files are processed concurrently up to the
// configured job count. Results reach the handler sequentially and in the
// order the sources were given, whatever order they finished in.
package eventstream
