// Package play hosts jump runs for browser clients over websockets.
//
// Each connection gets its own engine, driven by a frame queue that the
// session goroutine flushes on a fixed ticker. The session goroutine is the
// only one that touches the engine or writes to the socket; a reader
// goroutine forwards decoded commands to it.
package play
