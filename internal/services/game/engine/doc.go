// Package engine implements the jump game simulation.
//
// The engine owns the player body, the platform set and the scroll
// accumulator, and advances them one Tick at a time. It holds no scheduling
// dependency: hosts call Tick once per display refresh (see package loop) and
// tests call it synchronously.
//
// All methods except SetLeft and SetRight must be called from the goroutine
// that owns the engine.
package engine
