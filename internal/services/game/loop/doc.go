// Package loop drives an engine one tick per display refresh through a
// host-provided frame scheduler.
package loop
