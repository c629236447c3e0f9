// Package timeouts defines shared timeout constants used across services.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long a server waits for in-flight requests during
// graceful shutdown.
const Shutdown = 5 * time.Second

// BackendDial caps a single connection attempt to a durable ranked store.
const BackendDial = 2 * time.Second

// BackendRequest caps a single ranked store command round trip.
const BackendRequest = 3 * time.Second

// ScoreSubmit caps the fire-and-forget score submission made on game over.
const ScoreSubmit = 5 * time.Second

// WebsocketWrite caps a single websocket frame write.
const WebsocketWrite = 10 * time.Second

// WebsocketPong is how long a play session waits for a pong before closing.
const WebsocketPong = 60 * time.Second
