// Package service implements leaderboard reads and submissions over a durable
// ranked store, degrading to a volatile in-process board when the durable
// store cannot be reached.
//
// The durable backend is chosen once at construction: Redis when a Redis URL
// is configured, else the KV REST API when its URL and token are set, else
// no durable backend. Every request reports which backend served it.
package service
