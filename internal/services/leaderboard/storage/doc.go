// Package storage defines the leaderboard persistence contracts.
//
// A Board keeps one best score per case-insensitive identity, bounded by a
// capacity. Durable backends expose sorted-set primitives through RankedStore
// and share the submission rules implemented by RankedBoard; the memory
// backend implements Board directly.
package storage
