// Package cache implements the TTL key-value store behind the challenge
// registry: Redis as the primary backend with a process-scoped in-memory
// fallback that takes over, per operation, when a Redis round-trip fails.
// The fallback is not shared across instances and does not survive a
// restart; it is a degraded mode, not durability.
package cache
