// Package adauth is the authentication and verification-challenge core for
// the Adverto marketplace: stateless JWT session credentials, short-lived
// email verification challenges in a Redis-backed TTL store with an
// in-process degraded fallback, and route-level access enforcement.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// adauth is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (SessionResult, MetricsSnapshot, etc.). All internal
// coordination (the TTL cache, challenge records, audit dispatch) lives
// under internal/ and is never exported.
//
// # What this package must NOT do
//
//   - Persist users or ads: the durable store is reached only through the
//     caller-supplied [UserStore] interface.
//   - Deliver email: outbound dispatch goes through [Mailer].
//   - Keep server-side session state: credential validity is a pure
//     function of signature and expiry.
//
// # Performance contract
//
// Authenticate is the hot path. It runs on every guarded request and must
// complete without any cache or database round-trip.
package adauth
