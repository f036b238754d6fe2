// Package internal contains helper utilities that are intentionally
// private to adauth, including secure verification-code generation.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - cache: Redis-backed TTL store with an in-process degraded fallback
//   - stores: the challenge registry built on the TTL cache
//
// # What this package must NOT do
//
//   - Export types that appear in the public adauth API.
//   - Be imported by any package outside the adauth module.
package internal
