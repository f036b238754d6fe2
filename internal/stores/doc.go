// Package stores holds the challenge registry: the domain layer that
// turns the generic TTL cache into single-use, code-gated verification
// challenges keyed by normalized identity.
package stores
