// Package token signs and verifies the stateless session credential.
// The Manager has no cache or database dependency: validity is a pure
// function of the credential, the configured key material, and the
// clock, which keeps verification cheap enough to run on every request.
package token
