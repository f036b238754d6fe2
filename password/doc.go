// Package password hashes and verifies marketplace account passwords
// with Argon2id, encoded as PHC strings. Length policy lives in the
// engine; this package only handles the hash itself.
package password
