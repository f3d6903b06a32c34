// Package password hashes and verifies account credentials.
//
// Two encodings are supported:
// - Argon2id in a PHC-like string: $argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt>$<key>
// - bcrypt ($2a$/$2b$/$2y$), for stores seeded by bcrypt-based tooling
//
// Hash strings are untrusted input during Verify. Malformed hashes and hashes
// whose cost parameters exceed the configured bounds never match.
package password
