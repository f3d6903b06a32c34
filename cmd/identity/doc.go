// Package identity holds the account model and its persistence boundary.
//
// Accounts are looked up by store-assigned numeric id or by email. Email
// equality is exact (case-sensitive as stored); callers trim surrounding
// whitespace with NormalizeEmail before lookups and inserts.
//
// Three Store implementations are provided: in-memory (development and
// tests), PostgreSQL (pgx) and SQLite (modernc). Errors carry stable kinds
// (ErrNotFound, ErrConflict, ...) for mapping at higher layers.
package identity
