// Package storage owns the SQL backends shared by the account and post stores:
// opening SQLite, applying embedded migrations, and classifying driver errors
// into constraint violations.
//
// Connection pools are owned by the caller (the app runtime); stores built on
// top of them must not close them.
package storage
