// Package token issues and verifies signed bearer access tokens.
//
// Tokens are compact JWTs signed with HMAC-SHA256 under one process-wide
// secret. The claim set is minimal: sub (account id, decimal), email, iat,
// exp and an optional iss. Only HS256 is accepted on verification, so a
// token re-labelled with another algorithm (including "none") is rejected.
//
// Verification never panics and reports every failure as ErrInvalidToken.
package token
