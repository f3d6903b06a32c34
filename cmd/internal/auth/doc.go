// Package auth implements account signup/login and bearer-token identity
// resolution on top of identity.Store, the credential hasher and the token
// manager.
//
// Failures are reduced to two kinds: ErrConflict (signup could not register
// the email) and ErrUnauthorized (login or token rejected). Callers never see
// which step failed, so responses do not reveal whether an email exists.
package auth
