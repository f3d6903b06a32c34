package authapi

import "postboard/cmd/internal/httpx"

// Config controls request handling for the auth endpoints.
type Config struct {
	// MaxBodyBytes bounds JSON request bodies.
	MaxBodyBytes int64
	// LoginPasswordMaxLength bounds the password accepted by /auth/login (characters).
	LoginPasswordMaxLength int
}

// DefaultConfig returns the defaults used when fields are left zero.
func DefaultConfig() Config {
	return Config{
		MaxBodyBytes:           httpx.DefaultMaxBodyBytes,
		LoginPasswordMaxLength: 128,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = def.MaxBodyBytes
	}
	if c.LoginPasswordMaxLength <= 0 {
		c.LoginPasswordMaxLength = def.LoginPasswordMaxLength
	}
	return c
}
