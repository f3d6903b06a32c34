package password

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Algorithm names accepted by Config.Algorithm.
const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmBcrypt   = "bcrypt"
)

// bcrypt ignores input past this many bytes; x/crypto rejects it outright.
const bcryptMaxBytes = 72

// Argon2idParams controls Argon2id hashing cost.
// MemoryKiB is in KiB as required by argon2.IDKey.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Policy controls password validation at the input boundary.
type Policy struct {
	MinLength int
	MaxLength int
	// MaxBytes, when > 0, caps the UTF-8 size. Set automatically for bcrypt.
	MaxBytes      int
	RequireLetter bool
	RequireDigit  bool
}

// Config is the single configuration surface for this package.
type Config struct {
	Algorithm  string
	Params     Argon2idParams
	BcryptCost int
	Policy     Policy
}

// DefaultConfig returns the baseline used when nothing is overridden.
func DefaultConfig() Config {
	// Clamp to [1..4] to keep resource usage predictable in containers.
	threads := runtime.NumCPU()
	if threads <= 0 {
		threads = 1
	}
	if threads > 4 {
		threads = 4
	}

	return Config{
		Algorithm: AlgorithmArgon2id,
		Params: Argon2idParams{
			MemoryKiB:   64 * 1024, // 64 MiB
			Iterations:  3,
			Parallelism: uint8(threads), // #nosec G115 -- clamped to [1..4] above.
			SaltLength:  16,
			KeyLength:   32,
		},
		BcryptCost: 12,
		Policy: Policy{
			MinLength:     8,
			MaxLength:     128,
			RequireLetter: true,
			RequireDigit:  true,
		},
	}
}

// Check validates the config and normalizes derived fields.
func (c Config) Check() (Config, error) {
	c.Algorithm = strings.ToLower(strings.TrimSpace(c.Algorithm))
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmArgon2id
	}

	switch c.Algorithm {
	case AlgorithmArgon2id:
		p := c.Params
		if p.MemoryKiB < 8*1024 || p.MemoryKiB > 1024*1024 {
			return Config{}, fmt.Errorf("%w: argon2 memory_kib out of range [8192..1048576]", ErrInvalidConfig)
		}
		if p.Iterations < 1 || p.Iterations > 20 {
			return Config{}, fmt.Errorf("%w: argon2 iterations out of range [1..20]", ErrInvalidConfig)
		}
		if p.Parallelism < 1 || p.Parallelism > 64 {
			return Config{}, fmt.Errorf("%w: argon2 parallelism out of range [1..64]", ErrInvalidConfig)
		}
		if p.SaltLength < 8 || p.SaltLength > 64 {
			return Config{}, fmt.Errorf("%w: argon2 salt_len out of range [8..64]", ErrInvalidConfig)
		}
		if p.KeyLength < 16 || p.KeyLength > 64 {
			return Config{}, fmt.Errorf("%w: argon2 key_len out of range [16..64]", ErrInvalidConfig)
		}
	case AlgorithmBcrypt:
		if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
			return Config{}, fmt.Errorf("%w: bcrypt cost out of range [%d..%d]", ErrInvalidConfig, bcrypt.MinCost, bcrypt.MaxCost)
		}
		if c.Policy.MaxBytes <= 0 || c.Policy.MaxBytes > bcryptMaxBytes {
			c.Policy.MaxBytes = bcryptMaxBytes
		}
	default:
		return Config{}, fmt.Errorf("%w: unknown algorithm %q", ErrInvalidConfig, c.Algorithm)
	}

	if c.Policy.MinLength < 1 {
		return Config{}, fmt.Errorf("%w: min_len must be >= 1", ErrInvalidConfig)
	}
	if c.Policy.MinLength > c.Policy.MaxLength {
		return Config{}, fmt.Errorf(
			"%w: min_len(%d) > max_len(%d)",
			ErrInvalidConfig,
			c.Policy.MinLength,
			c.Policy.MaxLength,
		)
	}

	return c, nil
}
