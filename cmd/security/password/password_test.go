package password

import (
	"strings"
	"testing"
)

// fastConfig keeps argon2 cheap enough for unit tests.
func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.Params.MemoryKiB = 8 * 1024
	cfg.Params.Iterations = 1
	cfg.Params.Parallelism = 1
	return cfg
}

func mustHasher(t *testing.T, cfg Config) *Hasher {
	t.Helper()
	h, err := NewHasher(cfg)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	return h
}

func TestHashAndVerify_OK(t *testing.T) {
	h := mustHasher(t, fastConfig())

	enc, err := h.Hash("pass1234")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(enc, "$argon2id$v=19$") {
		t.Fatalf("unexpected encoding: %q", enc)
	}
	if !h.Verify("pass1234", enc) {
		t.Fatalf("expected match")
	}
}

func TestHash_Salted(t *testing.T) {
	h := mustHasher(t, fastConfig())

	a, err := h.Hash("pass1234")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	b, err := h.Hash("pass1234")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct hashes for the same password")
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	h := mustHasher(t, fastConfig())

	enc, err := h.Hash("pass1234")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if h.Verify("pass12345", enc) {
		t.Fatalf("expected mismatch")
	}
}

func TestVerify_MalformedHashes(t *testing.T) {
	h := mustHasher(t, fastConfig())

	cases := []string{
		"",
		"not-a-hash",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdHNhbHQ$a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$a2V5",
		"$2b$04$short",
	}
	for _, c := range cases {
		if h.Verify("pass1234", c) {
			t.Fatalf("expected false for %q", c)
		}
	}
}

func TestVerify_RejectsOversizedParams(t *testing.T) {
	h := mustHasher(t, fastConfig())

	// m is far above 2x the configured memory.
	enc := "$argon2id$v=19$m=1048576,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5"
	if h.Verify("pass1234", enc) {
		t.Fatalf("expected false for out-of-bounds params")
	}
}

func TestBcrypt_HashAndVerify(t *testing.T) {
	cfg := fastConfig()
	cfg.Algorithm = AlgorithmBcrypt
	cfg.BcryptCost = 4
	h := mustHasher(t, cfg)

	enc, err := h.Hash("pass1234")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(enc, "$2a$04$") {
		t.Fatalf("unexpected encoding: %q", enc)
	}
	if !h.Verify("pass1234", enc) {
		t.Fatalf("expected match")
	}
	if h.Verify("pass4321", enc) {
		t.Fatalf("expected mismatch")
	}
	if h.Policy().MaxBytes != bcryptMaxBytes {
		t.Fatalf("expected bcrypt policy byte cap, got %d", h.Policy().MaxBytes)
	}
}

func TestVerify_CrossAlgorithm(t *testing.T) {
	bcfg := fastConfig()
	bcfg.Algorithm = AlgorithmBcrypt
	bcfg.BcryptCost = 4
	bh := mustHasher(t, bcfg)

	enc, err := bh.Hash("pass1234")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ah := mustHasher(t, fastConfig())
	if !ah.Verify("pass1234", enc) {
		t.Fatalf("argon2id hasher should still verify bcrypt hashes")
	}
}

func TestBcrypt_TooLong(t *testing.T) {
	cfg := fastConfig()
	cfg.Algorithm = AlgorithmBcrypt
	cfg.BcryptCost = 4
	h := mustHasher(t, cfg)

	if _, err := h.Hash(strings.Repeat("a1", 40)); err != ErrPasswordTooLong {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestNewHasher_InvalidConfig(t *testing.T) {
	cases := []struct {
		name string
		mod  func(*Config)
	}{
		{"unknown algorithm", func(c *Config) { c.Algorithm = "md5" }},
		{"tiny memory", func(c *Config) { c.Params.MemoryKiB = 1 }},
		{"bcrypt cost", func(c *Config) { c.Algorithm = AlgorithmBcrypt; c.BcryptCost = 99 }},
		{"min above max", func(c *Config) { c.Policy.MinLength = 20; c.Policy.MaxLength = 10 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := fastConfig()
			tc.mod(&cfg)
			if _, err := NewHasher(cfg); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
