// Package password hashes and verifies user passwords with argon2id.
//
// Hashes are emitted in PHC string format so the parameters travel with
// the digest, e.g.:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt-b64>$<hash-b64>
//
// Cost parameters are fixed constants. They are never lowered at
// runtime: if the primitive cannot run with them, hashing fails.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	algorithmID = "argon2id"

	timeCost    uint32 = 3
	memoryKB    uint32 = 64 * 1024
	parallelism uint8  = 2
	saltLength         = 16
	keyLength   uint32 = 32
)

// Hash derives an argon2id digest of plain with a fresh random salt and
// returns it in PHC format. The only failure mode is the system RNG.
func Hash(plain string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("password: salt generation failed: %w", err)
	}

	digest := argon2.IDKey([]byte(plain), salt, timeCost, memoryKB, parallelism, keyLength)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		memoryKB,
		timeCost,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// Verify reports whether plain matches the stored PHC hash. A malformed
// stored hash is a plain false, never an error: a broken row must fail
// the same way a wrong password does.
func Verify(plain, encoded string) bool {
	salt, hash, m, t, p, ok := parsePHC(encoded)
	if !ok {
		return false
	}

	computed := argon2.IDKey([]byte(plain), salt, t, m, p, uint32(len(hash)))
	return subtle.ConstantTimeCompare(computed, hash) == 1
}

func parsePHC(encoded string) (salt, hash []byte, m, t uint32, p uint8, ok bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != algorithmID {
		return nil, nil, 0, 0, 0, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, nil, 0, 0, 0, false
	}

	var pv uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &m, &t, &pv); err != nil {
		return nil, nil, 0, 0, 0, false
	}
	if m == 0 || t == 0 || pv == 0 || pv > 255 {
		return nil, nil, 0, 0, 0, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return nil, nil, 0, 0, 0, false
	}
	hash, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(hash) == 0 {
		return nil, nil, 0, 0, 0, false
	}

	return salt, hash, m, t, uint8(pv), true
}
