package password

import (
	"strings"
	"testing"
)

func TestHashVerifyRoundTrip(t *testing.T) {
	hash, err := Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("Hash() = %q, want PHC argon2id prefix", hash)
	}
	if !Verify("correct horse battery staple", hash) {
		t.Fatal("Verify() = false for the original password")
	}
	if Verify("correct horse battery staple ", hash) {
		t.Fatal("Verify() = true for a different password")
	}
}

func TestHashUsesFreshSalt(t *testing.T) {
	first, err := Hash("hunter22222")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	second, err := Hash("hunter22222")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if first == second {
		t.Fatal("two hashes of the same password are identical, salt is being reused")
	}
	if !Verify("hunter22222", first) || !Verify("hunter22222", second) {
		t.Fatal("Verify() rejected a freshly produced hash")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{name: "empty", encoded: ""},
		{name: "not-phc", encoded: "plain-text-password"},
		{name: "wrong-algorithm", encoded: "$bcrypt$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA"},
		{name: "bad-version", encoded: "$argon2id$v=16$m=65536,t=3,p=2$c2FsdA$aGFzaA"},
		{name: "bad-params", encoded: "$argon2id$v=19$m=banana$c2FsdA$aGFzaA"},
		{name: "bad-salt-encoding", encoded: "$argon2id$v=19$m=65536,t=3,p=2$!!!$aGFzaA"},
		{name: "truncated", encoded: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Verify("whatever", tt.encoded) {
				t.Fatalf("Verify() = true for malformed hash %q", tt.encoded)
			}
		})
	}
}
