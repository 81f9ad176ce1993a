package password

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := HashWithCost("correct horse", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashWithCost: %v", err)
	}
	if !IsHash(hash) {
		t.Fatalf("IsHash(%q) = false", hash)
	}
	if !Verify("correct horse", hash) {
		t.Fatal("Verify rejected the right password")
	}
	if Verify("battery staple", hash) {
		t.Fatal("Verify accepted the wrong password")
	}
	if Verify("correct horse", "not-a-hash") {
		t.Fatal("Verify accepted a malformed hash")
	}
}

func TestBurnDoesNotPanic(t *testing.T) {
	Burn("anything")
	if !IsHash(string(dummyHash)) {
		t.Fatal("dummy hash must be a well-formed bcrypt hash")
	}
}
