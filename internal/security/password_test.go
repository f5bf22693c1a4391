package security

import "testing"

func TestPasswordHashAndCheck(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "secret123" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "secret123") {
		t.Fatal("correct password rejected")
	}
	if CheckPassword(hash, "secret124") {
		t.Fatal("wrong password accepted")
	}
	if CheckPassword("not-a-hash", "secret123") {
		t.Fatal("malformed hash accepted")
	}
}

func TestPasswordHashesAreSalted(t *testing.T) {
	a, err := HashPassword("secret123")
	if err != nil {
		t.Fatal(err)
	}
	b, err := HashPassword("secret123")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("two hashes of the same password must differ")
	}
}
