package handlers

import (
	"testing"

	"github.com/electromarket/electromarket/libs/auth"
)

func TestPasswordHashing(t *testing.T) {
	password := "pass123"
	hash, err := hashPassword(password)
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	if hash == "" {
		t.Fatal("expected non-empty hash")
	}
	if err := verifyPassword(hash, password); err != nil {
		t.Fatalf("verifyPassword should succeed: %v", err)
	}
	if err := verifyPassword(hash, "wrong-pass"); err == nil {
		t.Fatal("verifyPassword should fail for wrong password")
	}
}

func TestHS256SignerRoundTrip(t *testing.T) {
	signer := NewHS256Signer("test-secret")
	token, err := signer.Sign(auth.Claims{Sub: "u1", Role: auth.RoleSeller, Iat: 1, Exp: 9999999999})
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	claims, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.Sub != "u1" || claims.Role != auth.RoleSeller {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, err := signer.Verify(token + "x"); err == nil {
		t.Fatal("tampered token should fail verification")
	}
}
