package handlers

import (
	"strings"
	"testing"
)

func TestWithQueryParam(t *testing.T) {
	got := withQueryParam("https://shop.example/return", "state", "ab+c")
	if got != "https://shop.example/return?state=ab%2Bc" {
		t.Fatalf("unexpected url: %s", got)
	}
	got = withQueryParam("https://shop.example/return?x=1", "state", "tok")
	if got != "https://shop.example/return?x=1&state=tok" {
		t.Fatalf("unexpected url: %s", got)
	}
}

func TestNewReturnTokenIsURLSafe(t *testing.T) {
	tok := newReturnToken()
	if len(tok) == 0 {
		t.Fatal("empty token")
	}
	if strings.ContainsAny(tok, "+/=") {
		t.Fatalf("token not url-safe: %s", tok)
	}
	if tok == newReturnToken() {
		t.Fatal("tokens should not repeat")
	}
}
