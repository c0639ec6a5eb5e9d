package httpapi

import (
	"net/http"
	"testing"
)

func TestEndpointLimiterAllowsUpToBurstThenRejects(t *testing.T) {
	l := newEndpointLimiter(3)
	for i := 0; i < 3; i++ {
		if !l.allow("1.2.3.4") {
			t.Fatalf("request %d should have been allowed within burst", i)
		}
	}
	if l.allow("1.2.3.4") {
		t.Fatal("4th immediate request should have been rejected")
	}
}

func TestEndpointLimiterKeysAreIndependent(t *testing.T) {
	l := newEndpointLimiter(1)
	if !l.allow("a") {
		t.Fatal("expected first request from a to be allowed")
	}
	if !l.allow("b") {
		t.Fatal("expected first request from a different key to be allowed independently")
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	r, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	if got := clientIP(r); got != "203.0.113.5" {
		t.Fatalf("got %q, want 203.0.113.5", got)
	}
}

func TestClientIPFallsBackToRemoteAddr(t *testing.T) {
	r, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	if got := clientIP(r); got != "10.0.0.1" {
		t.Fatalf("got %q, want 10.0.0.1", got)
	}
}
