package ws

import (
	"testing"
	"time"
)

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("A") {
			t.Fatalf("attempt %d should pass", i)
		}
	}
	if rl.Allow("A") {
		t.Error("fourth attempt inside the window should be blocked")
	}
	if !rl.Allow("B") {
		t.Error("limits are per session")
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)

	if !rl.Allow("A") {
		t.Fatal("first attempt should pass")
	}
	if rl.Allow("A") {
		t.Fatal("second immediate attempt should be blocked")
	}
	time.Sleep(15 * time.Millisecond)
	if !rl.Allow("A") {
		t.Error("attempt after the window should pass")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Second)
	for i := 0; i < 100; i++ {
		if !rl.Allow("A") {
			t.Fatal("zero limit disables limiting")
		}
	}
}
