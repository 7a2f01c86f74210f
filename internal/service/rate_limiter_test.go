package service

import (
	"fmt"
	"testing"
	"time"
)

func TestMemoryRateLimiter_AllowsUpToMax(t *testing.T) {
	l := NewMemoryRateLimiter(time.Minute, 2)

	if !l.Allow("1.2.3.4") || !l.Allow("1.2.3.4") {
		t.Fatalf("expected first two requests allowed")
	}
	if l.Allow("1.2.3.4") {
		t.Fatalf("expected third request rejected")
	}
	// Otra clave no comparte la cuota.
	if !l.Allow("5.6.7.8") {
		t.Fatalf("expected independent key allowed")
	}
}

func TestMemoryRateLimiter_SweepsExpiredKeys(t *testing.T) {
	l := NewMemoryRateLimiter(time.Minute, 5).(*memoryRateLimiter)
	current := time.Unix(1000, 0).UTC()
	l.now = func() time.Time { return current }

	for i := 0; i < 100; i++ {
		l.Allow(fmt.Sprintf("10.0.0.%d", i))
	}
	if len(l.hits) != 100 {
		t.Fatalf("expected 100 tracked keys, got %d", len(l.hits))
	}

	// Pasada la ventana, una clave nueva dispara la limpieza de todas las
	// claves vencidas aunque esas IPs jamas vuelvan.
	current = current.Add(2 * time.Minute)
	if !l.Allow("fresh") {
		t.Fatalf("expected fresh key allowed")
	}
	if len(l.hits) != 1 {
		t.Fatalf("expected only the fresh key tracked, got %d", len(l.hits))
	}
}

func TestMemoryRateLimiter_WindowExpires(t *testing.T) {
	l := NewMemoryRateLimiter(10*time.Millisecond, 1)

	if !l.Allow("k") {
		t.Fatalf("expected first request allowed")
	}
	if l.Allow("k") {
		t.Fatalf("expected second request rejected inside window")
	}
	time.Sleep(20 * time.Millisecond)
	if !l.Allow("k") {
		t.Fatalf("expected request allowed after window")
	}
}
