package cache

import (
	"errors"
	"fmt"
	"testing"
)

func TestGetOrComputeInvokesOncePerKey(t *testing.T) {
	m := NewMemo(10)

	calls := 0
	compute := func() (string, error) {
		calls++
		return "extracted text", nil
	}

	for i := 0; i < 3; i++ {
		got, err := m.GetOrCompute("key-a", compute)
		if err != nil {
			t.Fatalf("GetOrCompute failed: %v", err)
		}
		if got != "extracted text" {
			t.Errorf("got %q, want %q", got, "extracted text")
		}
	}

	if calls != 1 {
		t.Errorf("compute invoked %d times, want 1", calls)
	}
}

func TestDifferentKeysComputeSeparately(t *testing.T) {
	m := NewMemo(10)

	calls := 0
	compute := func() (string, error) {
		calls++
		return fmt.Sprintf("result-%d", calls), nil
	}

	a, _ := m.GetOrCompute("key-a", compute)
	b, _ := m.GetOrCompute("key-b", compute)

	if calls != 2 {
		t.Errorf("compute invoked %d times, want 2", calls)
	}
	if a == b {
		t.Errorf("distinct keys returned the same value %q", a)
	}
}

func TestFailedComputeNotCached(t *testing.T) {
	m := NewMemo(10)

	boom := errors.New("parse failure")
	calls := 0

	_, err := m.GetOrCompute("key-a", func() (string, error) {
		calls++
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected compute error, got %v", err)
	}

	got, err := m.GetOrCompute("key-a", func() (string, error) {
		calls++
		return "recovered", nil
	})
	if err != nil {
		t.Fatalf("GetOrCompute failed: %v", err)
	}
	if got != "recovered" {
		t.Errorf("got %q, want %q", got, "recovered")
	}
	if calls != 2 {
		t.Errorf("compute invoked %d times, want 2", calls)
	}
}

func TestOldestEvictedBeyondCapacity(t *testing.T) {
	m := NewMemo(3)

	for i := 0; i < 4; i++ {
		key := fmt.Sprintf("key-%d", i)
		value := fmt.Sprintf("value-%d", i)
		if _, err := m.GetOrCompute(key, func() (string, error) { return value, nil }); err != nil {
			t.Fatalf("GetOrCompute failed: %v", err)
		}
	}

	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}
	if _, ok := m.Get("key-0"); ok {
		t.Error("oldest entry key-0 should have been evicted")
	}
	for i := 1; i < 4; i++ {
		if _, ok := m.Get(fmt.Sprintf("key-%d", i)); !ok {
			t.Errorf("key-%d should still be cached", i)
		}
	}
}
