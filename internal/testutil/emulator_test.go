package testutil

import (
	"net/http/httptest"
	"testing"
)

func TestRequireEmulator_Skips(t *testing.T) {
	tests := []struct {
		name string
		host string
	}{
		{"no host", ""},
		{"unreachable", "localhost:1"},
	}
	for _, tt := range tests {
		t.Setenv(StorageEmulator, tt.host)

		var reached bool
		t.Run(tt.name, func(t *testing.T) {
			RequireEmulator(t, StorageEmulator)
			reached = true
		})
		if reached {
			t.Fatalf("%s: expected the subtest to be skipped", tt.name)
		}
	}
}

func TestRequireEmulator_Reachable(t *testing.T) {
	ts := httptest.NewServer(nil)
	defer ts.Close()

	addr := ts.Listener.Addr().String()
	t.Setenv(FirestoreEmulator, addr)

	var got string
	t.Run("sub", func(t *testing.T) {
		got = RequireEmulator(t, FirestoreEmulator)
		RequireFirestore(t)
	})
	if got != addr {
		t.Fatalf("expected %q, got %q", addr, got)
	}
}
