// Package testutil gates integration tests on the Firebase emulators.
package testutil

import (
	"context"
	"net"
	"os"
	"testing"
	"time"
)

// Emulator host variables read by the Google client libraries.
const (
	FirestoreEmulator = "FIRESTORE_EMULATOR_HOST"
	StorageEmulator   = "FIREBASE_STORAGE_EMULATOR_HOST"
	AuthEmulator      = "FIREBASE_AUTH_EMULATOR_HOST"
)

// EmulatorProjectID returns the project ID used for emulator tests.
const EmulatorProjectID = "demo-test-project"

// RequireEmulator skips the test unless the emulator whose address is in
// the env variable accepts TCP connections. It returns the address.
func RequireEmulator(t *testing.T, env string) string {
	t.Helper()

	host := os.Getenv(env)
	if host == "" {
		t.Skipf("%s not set; skipping emulator test", env)
	}

	d := net.Dialer{Timeout: 2 * time.Second}
	conn, err := d.DialContext(context.Background(), "tcp", host)
	if err != nil {
		t.Skipf("emulator not reachable at %s: %v", host, err)
	}
	_ = conn.Close()
	return host
}

// RequireFirestore skips the test unless the Firestore emulator is running.
func RequireFirestore(t *testing.T) {
	t.Helper()
	RequireEmulator(t, FirestoreEmulator)
}
