package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"

	"github.com/janisto/echo-cards/internal/testutil"
)

const emulatorPassword = "password123"

type emulatorAccount struct {
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
	LocalID string `json:"localId"`
}

// emulatorAuth starts a Firebase auth client against the emulator, or skips.
func emulatorAuth(t *testing.T) (string, *fbauth.Client) {
	t.Helper()
	host := testutil.RequireEmulator(t, testutil.AuthEmulator)
	t.Setenv(testutil.AuthEmulator, host)

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: testutil.EmulatorProjectID})
	if err != nil {
		t.Fatalf("failed to create firebase app: %v", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		t.Fatalf("failed to get auth client: %v", err)
	}
	return host, client
}

// identityToolkit calls an emulator accounts endpoint with a password body.
func identityToolkit(t *testing.T, host, method, email string) emulatorAccount {
	t.Helper()
	endpoint := fmt.Sprintf("http://%s/identitytoolkit.googleapis.com/v1/accounts:%s?key=fake-api-key", host, method)
	body := fmt.Sprintf(`{"email":%q,"password":%q,"returnSecureToken":true}`, email, emulatorPassword)
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, endpoint, strings.NewReader(body)) //nolint:gosec // emulator URL
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("emulator %s failed: %v", method, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("emulator %s returned %d", method, resp.StatusCode)
	}

	var account emulatorAccount
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		t.Fatalf("failed to decode emulator response: %v", err)
	}
	if account.IDToken == "" {
		t.Fatalf("emulator %s returned an empty ID token", method)
	}
	return account
}

func signUpEditor(t *testing.T, host string) emulatorAccount {
	t.Helper()
	return identityToolkit(t, host, "signUp", fmt.Sprintf("editor-%d@example.com", time.Now().UnixNano()))
}

func TestFirebaseVerifier_ValidToken(t *testing.T) {
	host, client := emulatorAuth(t)
	account := signUpEditor(t, host)

	user, err := NewFirebaseVerifier(client, "").Verify(context.Background(), account.IDToken)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if user.UID != account.LocalID {
		t.Fatalf("expected uid %q, got %q", account.LocalID, user.UID)
	}
	if user.Email == "" {
		t.Fatal("expected the token email on the user")
	}
}

func TestFirebaseVerifier_InvalidToken(t *testing.T) {
	_, client := emulatorAuth(t)

	_, err := NewFirebaseVerifier(client, "").Verify(context.Background(), "not-a-valid-token")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestFirebaseVerifier_DisabledUser(t *testing.T) {
	host, client := emulatorAuth(t)
	ctx := context.Background()
	account := signUpEditor(t, host)

	if _, err := client.UpdateUser(ctx, account.LocalID, (&fbauth.UserToUpdate{}).Disabled(true)); err != nil {
		t.Fatalf("failed to disable user: %v", err)
	}

	_, err := NewFirebaseVerifier(client, "").Verify(ctx, account.IDToken)
	if !errors.Is(err, ErrUserDisabled) && !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrUserDisabled or ErrInvalidToken, got %v", err)
	}
}

func TestFirebaseVerifier_EditorClaim(t *testing.T) {
	host, client := emulatorAuth(t)
	ctx := context.Background()
	account := signUpEditor(t, host)
	verifier := NewFirebaseVerifier(client, "editor")

	if _, err := verifier.Verify(ctx, account.IDToken); !errors.Is(err, ErrNotEditor) {
		t.Fatalf("expected ErrNotEditor without the claim, got %v", err)
	}

	if err := client.SetCustomUserClaims(ctx, account.LocalID, map[string]any{"editor": true}); err != nil {
		t.Fatalf("failed to set claims: %v", err)
	}
	// Claims only appear in tokens minted after they are set.
	fresh := identityToolkit(t, host, "signInWithPassword", account.Email)

	user, err := verifier.Verify(ctx, fresh.IDToken)
	if err != nil {
		t.Fatalf("expected editor to verify, got %v", err)
	}
	if user.UID != account.LocalID {
		t.Fatalf("expected uid %q, got %q", account.LocalID, user.UID)
	}
}
