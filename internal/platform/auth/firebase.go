package auth

import (
	"context"
	"fmt"

	fbauth "firebase.google.com/go/v4/auth"
)

// FirebaseVerifier verifies Firebase ID tokens, including revocation.
type FirebaseVerifier struct {
	client      *fbauth.Client
	editorClaim string
}

// NewFirebaseVerifier creates a verifier on client. With a non-empty
// editorClaim only users whose token carries that custom claim set to true
// are admitted; otherwise any signed-in user is.
func NewFirebaseVerifier(client *fbauth.Client, editorClaim string) *FirebaseVerifier {
	return &FirebaseVerifier{client: client, editorClaim: editorClaim}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*User, error) {
	decoded, err := v.client.VerifyIDTokenAndCheckRevoked(ctx, token)
	if err != nil {
		return nil, mapFirebaseError(err)
	}

	if v.editorClaim != "" {
		if ok, _ := decoded.Claims[v.editorClaim].(bool); !ok {
			return nil, fmt.Errorf("%w: uid %s lacks claim %q", ErrNotEditor, decoded.UID, v.editorClaim)
		}
	}

	user := &User{UID: decoded.UID}
	if email, ok := decoded.Claims["email"].(string); ok {
		user.Email = email
	}
	return user, nil
}

func mapFirebaseError(err error) error {
	switch {
	case fbauth.IsIDTokenExpired(err):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case fbauth.IsIDTokenRevoked(err):
		return fmt.Errorf("%w: %v", ErrTokenRevoked, err)
	case fbauth.IsUserDisabled(err):
		return fmt.Errorf("%w: %v", ErrUserDisabled, err)
	case fbauth.IsCertificateFetchFailed(err):
		return fmt.Errorf("%w: %v", ErrCertificateFetch, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
}
