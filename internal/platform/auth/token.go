package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
)

// AdminUID identifies the editor behind the shared admin token.
const AdminUID = "admin"

// TokenVerifier accepts a single shared admin token.
type TokenVerifier struct {
	digest [sha256.Size]byte
	empty  bool
}

// NewTokenVerifier creates a verifier for token. An empty token rejects everything.
func NewTokenVerifier(token string) *TokenVerifier {
	return &TokenVerifier{digest: sha256.Sum256([]byte(token)), empty: token == ""}
}

func (v *TokenVerifier) Verify(_ context.Context, token string) (*User, error) {
	if v.empty {
		return nil, ErrInvalidToken
	}
	got := sha256.Sum256([]byte(token))
	if subtle.ConstantTimeCompare(got[:], v.digest[:]) != 1 {
		return nil, ErrInvalidToken
	}
	return &User{UID: AdminUID}, nil
}
