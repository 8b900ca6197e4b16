package auth

import "context"

// MockVerifier returns a fixed user or error. Intended for tests.
type MockVerifier struct {
	User  *User
	Error error
}

func (m *MockVerifier) Verify(context.Context, string) (*User, error) {
	if m.Error != nil {
		return nil, m.Error
	}
	return m.User, nil
}

// TestUser returns a user for handler tests.
func TestUser() *User {
	return &User{UID: "editor-123", Email: "editor@example.com"}
}
