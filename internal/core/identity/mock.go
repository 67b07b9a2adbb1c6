package identity

import (
	"context"
	"sync"
)

// DefaultMockUser is the user returned by a MockProvider created without one.
var DefaultMockUser = User{
	Username:    "dev.user",
	Email:       "dev.user@example.local",
	DisplayName: "Dev User",
	Department:  "Engineering",
	Domain:      "EXAMPLE.LOCAL",
	Groups:      []string{"kpi-users"},
}

// MockProvider returns a fixed user. It is used when the security service is
// not reachable from the development machine.
type MockProvider struct {
	mu      sync.Mutex
	user    User
	err     error
	logouts int
}

var _ Provider = (*MockProvider)(nil)

// NewMockProvider creates a provider that always returns user.
func NewMockProvider(user User) *MockProvider {
	return &MockProvider{user: user}
}

// Fail makes subsequent CurrentUser calls return err. A nil err restores
// normal behavior.
func (m *MockProvider) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockProvider) CurrentUser(context.Context) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return User{}, m.err
	}
	return m.user, nil
}

func (m *MockProvider) Available(context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err == nil
}

func (m *MockProvider) Logout(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logouts++
	return nil
}

// Logouts returns how many times Logout was called.
func (m *MockProvider) Logouts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logouts
}
