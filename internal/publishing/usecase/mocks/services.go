package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	accountDomain "github.com/allisson/postflow/internal/account/domain"
	"github.com/allisson/postflow/internal/lock"
	"github.com/allisson/postflow/internal/platform"
	publishingDomain "github.com/allisson/postflow/internal/publishing/domain"
)

// MockAccountHealthGate is a mock implementation of AccountHealthGate.
type MockAccountHealthGate struct {
	mock.Mock
}

// NewMockAccountHealthGate creates a MockAccountHealthGate that asserts its expectations on cleanup.
func NewMockAccountHealthGate(t *testing.T) *MockAccountHealthGate {
	m := &MockAccountHealthGate{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Check mocks the Check method of AccountHealthGate.
func (m *MockAccountHealthGate) Check(ctx context.Context, accountID uuid.UUID) (accountDomain.HealthVerdict, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(accountDomain.HealthVerdict), args.Error(1)
}

// MarkTokenExpired mocks the MarkTokenExpired method of AccountHealthGate.
func (m *MockAccountHealthGate) MarkTokenExpired(ctx context.Context, accountID uuid.UUID) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

// MockCredentialsProvider is a mock implementation of CredentialsProvider.
type MockCredentialsProvider struct {
	mock.Mock
}

// NewMockCredentialsProvider creates a MockCredentialsProvider that asserts its expectations on cleanup.
func NewMockCredentialsProvider(t *testing.T) *MockCredentialsProvider {
	m := &MockCredentialsProvider{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Credentials mocks the Credentials method of CredentialsProvider.
func (m *MockCredentialsProvider) Credentials(
	ctx context.Context,
	accountID uuid.UUID,
) (*accountDomain.Credentials, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accountDomain.Credentials), args.Error(1)
}

// MockAdapterResolver is a mock implementation of AdapterResolver.
type MockAdapterResolver struct {
	mock.Mock
}

// NewMockAdapterResolver creates a MockAdapterResolver that asserts its expectations on cleanup.
func NewMockAdapterResolver(t *testing.T) *MockAdapterResolver {
	m := &MockAdapterResolver{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Adapter mocks the Adapter method of AdapterResolver.
func (m *MockAdapterResolver) Adapter(platformCode string) (platform.Adapter, error) {
	args := m.Called(platformCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(platform.Adapter), args.Error(1)
}

// MockAdapter is a mock implementation of platform.Adapter.
type MockAdapter struct {
	mock.Mock
}

// NewMockAdapter creates a MockAdapter that asserts its expectations on cleanup.
func NewMockAdapter(t *testing.T) *MockAdapter {
	m := &MockAdapter{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Platform mocks the Platform method of Adapter.
func (m *MockAdapter) Platform() string {
	args := m.Called()
	return args.String(0)
}

// Publish mocks the Publish method of Adapter.
func (m *MockAdapter) Publish(
	ctx context.Context,
	content publishingDomain.Content,
	credentials *accountDomain.Credentials,
) (publishingDomain.PublishOutcome, error) {
	args := m.Called(ctx, content, credentials)
	return args.Get(0).(publishingDomain.PublishOutcome), args.Error(1)
}

// MockLocker is a mock implementation of Locker.
type MockLocker struct {
	mock.Mock
}

// NewMockLocker creates a MockLocker that asserts its expectations on cleanup.
func NewMockLocker(t *testing.T) *MockLocker {
	m := &MockLocker{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Acquire mocks the Acquire method of Locker.
func (m *MockLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (lock.ReleaseFunc, error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(lock.ReleaseFunc), args.Error(1)
}

// MockDispatcher is a mock implementation of Dispatcher.
type MockDispatcher struct {
	mock.Mock
}

// NewMockDispatcher creates a MockDispatcher that asserts its expectations on cleanup.
func NewMockDispatcher(t *testing.T) *MockDispatcher {
	m := &MockDispatcher{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Execute mocks the Execute method of Dispatcher.
func (m *MockDispatcher) Execute(
	ctx context.Context,
	post *publishingDomain.Post,
	targets []*publishingDomain.PostTarget,
) error {
	args := m.Called(ctx, post, targets)
	return args.Error(0)
}
