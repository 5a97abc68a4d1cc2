// Package mocks provides mock implementations of the publishing use case dependencies
// for testing.
package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	accountDomain "github.com/allisson/postflow/internal/account/domain"
	publishingDomain "github.com/allisson/postflow/internal/publishing/domain"
)

// MockPostRepository is a mock implementation of PostRepository.
type MockPostRepository struct {
	mock.Mock
}

// NewMockPostRepository creates a MockPostRepository that asserts its expectations on cleanup.
func NewMockPostRepository(t *testing.T) *MockPostRepository {
	m := &MockPostRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create mocks the Create method of PostRepository.
func (m *MockPostRepository) Create(ctx context.Context, post *publishingDomain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

// Get mocks the Get method of PostRepository.
func (m *MockPostRepository) Get(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*publishingDomain.Post), args.Error(1)
}

// GetForUpdate mocks the GetForUpdate method of PostRepository.
func (m *MockPostRepository) GetForUpdate(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*publishingDomain.Post), args.Error(1)
}

// Update mocks the Update method of PostRepository.
func (m *MockPostRepository) Update(ctx context.Context, post *publishingDomain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

// Delete mocks the Delete method of PostRepository.
func (m *MockPostRepository) Delete(ctx context.Context, postID uuid.UUID) error {
	args := m.Called(ctx, postID)
	return args.Error(0)
}

// ListDueScheduled mocks the ListDueScheduled method of PostRepository.
func (m *MockPostRepository) ListDueScheduled(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*publishingDomain.Post, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*publishingDomain.Post), args.Error(1)
}

// MockTargetRepository is a mock implementation of TargetRepository.
type MockTargetRepository struct {
	mock.Mock
}

// NewMockTargetRepository creates a MockTargetRepository that asserts its expectations on cleanup.
func NewMockTargetRepository(t *testing.T) *MockTargetRepository {
	m := &MockTargetRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create mocks the Create method of TargetRepository.
func (m *MockTargetRepository) Create(ctx context.Context, target *publishingDomain.PostTarget) error {
	args := m.Called(ctx, target)
	return args.Error(0)
}

// Get mocks the Get method of TargetRepository.
func (m *MockTargetRepository) Get(ctx context.Context, targetID uuid.UUID) (*publishingDomain.PostTarget, error) {
	args := m.Called(ctx, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*publishingDomain.PostTarget), args.Error(1)
}

// ListByPost mocks the ListByPost method of TargetRepository.
func (m *MockTargetRepository) ListByPost(
	ctx context.Context,
	postID uuid.UUID,
) ([]*publishingDomain.PostTarget, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*publishingDomain.PostTarget), args.Error(1)
}

// CountByPost mocks the CountByPost method of TargetRepository.
func (m *MockTargetRepository) CountByPost(ctx context.Context, postID uuid.UUID) (int, error) {
	args := m.Called(ctx, postID)
	return args.Int(0), args.Error(1)
}

// Update mocks the Update method of TargetRepository.
func (m *MockTargetRepository) Update(ctx context.Context, target *publishingDomain.PostTarget) error {
	args := m.Called(ctx, target)
	return args.Error(0)
}

// Delete mocks the Delete method of TargetRepository.
func (m *MockTargetRepository) Delete(ctx context.Context, targetID uuid.UUID) error {
	args := m.Called(ctx, targetID)
	return args.Error(0)
}

// DeleteByPost mocks the DeleteByPost method of TargetRepository.
func (m *MockTargetRepository) DeleteByPost(ctx context.Context, postID uuid.UUID) error {
	args := m.Called(ctx, postID)
	return args.Error(0)
}

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

// NewMockAccountRepository creates a MockAccountRepository that asserts its expectations on cleanup.
func NewMockAccountRepository(t *testing.T) *MockAccountRepository {
	m := &MockAccountRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Get mocks the Get method of AccountRepository.
func (m *MockAccountRepository) Get(
	ctx context.Context,
	accountID uuid.UUID,
) (*accountDomain.LinkedAccount, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accountDomain.LinkedAccount), args.Error(1)
}
