package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	publishingDomain "github.com/allisson/postflow/internal/publishing/domain"
)

// MockPostUseCase is a mock implementation of PostUseCase.
type MockPostUseCase struct {
	mock.Mock
}

// NewMockPostUseCase creates a MockPostUseCase that asserts its expectations on cleanup.
func NewMockPostUseCase(t *testing.T) *MockPostUseCase {
	m := &MockPostUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPostUseCase) post(args mock.Arguments) (*publishingDomain.Post, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*publishingDomain.Post), args.Error(1)
}

func (m *MockPostUseCase) target(args mock.Arguments) (*publishingDomain.PostTarget, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*publishingDomain.PostTarget), args.Error(1)
}

// Create mocks the Create method of PostUseCase.
func (m *MockPostUseCase) Create(
	ctx context.Context,
	workspaceID uuid.UUID,
	content publishingDomain.Content,
) (*publishingDomain.Post, error) {
	return m.post(m.Called(ctx, workspaceID, content))
}

// Get mocks the Get method of PostUseCase.
func (m *MockPostUseCase) Get(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	return m.post(m.Called(ctx, postID))
}

// ListTargets mocks the ListTargets method of PostUseCase.
func (m *MockPostUseCase) ListTargets(
	ctx context.Context,
	postID uuid.UUID,
) ([]*publishingDomain.PostTarget, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*publishingDomain.PostTarget), args.Error(1)
}

// EditContent mocks the EditContent method of PostUseCase.
func (m *MockPostUseCase) EditContent(
	ctx context.Context,
	postID uuid.UUID,
	content publishingDomain.Content,
) (*publishingDomain.Post, error) {
	return m.post(m.Called(ctx, postID, content))
}

// AddTarget mocks the AddTarget method of PostUseCase.
func (m *MockPostUseCase) AddTarget(
	ctx context.Context,
	postID, accountID uuid.UUID,
) (*publishingDomain.PostTarget, error) {
	return m.target(m.Called(ctx, postID, accountID))
}

// RemoveTarget mocks the RemoveTarget method of PostUseCase.
func (m *MockPostUseCase) RemoveTarget(ctx context.Context, postID, targetID uuid.UUID) error {
	args := m.Called(ctx, postID, targetID)
	return args.Error(0)
}

// Submit mocks the Submit method of PostUseCase.
func (m *MockPostUseCase) Submit(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	return m.post(m.Called(ctx, postID))
}

// Approve mocks the Approve method of PostUseCase.
func (m *MockPostUseCase) Approve(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	return m.post(m.Called(ctx, postID))
}

// Reject mocks the Reject method of PostUseCase.
func (m *MockPostUseCase) Reject(
	ctx context.Context,
	postID uuid.UUID,
	reason string,
) (*publishingDomain.Post, error) {
	return m.post(m.Called(ctx, postID, reason))
}

// Schedule mocks the Schedule method of PostUseCase.
func (m *MockPostUseCase) Schedule(
	ctx context.Context,
	postID uuid.UUID,
	at time.Time,
	timezone string,
) (*publishingDomain.Post, error) {
	return m.post(m.Called(ctx, postID, at, timezone))
}

// Reschedule mocks the Reschedule method of PostUseCase.
func (m *MockPostUseCase) Reschedule(
	ctx context.Context,
	postID uuid.UUID,
	at time.Time,
	timezone string,
) (*publishingDomain.Post, error) {
	return m.post(m.Called(ctx, postID, at, timezone))
}

// Cancel mocks the Cancel method of PostUseCase.
func (m *MockPostUseCase) Cancel(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	return m.post(m.Called(ctx, postID))
}

// PublishNow mocks the PublishNow method of PostUseCase.
func (m *MockPostUseCase) PublishNow(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	return m.post(m.Called(ctx, postID))
}

// RetryFailed mocks the RetryFailed method of PostUseCase.
func (m *MockPostUseCase) RetryFailed(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	return m.post(m.Called(ctx, postID))
}

// PublishPending mocks the PublishPending method of PostUseCase.
func (m *MockPostUseCase) PublishPending(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	return m.post(m.Called(ctx, postID))
}

// Delete mocks the Delete method of PostUseCase.
func (m *MockPostUseCase) Delete(ctx context.Context, postID uuid.UUID) error {
	args := m.Called(ctx, postID)
	return args.Error(0)
}

// UpdateTargetStatus mocks the UpdateTargetStatus method of PostUseCase.
func (m *MockPostUseCase) UpdateTargetStatus(
	ctx context.Context,
	targetID uuid.UUID,
	status publishingDomain.TargetStatus,
	attrs publishingDomain.TargetAttributes,
) (*publishingDomain.PostTarget, error) {
	return m.target(m.Called(ctx, targetID, status, attrs))
}
