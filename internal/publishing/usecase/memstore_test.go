package usecase

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	accountDomain "github.com/allisson/postflow/internal/account/domain"
	publishingDomain "github.com/allisson/postflow/internal/publishing/domain"
)

// memStore is an in-memory implementation of PostRepository, TargetRepository and
// database.TxManager. WithTx holds a single mutex for the whole transaction, standing in
// for the post row lock, and rolls back every change when fn fails.
type memStore struct {
	txMu    sync.Mutex
	mu      sync.Mutex
	posts   map[uuid.UUID]publishingDomain.Post
	targets map[uuid.UUID]publishingDomain.PostTarget
	seq     map[uuid.UUID]int
	next    int
}

func newMemStore() *memStore {
	return &memStore{
		posts:   make(map[uuid.UUID]publishingDomain.Post),
		targets: make(map[uuid.UUID]publishingDomain.PostTarget),
		seq:     make(map[uuid.UUID]int),
	}
}

func (s *memStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	posts := maps.Clone(s.posts)
	targets := maps.Clone(s.targets)
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.posts = posts
		s.targets = targets
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) Create(ctx context.Context, post *publishingDomain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[post.ID] = *post
	return nil
}

func (s *memStore) Get(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[postID]
	if !ok {
		return nil, publishingDomain.ErrPostNotFound
	}
	return &post, nil
}

func (s *memStore) GetForUpdate(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	return s.Get(ctx, postID)
}

func (s *memStore) Update(ctx context.Context, post *publishingDomain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[post.ID]; !ok {
		return publishingDomain.ErrPostNotFound
	}
	s.posts[post.ID] = *post
	return nil
}

func (s *memStore) Delete(ctx context.Context, postID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[postID]; !ok {
		return publishingDomain.ErrPostNotFound
	}
	delete(s.posts, postID)
	return nil
}

func (s *memStore) ListDueScheduled(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*publishingDomain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := make([]*publishingDomain.Post, 0)
	for _, post := range s.posts {
		if post.Status == publishingDomain.PostStatusScheduled && !post.ScheduledAt.After(now) {
			due = append(due, &post)
		}
	}
	slices.SortFunc(due, func(a, b *publishingDomain.Post) int {
		return a.ScheduledAt.Compare(*b.ScheduledAt)
	})
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *memStore) post(id uuid.UUID) publishingDomain.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.posts[id]
}

// targetStore exposes the target half of memStore, whose method names collide with the
// post repository.
type targetStore struct {
	*memStore
}

func (s targetStore) Create(ctx context.Context, target *publishingDomain.PostTarget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.targets {
		if t.PostID == target.PostID && t.AccountID == target.AccountID {
			return publishingDomain.ErrDuplicateTarget
		}
	}
	s.targets[target.ID] = *target
	s.next++
	s.seq[target.ID] = s.next
	return nil
}

func (s targetStore) Get(ctx context.Context, targetID uuid.UUID) (*publishingDomain.PostTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, ok := s.targets[targetID]
	if !ok {
		return nil, publishingDomain.ErrTargetNotFound
	}
	return &target, nil
}

func (s targetStore) ListByPost(ctx context.Context, postID uuid.UUID) ([]*publishingDomain.PostTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	targets := make([]*publishingDomain.PostTarget, 0)
	for _, t := range s.targets {
		if t.PostID == postID {
			targets = append(targets, &t)
		}
	}
	slices.SortFunc(targets, func(a, b *publishingDomain.PostTarget) int {
		return s.seq[a.ID] - s.seq[b.ID]
	})
	return targets, nil
}

func (s targetStore) CountByPost(ctx context.Context, postID uuid.UUID) (int, error) {
	targets, err := s.ListByPost(ctx, postID)
	return len(targets), err
}

func (s targetStore) Update(ctx context.Context, target *publishingDomain.PostTarget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.targets[target.ID]; !ok {
		return publishingDomain.ErrTargetNotFound
	}
	s.targets[target.ID] = *target
	return nil
}

func (s targetStore) Delete(ctx context.Context, targetID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.targets[targetID]; !ok {
		return publishingDomain.ErrTargetNotFound
	}
	delete(s.targets, targetID)
	return nil
}

func (s targetStore) DeleteByPost(ctx context.Context, postID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.targets {
		if t.PostID == postID {
			delete(s.targets, id)
		}
	}
	return nil
}

func (s targetStore) target(id uuid.UUID) publishingDomain.PostTarget {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.targets[id]
}

// memAccounts is an in-memory AccountRepository and AccountHealthGate.
type memAccounts struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]accountDomain.LinkedAccount
	expired  []uuid.UUID
}

func newMemAccounts(accounts ...accountDomain.LinkedAccount) *memAccounts {
	m := &memAccounts{accounts: make(map[uuid.UUID]accountDomain.LinkedAccount)}
	for _, a := range accounts {
		m.accounts[a.ID] = a
	}
	return m
}

func (m *memAccounts) Get(ctx context.Context, accountID uuid.UUID) (*accountDomain.LinkedAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[accountID]
	if !ok {
		return nil, accountDomain.ErrAccountNotFound
	}
	return &account, nil
}

func (m *memAccounts) Check(ctx context.Context, accountID uuid.UUID) (accountDomain.HealthVerdict, error) {
	account, err := m.Get(ctx, accountID)
	if err != nil {
		return accountDomain.VerdictUnavailable, nil
	}
	return account.Evaluate(time.Now().UTC()), nil
}

func (m *memAccounts) MarkTokenExpired(ctx context.Context, accountID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account := m.accounts[accountID]
	account.Status = accountDomain.AccountStatusTokenExpired
	m.accounts[accountID] = account
	m.expired = append(m.expired, accountID)
	return nil
}

func (m *memAccounts) Credentials(ctx context.Context, accountID uuid.UUID) (*accountDomain.Credentials, error) {
	return &accountDomain.Credentials{AccountID: accountID, AccessToken: "token"}, nil
}
