// Package platform provides the adapters that deliver post content to external social
// networks and the registry used to resolve them by platform code.
package platform

import (
	"context"
	"sync"

	accountDomain "github.com/allisson/postflow/internal/account/domain"
	"github.com/allisson/postflow/internal/errors"
	publishingDomain "github.com/allisson/postflow/internal/publishing/domain"
)

// Error codes reported by adapters through PublishOutcome.
const (
	ErrorCodeRateLimit      = "RATE_LIMIT"
	ErrorCodeUnauthorized   = "UNAUTHORIZED"
	ErrorCodeInvalidContent = "INVALID_CONTENT"
	ErrorCodePlatformError  = "PLATFORM_ERROR"
	ErrorCodeNetworkError   = "NETWORK_ERROR"
)

// ErrUnsupportedPlatform indicates no adapter is registered for the platform code.
var ErrUnsupportedPlatform = errors.Wrap(errors.ErrNotFound, "unsupported platform")

// Adapter publishes content to one external platform.
//
// Platform-level rejections are reported as a failed PublishOutcome. A returned error
// means the attempt itself broke (bug, misconfiguration) and is recorded as EXCEPTION.
type Adapter interface {
	Platform() string
	Publish(
		ctx context.Context,
		content publishingDomain.Content,
		credentials *accountDomain.Credentials,
	) (publishingDomain.PublishOutcome, error)
}

// Registry maps platform codes to adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates a Registry holding the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds or replaces the adapter for its platform code.
func (r *Registry) Register(adapter Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[adapter.Platform()] = adapter
}

// Adapter returns the adapter registered for platform.
func (r *Registry) Adapter(platform string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, ok := r.adapters[platform]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedPlatform, "%q", platform)
	}
	return adapter, nil
}

// Platforms returns the registered platform codes.
func (r *Registry) Platforms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	platforms := make([]string, 0, len(r.adapters))
	for p := range r.adapters {
		platforms = append(platforms, p)
	}
	return platforms
}
