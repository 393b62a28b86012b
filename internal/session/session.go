// Package session tracks who is signed in and whether they may edit.
// It is created and torn down explicitly by the command that owns it.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/existflow/dayboard/internal/logger"
)

// Identity is the signed in user as seen by the client
type Identity struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Privileged bool   `json:"privileged"`
}

// Anonymous is the identity of a visitor
var Anonymous = Identity{}

// Provider is an authentication source
type Provider interface {
	// Current returns the identity right now
	Current(ctx context.Context) (Identity, error)
	// Watch streams identity changes until ctx is done
	Watch(ctx context.Context) <-chan Identity
}

// ErrNotInitialized is returned when the session is used before Initialize
var ErrNotInitialized = errors.New("session not initialized")

// Session holds the latest identity from a provider
type Session struct {
	provider Provider

	mu       sync.RWMutex
	ident    Identity
	ready    bool
	cancel   context.CancelFunc
	done     chan struct{}
	onChange []func(Identity)
}

// New creates a session for provider
func New(provider Provider) *Session {
	return &Session{provider: provider}
}

// Initialize loads the current identity and follows later changes
func (s *Session) Initialize(ctx context.Context) error {
	ident, err := s.provider.Current(ctx)
	if err != nil {
		return err
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.ident = ident
	s.ready = true
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	updates := s.provider.Watch(watchCtx)
	go func() {
		defer close(done)
		for {
			select {
			case <-watchCtx.Done():
				return
			case next, ok := <-updates:
				if !ok {
					return
				}
				s.set(next)
			}
		}
	}()
	return nil
}

func (s *Session) set(next Identity) {
	s.mu.Lock()
	prev := s.ident
	s.ident = next
	listeners := append([]func(Identity){}, s.onChange...)
	s.mu.Unlock()

	if prev == next {
		return
	}
	logger.Debug("Session changed", logger.F("user", next.Name), logger.F("privileged", next.Privileged))
	for _, fn := range listeners {
		fn(next)
	}
}

// Teardown stops following the provider and forgets the identity
func (s *Session) Teardown() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.ident = Anonymous
	s.ready = false
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// OnChange registers fn to be called when the identity changes
func (s *Session) OnChange(fn func(Identity)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// Identity returns the current identity
func (s *Session) Identity() (Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return Anonymous, ErrNotInitialized
	}
	return s.ident, nil
}

// IsPrivileged reports whether the current user may change data
func (s *Session) IsPrivileged() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready && s.ident.Privileged
}

// Static is a provider whose identity never changes. The local store uses
// it with a privileged identity.
type Static Identity

// Current returns the fixed identity
func (p Static) Current(context.Context) (Identity, error) {
	return Identity(p), nil
}

// Watch returns a channel that closes when ctx is done
func (p Static) Watch(ctx context.Context) <-chan Identity {
	ch := make(chan Identity)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}
