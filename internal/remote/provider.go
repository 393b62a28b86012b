package remote

import (
	"context"
	"errors"
	"time"

	"github.com/existflow/dayboard/internal/logger"
	"github.com/existflow/dayboard/internal/session"
)

// DefaultPollInterval is how often the provider re-checks the account
const DefaultPollInterval = 30 * time.Second

// Provider follows the logged in account by polling /me
type Provider struct {
	client   *Client
	interval time.Duration
}

// NewProvider creates a session provider. A non-positive interval uses
// DefaultPollInterval.
func NewProvider(c *Client, interval time.Duration) *Provider {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Provider{client: c, interval: interval}
}

// Current asks the server who the stored token belongs to. A rejected
// token means anonymous.
func (p *Provider) Current(ctx context.Context) (session.Identity, error) {
	if !p.client.IsLoggedIn() {
		return session.Anonymous, nil
	}
	me, err := p.client.Me(ctx)
	if errors.Is(err, ErrUnauthorized) {
		return session.Anonymous, nil
	}
	if err != nil {
		return session.Anonymous, err
	}
	return session.Identity{UserID: me.ID, Name: me.Username, Privileged: me.IsAdmin}, nil
}

// Watch polls the account until ctx is done. Poll failures keep the last
// known identity.
func (p *Provider) Watch(ctx context.Context) <-chan session.Identity {
	ch := make(chan session.Identity)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ident, err := p.Current(ctx)
				if err != nil {
					logger.Debug("Session poll failed", logger.F("error", err))
					continue
				}
				select {
				case ch <- ident:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
