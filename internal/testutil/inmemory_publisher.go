package testutil

import (
	"context"
	"sync"

	"github.com/beautyops/beautyops/internal/types"
	webhookPublisher "github.com/beautyops/beautyops/internal/webhook/publisher"
)

var _ webhookPublisher.WebhookPublisher = (*InMemoryWebhookPublisher)(nil)

// InMemoryWebhookPublisher records published notifications
type InMemoryWebhookPublisher struct {
	mu     sync.Mutex
	events []*types.WebhookEvent
	// Err, when set, fails every publish
	Err error
}

func NewInMemoryWebhookPublisher() *InMemoryWebhookPublisher {
	return &InMemoryWebhookPublisher{}
}

func (p *InMemoryWebhookPublisher) PublishWebhook(ctx context.Context, event *types.WebhookEvent) error {
	if p.Err != nil {
		return p.Err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *InMemoryWebhookPublisher) Close() error {
	return nil
}

// Events returns the published notifications in order
func (p *InMemoryWebhookPublisher) Events() []*types.WebhookEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*types.WebhookEvent(nil), p.events...)
}

// EventNames returns the names of the published notifications in order
func (p *InMemoryWebhookPublisher) EventNames() []string {
	events := p.Events()
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.EventName)
	}
	return names
}

func (p *InMemoryWebhookPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
