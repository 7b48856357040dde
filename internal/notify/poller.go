// Package notify keeps a fresh snapshot of the remote notification feed via
// a fixed-interval background poll.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"call-dashboard/internal/upstream"
)

// Source is the slice of the upstream client the poller depends on.
type Source interface {
	Notifications(ctx context.Context) ([]upstream.Notification, error)
}

// Poller fetches the feed on a fixed interval and exposes the latest
// successful result. A failed tick keeps the previous snapshot; nothing is
// retried early. Stop must be called when the owning component is torn down
// so no orphaned timer is left behind.
type Poller struct {
	src      Source
	interval time.Duration
	log      *slog.Logger

	mu   sync.RWMutex
	last []upstream.Notification

	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(src Source, interval time.Duration, log *slog.Logger) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Poller{src: src, interval: interval, log: log}
}

// Start fires an immediate poll and then polls every interval until Stop is
// called or ctx is cancelled. Start is not safe to call twice.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		p.poll(ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.poll(ctx)
			}
		}
	}()
}

// Stop cancels the background poll and waits for it to exit.
func (p *Poller) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
}

// Snapshot returns a copy of the last successful fetch.
func (p *Poller) Snapshot() []upstream.Notification {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]upstream.Notification, len(p.last))
	copy(out, p.last)
	return out
}

func (p *Poller) poll(ctx context.Context) {
	notes, err := p.src.Notifications(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.log.Warn("notification poll failed", "err", err)
		}
		return
	}
	p.mu.Lock()
	p.last = notes
	p.mu.Unlock()
}
