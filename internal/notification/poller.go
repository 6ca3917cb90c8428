package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultPollInterval matches the client's notification refresh cadence.
const DefaultPollInterval = 30 * time.Second

// Refresher is the part of State the poller drives.
type Refresher interface {
	Refresh(ctx context.Context, recipient string) error
}

// Poller refreshes one recipient's notifications on a fixed interval. Stop cancels the poll
// in flight, so a late response never reaches the state.
type Poller struct {
	state     Refresher
	recipient string
	interval  time.Duration
	logger    *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(state Refresher, recipient string, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		state:     state,
		recipient: recipient,
		interval:  interval,
		logger:    logger,
	}
}

// Start loads immediately and then on every tick until Stop or ctx is done.
// Starting a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
}

func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	if err := p.state.Refresh(ctx, p.recipient); err != nil && ctx.Err() == nil {
		p.logger.Warn("notification poll failed", "recipient", p.recipient, "error", err)
	}
}
