package notification_test

import (
	"context"
	"sync"
	"time"

	"github.com/frahmantamala/leave-management/internal/notification"
	"github.com/frahmantamala/leave-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type countingRefresher struct {
	mu         sync.Mutex
	recipients []string
	lastCtx    context.Context
}

func (c *countingRefresher) Refresh(ctx context.Context, recipient string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recipients = append(c.recipients, recipient)
	c.lastCtx = ctx
	return nil
}

func (c *countingRefresher) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.recipients)
}

func (c *countingRefresher) LastContext() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastCtx
}

var _ = Describe("Notification Poller", func() {
	var refresher *countingRefresher

	BeforeEach(func() {
		refresher = &countingRefresher{}
	})

	It("should load immediately and then on every tick", func() {
		poller := notification.NewPoller(refresher, john, 20*time.Millisecond, logger.Discard())
		poller.Start(context.Background())
		DeferCleanup(poller.Stop)

		Eventually(refresher.Calls).Should(BeNumerically(">=", 1))
		Eventually(refresher.Calls, time.Second).Should(BeNumerically(">=", 3))
		Expect(refresher.recipients[0]).To(Equal(john))
	})

	It("should stop polling and cancel the context on Stop", func() {
		poller := notification.NewPoller(refresher, john, 10*time.Millisecond, logger.Discard())
		poller.Start(context.Background())
		Eventually(refresher.Calls).Should(BeNumerically(">=", 1))

		poller.Stop()
		calls := refresher.Calls()

		Expect(refresher.LastContext().Err()).To(MatchError(context.Canceled))
		Consistently(refresher.Calls, 60*time.Millisecond).Should(Equal(calls))
	})

	It("should ignore a second Start and tolerate Stop without Start", func() {
		poller := notification.NewPoller(refresher, john, time.Hour, logger.Discard())
		poller.Stop()

		poller.Start(context.Background())
		poller.Start(context.Background())
		Eventually(refresher.Calls).Should(Equal(1))
		Consistently(refresher.Calls, 50*time.Millisecond).Should(Equal(1))
		poller.Stop()
	})

	It("should fall back to the default interval", func() {
		poller := notification.NewPoller(refresher, john, 0, logger.Discard())
		poller.Start(context.Background())
		defer poller.Stop()

		Eventually(refresher.Calls).Should(Equal(1))
		Consistently(refresher.Calls, 50*time.Millisecond).Should(Equal(1))
	})
})
