package notification_test

import (
	"context"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/notification"
	"github.com/frahmantamala/leave-management/internal/notification/memory"
	"github.com/frahmantamala/leave-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const john = "john@example.com"

// gatedNotifications holds ListByRecipient until release is closed.
type gatedNotifications struct {
	notification.ServiceAPI
	release chan struct{}
}

func (g *gatedNotifications) ListByRecipient(ctx context.Context, recipient string) ([]*notification.Notification, error) {
	<-g.release
	return g.ServiceAPI.ListByRecipient(ctx, recipient)
}

var _ = Describe("Notification State", func() {
	var (
		store *memory.NotificationStore
		state *notification.State
		ctx   context.Context
	)

	BeforeEach(func() {
		store = memory.NewSeededNotificationStore()
		state = notification.NewState(notification.NewService(store, logger.Discard()), logger.Discard())
		ctx = context.Background()
	})

	It("should report zero for a recipient that was never refreshed", func() {
		Expect(state.UnreadCount(john)).To(Equal(0))
		Expect(state.Notifications()).To(BeEmpty())
	})

	Describe("Refresh", func() {
		It("should load the recipient's notifications and count unread ones", func() {
			Expect(state.Refresh(ctx, john)).To(Succeed())

			Expect(state.UserNotifications(john)).To(HaveLen(2))
			Expect(state.UnreadCount(john)).To(Equal(1))
		})

		It("should keep the collection and record a message on failure", func() {
			failing := notification.NewState(notification.NewService(&MockBackend{
				failError: internal.NewServerError("Service Unavailable", 503),
			}, logger.Discard()), logger.Discard())

			Expect(failing.Refresh(ctx, john)).NotTo(Succeed())
			Expect(failing.Err()).To(Equal("Service Unavailable"))
			Expect(failing.IsLoading()).To(BeFalse())
		})

		It("should discard results for a cancelled context", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			Expect(state.Refresh(cancelled, john)).To(MatchError(context.Canceled))
			Expect(state.Notifications()).To(BeEmpty())
		})

		It("should still load for a live caller sharing a fetch with a cancelled one", func() {
			gated := &gatedNotifications{ServiceAPI: notification.NewService(store, logger.Discard()), release: make(chan struct{})}
			shared := notification.NewState(gated, logger.Discard())
			cctx, cancel := context.WithCancel(ctx)
			first := make(chan error, 1)
			second := make(chan error, 1)

			go func() { first <- shared.Refresh(cctx, john) }()
			Eventually(shared.IsLoading).Should(BeTrue())
			go func() { second <- shared.Refresh(context.Background(), john) }()
			time.Sleep(50 * time.Millisecond)

			cancel()
			Eventually(first).Should(Receive(MatchError(context.Canceled)))
			close(gated.release)
			Eventually(second).Should(Receive(BeNil()))

			Expect(shared.UserNotifications(john)).To(HaveLen(2))
			Expect(shared.UnreadCount(john)).To(Equal(1))
			Expect(shared.IsLoading()).To(BeFalse())
		})
	})

	Describe("Send", func() {
		It("should append the notification and bump a known counter", func() {
			Expect(state.Refresh(ctx, john)).To(Succeed())

			sent, err := state.Send(ctx, notification.SendNotificationDTO{Recipient: john, Subject: "Hi", Message: "Hello"})

			Expect(err).NotTo(HaveOccurred())
			Expect(sent.Read).To(BeFalse())
			Expect(state.Notifications()).To(HaveLen(3))
			Expect(state.UnreadCount(john)).To(Equal(2))
		})

		It("should not invent a counter for a recipient that was never refreshed", func() {
			_, err := state.Send(ctx, notification.SendNotificationDTO{Recipient: "sarah@example.com", Subject: "Hi", Message: "Hello"})

			Expect(err).NotTo(HaveOccurred())
			Expect(state.UnreadCount("sarah@example.com")).To(Equal(0))
			Expect(state.UserNotifications("sarah@example.com")).To(HaveLen(1))
		})

		It("should surface validation messages", func() {
			_, err := state.Send(ctx, notification.SendNotificationDTO{Recipient: john})

			Expect(err).To(HaveOccurred())
			Expect(state.Err()).To(ContainSubstring("subject is required"))
		})
	})

	Describe("MarkAsRead", func() {
		BeforeEach(func() {
			Expect(state.Refresh(ctx, john)).To(Succeed())
		})

		It("should mark the cached copy and decrement the counter once", func() {
			updated, err := state.MarkAsRead(ctx, "notif1")
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Read).To(BeTrue())
			Expect(state.UnreadCount(john)).To(Equal(0))

			_, err = state.MarkAsRead(ctx, "notif1")
			Expect(err).NotTo(HaveOccurred())
			Expect(state.UnreadCount(john)).To(Equal(0))
		})

		It("should not decrement for an already read notification", func() {
			_, err := state.MarkAsRead(ctx, "notif2")

			Expect(err).NotTo(HaveOccurred())
			Expect(state.UnreadCount(john)).To(Equal(1))
		})

		It("should leave the counter unchanged when the call fails", func() {
			_, err := state.MarkAsRead(ctx, "missing")

			Expect(err).To(MatchError(internal.ErrNotificationNotFound))
			Expect(state.UnreadCount(john)).To(Equal(1))
			Expect(state.Err()).To(Equal("Notification not found"))
		})

		It("should raise a not found error for an unknown id and keep the cache as it was", func() {
			before := state.UserNotifications(john)

			updated, err := state.MarkAsRead(ctx, "notif-does-not-exist")

			Expect(updated).To(BeNil())
			Expect(internal.IsType(err, internal.ErrorTypeNotFound)).To(BeTrue())
			Expect(state.UnreadCount(john)).To(Equal(1))
			Expect(state.UserNotifications(john)).To(Equal(before))
			Expect(state.IsLoading()).To(BeFalse())
		})

		It("should agree with the backend count after the next refresh", func() {
			_, err := state.MarkAsRead(ctx, "notif1")
			Expect(err).NotTo(HaveOccurred())

			Expect(state.Refresh(ctx, john)).To(Succeed())
			count, err := store.UnreadCount(ctx, john)
			Expect(err).NotTo(HaveOccurred())
			Expect(state.UnreadCount(john)).To(Equal(count))
		})
	})
})
