package notification_test

import (
	"context"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/notification"
	"github.com/frahmantamala/leave-management/internal/user"
	"github.com/frahmantamala/leave-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeDirectory struct {
	users []*user.User
}

func (d *fakeDirectory) Supervisors() []*user.User {
	out := make([]*user.User, 0)
	for _, u := range d.users {
		if u.IsSupervisor() {
			out = append(out, u)
		}
	}
	return out
}

func (d *fakeDirectory) LookupUser(_ context.Context, id string) (*user.User, error) {
	for _, u := range d.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, internal.ErrUserNotFound
}

var _ = Describe("Leave Notifier", func() {
	var (
		sender    *MockBackend
		directory *fakeDirectory
		notifier  *notification.LeaveNotifier
		bus       *events.EventBus
		ctx       context.Context
		snapshot  events.LeaveSnapshot
	)

	BeforeEach(func() {
		sender = &MockBackend{}
		directory = &fakeDirectory{users: []*user.User{
			{ID: "emp1", Email: "john@example.com", Role: user.RoleEmployee},
			{ID: "sup1", Email: "sarah@example.com", Role: user.RoleSupervisor},
			{ID: "sup2", Email: "omar@example.com", Role: user.RoleSupervisor},
		}}
		notifier = notification.NewLeaveNotifier(sender, directory, logger.Discard())
		bus = events.NewEventBus(logger.Discard())
		notifier.Subscribe(bus)
		ctx = context.Background()
		snapshot = events.LeaveSnapshot{
			LeaveID:      "leave9",
			EmployeeID:   "emp1",
			EmployeeName: "John Doe",
			Type:         "paid",
			Status:       "pending",
			StartDate:    "2023-08-01",
			EndDate:      "2023-08-03",
		}
	})

	It("should notify every supervisor about a submission", func() {
		Expect(bus.PublishSync(ctx, events.NewLeaveSubmittedEvent(snapshot))).To(Succeed())

		sent := sender.Sent()
		Expect(sent).To(HaveLen(2))
		recipients := []string{sent[0].Recipient, sent[1].Recipient}
		Expect(recipients).To(ConsistOf("sarah@example.com", "omar@example.com"))
		Expect(sent[0].Subject).To(Equal("New Leave Request"))
		Expect(sent[0].Message).To(Equal("John Doe has submitted a new paid leave request from 2023-08-01 to 2023-08-03."))
	})

	It("should do nothing without supervisors", func() {
		directory.users = directory.users[:1]

		Expect(notifier.NotifySupervisors(ctx, snapshot)).To(Succeed())
		Expect(sender.Sent()).To(BeEmpty())
	})

	It("should tell the employee about a decision with the comment", func() {
		snapshot.Status = "approved"
		snapshot.SupervisorComment = "Enjoy"

		Expect(bus.PublishSync(ctx, events.NewLeaveStatusChangedEvent(snapshot, "pending", "sup1", "Sarah Manager"))).To(Succeed())

		sent := sender.Sent()
		Expect(sent).To(HaveLen(1))
		Expect(sent[0].Recipient).To(Equal("john@example.com"))
		Expect(sent[0].Subject).To(Equal("Leave Request Approved"))
		Expect(sent[0].Message).To(Equal("Your leave request from 2023-08-01 to 2023-08-03 has been approved. Comment: Enjoy"))
	})

	It("should end the decision message with a period when there is no comment", func() {
		snapshot.Status = "rejected"

		Expect(notifier.NotifyEmployee(ctx, snapshot)).To(Succeed())

		sent := sender.Sent()
		Expect(sent[0].Subject).To(Equal("Leave Request Rejected"))
		Expect(sent[0].Message).To(HaveSuffix("has been rejected."))
	})

	It("should fail when the employee cannot be resolved", func() {
		snapshot.EmployeeID = "ghost"

		Expect(notifier.NotifyEmployee(ctx, snapshot)).To(MatchError(internal.ErrUserNotFound))
		Expect(sender.Sent()).To(BeEmpty())
	})

	It("should report delivery failures", func() {
		sender.failError = internal.NewNetworkError("connection refused", nil)

		Expect(notifier.NotifySupervisors(ctx, snapshot)).NotTo(Succeed())
	})
})
