package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/user"
	"golang.org/x/sync/errgroup"
)

// Sender delivers one notification.
type Sender interface {
	Send(ctx context.Context, dto SendNotificationDTO) (*Notification, error)
}

// Directory resolves the people a leave event concerns.
type Directory interface {
	Supervisors() []*user.User
	LookupUser(ctx context.Context, id string) (*user.User, error)
}

// LeaveNotifier turns leave events into notifications: supervisors hear about submissions and
// the employee hears about decisions.
type LeaveNotifier struct {
	sender    Sender
	directory Directory
	logger    *slog.Logger
}

func NewLeaveNotifier(sender Sender, directory Directory, logger *slog.Logger) *LeaveNotifier {
	return &LeaveNotifier{
		sender:    sender,
		directory: directory,
		logger:    logger,
	}
}

// Subscribe registers the notifier's handlers on the bus.
func (n *LeaveNotifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeLeaveSubmitted, n.handleSubmitted)
	bus.Subscribe(events.EventTypeLeaveStatusChanged, n.handleStatusChanged)
}

func (n *LeaveNotifier) handleSubmitted(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.LeaveSubmittedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}
	return n.NotifySupervisors(ctx, e.Leave)
}

func (n *LeaveNotifier) handleStatusChanged(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.LeaveStatusChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}
	return n.NotifyEmployee(ctx, e.Leave)
}

// NotifySupervisors sends the submission notice to every known supervisor concurrently.
func (n *LeaveNotifier) NotifySupervisors(ctx context.Context, leave events.LeaveSnapshot) error {
	supervisors := n.directory.Supervisors()
	if len(supervisors) == 0 {
		n.logger.Warn("no supervisors to notify", "leave_id", leave.LeaveID)
		return nil
	}

	message := fmt.Sprintf("%s has submitted a new %s leave request from %s to %s.",
		leave.EmployeeName, leave.Type, leave.StartDate, leave.EndDate)

	g, gctx := errgroup.WithContext(ctx)
	for _, sup := range supervisors {
		recipient := sup.Email
		g.Go(func() error {
			_, err := n.sender.Send(gctx, SendNotificationDTO{
				Recipient: recipient,
				Subject:   "New Leave Request",
				Message:   message,
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		n.logger.Error("failed to notify supervisors", "leave_id", leave.LeaveID, "error", err)
		return err
	}
	return nil
}

// NotifyEmployee tells the requester about a decision.
func (n *LeaveNotifier) NotifyEmployee(ctx context.Context, leave events.LeaveSnapshot) error {
	employee, err := n.directory.LookupUser(ctx, leave.EmployeeID)
	if err != nil {
		n.logger.Error("failed to resolve employee for notification", "employee_id", leave.EmployeeID, "error", err)
		return err
	}

	message := fmt.Sprintf("Your leave request from %s to %s has been %s",
		leave.StartDate, leave.EndDate, leave.Status)
	if leave.SupervisorComment != "" {
		message += ". Comment: " + leave.SupervisorComment
	} else {
		message += "."
	}

	_, err = n.sender.Send(ctx, SendNotificationDTO{
		Recipient: employee.Email,
		Subject:   "Leave Request " + capitalize(leave.Status),
		Message:   message,
	})
	if err != nil {
		n.logger.Error("failed to notify employee", "leave_id", leave.LeaveID, "error", err)
		return err
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
