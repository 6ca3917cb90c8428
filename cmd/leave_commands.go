package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/leave-management/internal/leave"
	"github.com/spf13/cobra"
)

var (
	submitStart  string
	submitEnd    string
	submitType   string
	submitReason string

	decisionComment   string
	decisionSignature string

	employeeSignature string
)

var leaveCmd = &cobra.Command{
	Use:   "leave",
	Short: "Work with leave requests",
}

var leaveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every leave request",
	RunE: withClient(func(ctx context.Context, app *clientApp, _ []string) error {
		if err := app.leaves.Refresh(ctx); err != nil {
			return fmt.Errorf("%s: %w", app.leaves.Err(), err)
		}
		printLeaveRequests(app, app.leaves.LeaveRequests())
		return nil
	}),
}

var leaveMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List the signed-in employee's leave requests",
	RunE: withClient(func(ctx context.Context, app *clientApp, _ []string) error {
		u, err := app.currentUser()
		if err != nil {
			return err
		}
		if err := app.leaves.Refresh(ctx); err != nil {
			return fmt.Errorf("%s: %w", app.leaves.Err(), err)
		}
		printLeaveRequests(app, app.leaves.UserLeaveRequests(u.ID))
		return nil
	}),
}

var leavePendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List requests awaiting a decision",
	RunE: withClient(func(ctx context.Context, app *clientApp, _ []string) error {
		if _, err := app.requireSupervisor(); err != nil {
			return err
		}
		if err := app.leaves.Refresh(ctx); err != nil {
			return fmt.Errorf("%s: %w", app.leaves.Err(), err)
		}
		printLeaveRequests(app, app.leaves.PendingLeaveRequests())
		return nil
	}),
}

var leaveShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one leave request",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, app *clientApp, args []string) error {
		if err := app.leaves.Refresh(ctx); err != nil {
			return fmt.Errorf("%s: %w", app.leaves.Err(), err)
		}
		l, ok := app.leaves.LeaveRequestByID(args[0])
		if !ok {
			return fmt.Errorf("leave request %s not found", args[0])
		}
		printLeaveRequest(app, l)
		return nil
	}),
}

var leaveSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a leave request for the signed-in employee",
	RunE: withClient(func(ctx context.Context, app *clientApp, _ []string) error {
		u, err := app.currentUser()
		if err != nil {
			return err
		}
		// supervisors are notified from the user cache
		if err := app.users.Refresh(ctx); err != nil {
			app.logger.Warn("could not load supervisors", "error", err)
		}

		created, err := app.leaves.AddLeaveRequest(ctx, leave.CreateLeaveRequestDTO{
			EmployeeID:   u.ID,
			EmployeeName: u.Name,
			StartDate:    submitStart,
			EndDate:      submitEnd,
			Type:         leave.Type(submitType),
			Reason:       submitReason,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", app.leaves.Err(), err)
		}
		fmt.Fprintf(app.out, "Submitted leave request %s (%d days)\n", created.ID, created.Days())
		return nil
	}),
}

var leaveApproveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a pending leave request",
	Args:  cobra.ExactArgs(1),
	RunE:  withClient(decide(leave.StatusApproved)),
}

var leaveRejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject a pending leave request",
	Args:  cobra.ExactArgs(1),
	RunE:  withClient(decide(leave.StatusRejected)),
}

func decide(status leave.Status) func(context.Context, *clientApp, []string) error {
	return func(ctx context.Context, app *clientApp, args []string) error {
		sup, err := app.requireSupervisor()
		if err != nil {
			return err
		}
		if err := app.leaves.Refresh(ctx); err != nil {
			return fmt.Errorf("%s: %w", app.leaves.Err(), err)
		}
		if err := app.users.Refresh(ctx); err != nil {
			app.logger.Warn("could not load users", "error", err)
		}

		updated, err := app.leaves.UpdateLeaveRequestStatus(ctx, args[0], leave.UpdateStatusDTO{
			Status:  status,
			Comment: decisionComment,
			SupervisorData: &leave.SupervisorData{
				ID:        sup.ID,
				Name:      sup.Name,
				Signature: decisionSignature,
			},
		})
		if err != nil {
			return fmt.Errorf("%s: %w", app.leaves.Err(), err)
		}
		fmt.Fprintf(app.out, "Leave request %s is now %s\n", updated.ID, updated.Status)
		return nil
	}
}

var leaveSignCmd = &cobra.Command{
	Use:   "sign <id>",
	Short: "Attach the employee signature to a leave request",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, app *clientApp, args []string) error {
		if _, err := app.currentUser(); err != nil {
			return err
		}
		if err := app.leaves.Refresh(ctx); err != nil {
			return fmt.Errorf("%s: %w", app.leaves.Err(), err)
		}
		updated, err := app.leaves.AddEmployeeSignature(ctx, args[0], employeeSignature)
		if err != nil {
			return fmt.Errorf("%s: %w", app.leaves.Err(), err)
		}
		fmt.Fprintf(app.out, "Signed leave request %s\n", updated.ID)
		return nil
	}),
}

func printLeaveRequests(app *clientApp, requests []*leave.LeaveRequest) {
	if len(requests) == 0 {
		fmt.Fprintln(app.out, "No leave requests")
		return
	}
	tw := app.table()
	fmt.Fprintln(tw, "ID\tEMPLOYEE\tTYPE\tFROM\tTO\tDAYS\tSTATUS")
	for _, l := range requests {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			l.ID, l.EmployeeName, l.Type, l.StartDate, l.EndDate, l.Days(), l.Status)
	}
	_ = tw.Flush()
}

func printLeaveRequest(app *clientApp, l *leave.LeaveRequest) {
	tw := app.table()
	fmt.Fprintf(tw, "ID\t%s\n", l.ID)
	fmt.Fprintf(tw, "Employee\t%s (%s)\n", l.EmployeeName, l.EmployeeID)
	fmt.Fprintf(tw, "Type\t%s\n", l.Type)
	fmt.Fprintf(tw, "Dates\t%s to %s (%d days)\n", l.StartDate, l.EndDate, l.Days())
	fmt.Fprintf(tw, "Reason\t%s\n", l.Reason)
	fmt.Fprintf(tw, "Status\t%s\n", l.Status)
	if l.SupervisorName != "" {
		fmt.Fprintf(tw, "Supervisor\t%s\n", l.SupervisorName)
	}
	if l.SupervisorComment != "" {
		fmt.Fprintf(tw, "Comment\t%s\n", l.SupervisorComment)
	}
	fmt.Fprintf(tw, "Employee signed\t%t\n", l.EmployeeSignature != "")
	fmt.Fprintf(tw, "Supervisor signed\t%t\n", l.SupervisorSignature != "")
	fmt.Fprintf(tw, "Created\t%s\n", l.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(tw, "Updated\t%s\n", l.UpdatedAt.Format("2006-01-02 15:04"))
	_ = tw.Flush()
}

func init() {
	leaveSubmitCmd.Flags().StringVar(&submitStart, "start", "", "first day of leave (YYYY-MM-DD)")
	leaveSubmitCmd.Flags().StringVar(&submitEnd, "end", "", "last day of leave (YYYY-MM-DD)")
	leaveSubmitCmd.Flags().StringVar(&submitType, "type", string(leave.TypePaid), "paid or unpaid")
	leaveSubmitCmd.Flags().StringVar(&submitReason, "reason", "", "reason for the leave")
	_ = leaveSubmitCmd.MarkFlagRequired("start")
	_ = leaveSubmitCmd.MarkFlagRequired("end")
	_ = leaveSubmitCmd.MarkFlagRequired("reason")

	for _, c := range []*cobra.Command{leaveApproveCmd, leaveRejectCmd} {
		c.Flags().StringVar(&decisionComment, "comment", "", "comment for the employee")
		c.Flags().StringVar(&decisionSignature, "signature", "", "supervisor signature (data URL)")
	}
	leaveSignCmd.Flags().StringVar(&employeeSignature, "signature", "", "employee signature (data URL)")
	_ = leaveSignCmd.MarkFlagRequired("signature")

	leaveCmd.AddCommand(leaveListCmd, leaveMineCmd, leavePendingCmd, leaveShowCmd,
		leaveSubmitCmd, leaveApproveCmd, leaveRejectCmd, leaveSignCmd)
}
