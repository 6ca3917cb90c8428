package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/frahmantamala/leave-management/internal/notification"
	"github.com/spf13/cobra"
)

var sendDTO notification.SendNotificationDTO

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notif"},
	Short:   "Read and send notifications",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the signed-in user's notifications",
	RunE: withClient(func(ctx context.Context, app *clientApp, _ []string) error {
		u, err := app.currentUser()
		if err != nil {
			return err
		}
		if err := app.notifications.Refresh(ctx, u.Email); err != nil {
			return fmt.Errorf("%s: %w", app.notifications.Err(), err)
		}
		printNotifications(app, u.Email)
		return nil
	}),
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, app *clientApp, args []string) error {
		u, err := app.currentUser()
		if err != nil {
			return err
		}
		if err := app.notifications.Refresh(ctx, u.Email); err != nil {
			return fmt.Errorf("%s: %w", app.notifications.Err(), err)
		}
		if _, err := app.notifications.MarkAsRead(ctx, args[0]); err != nil {
			return fmt.Errorf("%s: %w", app.notifications.Err(), err)
		}
		fmt.Fprintf(app.out, "Marked %s as read, %d unread\n", args[0], app.notifications.UnreadCount(u.Email))
		return nil
	}),
}

var notificationsSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a notification",
	RunE: withClient(func(ctx context.Context, app *clientApp, _ []string) error {
		if _, err := app.currentUser(); err != nil {
			return err
		}
		created, err := app.notifications.Send(ctx, sendDTO)
		if err != nil {
			return fmt.Errorf("%s: %w", app.notifications.Err(), err)
		}
		fmt.Fprintf(app.out, "Sent notification %s to %s\n", created.ID, created.Recipient)
		return nil
	}),
}

var notificationsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll for notifications until interrupted",
	RunE: withClient(func(ctx context.Context, app *clientApp, _ []string) error {
		u, err := app.currentUser()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		poller := notification.NewPoller(&printingRefresher{app: app}, u.Email, app.cfg.Notification.PollInterval, app.logger)
		poller.Start(ctx)
		<-ctx.Done()
		poller.Stop()
		return nil
	}),
}

// printingRefresher reports the unread count whenever a poll changes it.
type printingRefresher struct {
	app      *clientApp
	lastSeen int
	started  bool
}

func (p *printingRefresher) Refresh(ctx context.Context, recipient string) error {
	if err := p.app.notifications.Refresh(ctx, recipient); err != nil {
		return err
	}
	count := p.app.notifications.UnreadCount(recipient)
	if !p.started || count != p.lastSeen {
		fmt.Fprintf(p.app.out, "%d unread notification(s)\n", count)
		p.started, p.lastSeen = true, count
	}
	return nil
}

func printNotifications(app *clientApp, recipient string) {
	notifications := app.notifications.UserNotifications(recipient)
	if len(notifications) == 0 {
		fmt.Fprintln(app.out, "No notifications")
		return
	}
	tw := app.table()
	fmt.Fprintln(tw, "ID\t\tSUBJECT\tMESSAGE\tRECEIVED")
	for _, n := range notifications {
		marker := " "
		if !n.Read {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", n.ID, marker, n.Subject, n.Message, n.CreatedAt.Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
	fmt.Fprintf(app.out, "%d unread\n", app.notifications.UnreadCount(recipient))
}

func init() {
	notificationsSendCmd.Flags().StringVar(&sendDTO.Recipient, "to", "", "recipient email")
	notificationsSendCmd.Flags().StringVar(&sendDTO.Subject, "subject", "", "subject line")
	notificationsSendCmd.Flags().StringVar(&sendDTO.Message, "message", "", "message body")
	_ = notificationsSendCmd.MarkFlagRequired("to")

	notificationsCmd.AddCommand(notificationsListCmd, notificationsReadCmd, notificationsSendCmd, notificationsWatchCmd)
}
