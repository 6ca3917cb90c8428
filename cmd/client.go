package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/gateway"
	"github.com/frahmantamala/leave-management/internal/leave"
	leaveMemory "github.com/frahmantamala/leave-management/internal/leave/memory"
	leaveRest "github.com/frahmantamala/leave-management/internal/leave/rest"
	"github.com/frahmantamala/leave-management/internal/notification"
	notificationMemory "github.com/frahmantamala/leave-management/internal/notification/memory"
	notificationRest "github.com/frahmantamala/leave-management/internal/notification/rest"
	"github.com/frahmantamala/leave-management/internal/session"
	sessionSqlite "github.com/frahmantamala/leave-management/internal/session/sqlite"
	"github.com/frahmantamala/leave-management/internal/user"
	userMemory "github.com/frahmantamala/leave-management/internal/user/memory"
	userRest "github.com/frahmantamala/leave-management/internal/user/rest"
	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in, run `leave-management login` first")

// clientApp wires the state objects used by the interactive commands.
type clientApp struct {
	cfg     *internal.Config
	logger  *slog.Logger
	out     io.Writer
	session *session.Manager
	bus     *events.EventBus

	users         *user.State
	leaves        *leave.State
	notifications *notification.State

	closers []func() error
}

func newClientApp(cmd *cobra.Command) (*clientApp, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	log := newLogger(cfg)

	store, err := sessionSqlite.Open(cfg.Session.Path)
	if err != nil {
		return nil, err
	}
	sess := session.NewManager(store, log)

	app := &clientApp{
		cfg:     cfg,
		logger:  log,
		out:     cmd.OutOrStdout(),
		session: sess,
		bus:     events.NewEventBus(log),
		closers: []func() error{store.Close},
	}

	fakeUsers, err := userMemory.NewSeededUserStore()
	if err != nil {
		return nil, err
	}
	fakeLeaves := leaveMemory.NewSeededLeaveStore()
	fakeNotifications := notificationMemory.NewSeededNotificationStore()

	leaveOpts := []leave.ServiceOption{leave.WithDegradedReads()}
	if cfg.Leave.StrictTransitions {
		leaveOpts = append(leaveOpts, leave.WithStrictTransitions())
	}
	notificationOpts := []notification.ServiceOption{notification.WithDegradedReads()}
	var userOpts []user.ServiceOption

	var (
		userBackend         user.Backend
		leaveBackend        leave.Backend
		notificationBackend notification.Backend
	)
	if offline {
		userBackend, leaveBackend, notificationBackend = fakeUsers, fakeLeaves, fakeNotifications
	} else {
		api := gateway.NewClient(gateway.Config{
			BaseURL:     cfg.Client.BaseURL,
			Timeout:     cfg.Client.Timeout,
			Environment: cfg.Environment,
		}, sess, log, gateway.WithAuthBoundary(func(context.Context) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Your session has expired. Run `leave-management login` to sign in again.")
		}))
		userBackend = userRest.NewUserClient(api)
		leaveBackend = leaveRest.NewLeaveClient(api)
		notificationBackend = notificationRest.NewNotificationClient(api)

		if cfg.FallbackEnabled() {
			userOpts = append(userOpts, user.WithFallback(fakeUsers))
			leaveOpts = append(leaveOpts, leave.WithFallback(fakeLeaves))
			notificationOpts = append(notificationOpts, notification.WithFallback(fakeNotifications))
		}
	}

	app.users = user.NewState(user.NewService(userBackend, log, userOpts...), sess, log)
	app.notifications = notification.NewState(notification.NewService(notificationBackend, log, notificationOpts...), log)
	app.leaves = leave.NewState(leave.NewService(leaveBackend, log, leaveOpts...), log, leave.WithPublisher(app.bus))

	notification.NewLeaveNotifier(app.notifications, app.users, log).Subscribe(app.bus)
	return app, nil
}

func (a *clientApp) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("failed to release client resource", "error", err)
		}
	}
}

func (a *clientApp) currentUser() (*user.User, error) {
	u, ok := a.users.CurrentUser()
	if !ok {
		return nil, errNotLoggedIn
	}
	return u, nil
}

func (a *clientApp) requireSupervisor() (*user.User, error) {
	u, err := a.currentUser()
	if err != nil {
		return nil, err
	}
	if !u.IsSupervisor() {
		return nil, internal.ErrInsufficientRole
	}
	return u, nil
}

func (a *clientApp) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
}

// withClient runs fn against a freshly wired client and releases it afterwards.
func withClient(fn func(ctx context.Context, app *clientApp, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := newClientApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return fn(ctx, app, args)
	}
}
