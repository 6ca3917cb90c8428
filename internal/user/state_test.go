package user_test

import (
	"context"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/session"
	"github.com/frahmantamala/leave-management/internal/user"
	"github.com/frahmantamala/leave-management/internal/user/memory"
	"github.com/frahmantamala/leave-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// gatedUsers holds List until release is closed.
type gatedUsers struct {
	user.ServiceAPI
	release chan struct{}
}

func (g *gatedUsers) List(ctx context.Context) ([]*user.User, error) {
	<-g.release
	return g.ServiceAPI.List(ctx)
}

var _ = Describe("User State", func() {
	var (
		store    *memory.UserStore
		sessions *session.Manager
		state    *user.State
		ctx      context.Context
	)

	BeforeEach(func() {
		var err error
		store, err = memory.NewSeededUserStore()
		Expect(err).NotTo(HaveOccurred())
		sessions = session.NewManager(session.NewMemoryStore(), logger.Discard())
		state = user.NewState(user.NewService(store, logger.Discard()), sessions, logger.Discard())
		ctx = context.Background()
	})

	Describe("Refresh", func() {
		It("should load users and derive supervisors and departments", func() {
			Expect(state.Refresh(ctx)).To(Succeed())

			Expect(state.Users()).To(HaveLen(2))
			supervisors := state.Supervisors()
			Expect(supervisors).To(HaveLen(1))
			Expect(supervisors[0].ID).To(Equal("sup1"))
			Expect(state.Departments()).To(HaveKeyWithValue("emp1", "Engineering"))
		})

		It("should keep the previous users when a refresh fails", func() {
			Expect(state.Refresh(ctx)).To(Succeed())
			failing := user.NewState(user.NewService(&MockBackend{failError: internal.NewServerError("boom", 500)}, logger.Discard()), sessions, logger.Discard())

			Expect(failing.Refresh(ctx)).NotTo(Succeed())
			Expect(failing.Users()).To(BeEmpty())
			Expect(failing.Err()).To(Equal("boom"))
			Expect(state.Users()).To(HaveLen(2))
		})

		It("should still load for a live caller sharing a fetch with a cancelled one", func() {
			gated := &gatedUsers{ServiceAPI: user.NewService(store, logger.Discard()), release: make(chan struct{})}
			shared := user.NewState(gated, sessions, logger.Discard())
			cctx, cancel := context.WithCancel(ctx)
			first := make(chan error, 1)
			second := make(chan error, 1)

			go func() { first <- shared.Refresh(cctx) }()
			Eventually(shared.IsLoading).Should(BeTrue())
			go func() { second <- shared.Refresh(context.Background()) }()
			time.Sleep(50 * time.Millisecond)

			cancel()
			Eventually(first).Should(Receive(MatchError(context.Canceled)))
			close(gated.release)
			Eventually(second).Should(Receive(BeNil()))

			Expect(shared.Users()).To(HaveLen(2))
			Expect(shared.Err()).To(BeEmpty())
			Expect(shared.IsLoading()).To(BeFalse())
		})
	})

	Describe("AddUser", func() {
		BeforeEach(func() {
			Expect(state.Refresh(ctx)).To(Succeed())
		})

		It("should append the registered user", func() {
			created, err := state.AddUser(ctx, validRegisterDTO())

			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).To(HavePrefix("user-"))
			Expect(state.Users()).To(HaveLen(3))
			found, ok := state.UserByEmail("jane@example.com")
			Expect(ok).To(BeTrue())
			Expect(found.ID).To(Equal(created.ID))
		})

		It("should refuse a cached email before calling the backend", func() {
			dto := validRegisterDTO()
			dto.Email = "john@example.com"

			_, err := state.AddUser(ctx, dto)

			Expect(err).To(MatchError(internal.ErrEmailAlreadyExists))
			Expect(state.Err()).To(Equal("Email already in use"))
			Expect(state.Users()).To(HaveLen(2))
		})

		It("should treat the email check as case-sensitive", func() {
			dto := validRegisterDTO()
			dto.Email = "John@example.com"

			_, err := state.AddUser(ctx, dto)

			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("Authentication", func() {
		It("should persist the session on login", func() {
			u, err := state.Authenticate(ctx, "john@example.com", memory.DemoPassword)

			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).To(Equal("emp1"))
			Expect(sessions.Token()).To(HavePrefix("mock-token-"))

			current, ok := state.CurrentUser()
			Expect(ok).To(BeTrue())
			Expect(current.Email).To(Equal("john@example.com"))
		})

		It("should leave the session empty on bad credentials", func() {
			_, err := state.Authenticate(ctx, "john@example.com", "wrong")

			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
			Expect(state.Err()).To(Equal("Invalid email or password"))
			Expect(sessions.IsAuthenticated()).To(BeFalse())
		})

		It("should forget the user on logout", func() {
			_, err := state.Authenticate(ctx, "sarah@example.com", memory.DemoPassword)
			Expect(err).NotTo(HaveOccurred())

			Expect(state.Logout()).To(Succeed())

			_, ok := state.CurrentUser()
			Expect(ok).To(BeFalse())
		})
	})

	Describe("ChangePassword", func() {
		It("should let the user log in with the new password", func() {
			err := state.ChangePassword(ctx, "emp1", user.ChangePasswordDTO{
				CurrentPassword: memory.DemoPassword,
				NewPassword:     "brand-new",
				ConfirmPassword: "brand-new",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = state.Authenticate(ctx, "john@example.com", "brand-new")
			Expect(err).NotTo(HaveOccurred())
		})

		It("should report a wrong current password", func() {
			err := state.ChangePassword(ctx, "emp1", user.ChangePasswordDTO{
				CurrentPassword: "nope",
				NewPassword:     "brand-new",
				ConfirmPassword: "brand-new",
			})

			Expect(err).To(MatchError(internal.ErrIncorrectPassword))
			Expect(state.Err()).To(Equal("Current password is incorrect"))
		})
	})

	Describe("LookupUser", func() {
		It("should answer from the cache and fall back to the service", func() {
			Expect(state.Refresh(ctx)).To(Succeed())

			u, err := state.LookupUser(ctx, "sup1")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Name).To(Equal("Sarah Manager"))

			_, err = state.LookupUser(ctx, "nobody")
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})
})
