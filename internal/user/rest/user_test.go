package rest_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/user"
	userRest "github.com/frahmantamala/leave-management/internal/user/rest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestUserRest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User REST Suite")
}

// FakeDoer answers every call with a canned body or error.
type FakeDoer struct {
	method string
	path   string
	body   interface{}
	raw    string
	err    error
}

func (f *FakeDoer) Do(_ context.Context, method, path string, body, out interface{}) error {
	f.method, f.path, f.body = method, path, body
	if f.err != nil {
		return f.err
	}
	if out == nil || f.raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(f.raw), out)
}

var _ = Describe("User REST Client", func() {
	var (
		doer   *FakeDoer
		client *userRest.UserClient
		ctx    context.Context
	)

	BeforeEach(func() {
		doer = &FakeDoer{}
		client = userRest.NewUserClient(doer)
		ctx = context.Background()
	})

	Describe("List", func() {
		It("should accept a bare array", func() {
			doer.raw = `[{"id":"emp1"},{"id":"sup1"}]`

			users, err := client.List(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(2))
			Expect(doer.path).To(Equal("/users"))
		})

		It("should accept a wrapped collection", func() {
			doer.raw = `{"users":[{"id":"emp1"}]}`

			users, err := client.List(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(1))
		})

		It("should accept an empty wrapped collection", func() {
			doer.raw = `{"users":[]}`

			users, err := client.List(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(BeEmpty())
		})

		It("should report any other body as a server error", func() {
			doer.raw = `{"unexpected":true}`

			users, err := client.List(ctx)

			Expect(users).To(BeNil())
			Expect(internal.IsType(err, internal.ErrorTypeServer)).To(BeTrue())
			Expect(err.Error()).To(Equal("invalid response body"))
		})

		It("should report a scalar body as a server error", func() {
			doer.raw = `"nope"`

			_, err := client.List(ctx)

			Expect(internal.IsType(err, internal.ErrorTypeServer)).To(BeTrue())
		})
	})

	It("should map a conflict on register to the duplicate email error", func() {
		doer.err = internal.NewConflictError("exists", internal.ErrCodeConflict)

		_, err := client.Register(ctx, user.RegisterUserDTO{Email: "john@example.com"})

		Expect(err).To(MatchError(internal.ErrEmailAlreadyExists))
	})

	It("should map a rejected login to invalid credentials", func() {
		doer.err = internal.NewUnauthorizedError("Unauthorized", internal.ErrCodeInvalidToken)

		_, err := client.Login(ctx, user.LoginDTO{Email: "john@example.com", Password: "x"})

		Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		Expect(doer.path).To(Equal("/auth/login"))
	})

	It("should escape the id in the user path", func() {
		doer.raw = `{"id":"a b"}`

		_, err := client.GetByID(ctx, "a b")

		Expect(err).NotTo(HaveOccurred())
		Expect(doer.path).To(Equal("/users/a%20b"))
	})

	Describe("ChangePassword", func() {
		It("should map the credential rejection to the incorrect password error", func() {
			doer.err = internal.NewForbiddenError("Current password is incorrect", internal.ErrCodeInvalidCredentials)

			err := client.ChangePassword(ctx, "emp1", user.ChangePasswordDTO{})

			Expect(err).To(MatchError(internal.ErrIncorrectPassword))
			Expect(doer.path).To(Equal("/users/emp1/password"))
		})

		It("should pass other failures through", func() {
			doer.err = internal.NewNetworkError("timeout of 10000ms exceeded", nil)

			err := client.ChangePassword(ctx, "emp1", user.ChangePasswordDTO{})

			Expect(internal.IsTransient(err)).To(BeTrue())
		})
	})
})
