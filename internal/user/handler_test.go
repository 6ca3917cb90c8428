package user_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/internal/user"
	"github.com/frahmantamala/leave-management/internal/user/memory"
	"github.com/frahmantamala/leave-management/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("User Handler Integration", func() {
	var router chi.Router

	BeforeEach(func() {
		store, err := memory.NewSeededUserStore()
		Expect(err).NotTo(HaveOccurred())
		handler := user.NewHandler(&transport.BaseHandler{Logger: logger.Discard()}, user.NewService(store, logger.Discard()))

		router = chi.NewRouter()
		router.Post("/auth/login", handler.Login)
		router.Get("/users", handler.ListUsers)
		router.Post("/users", handler.RegisterUser)
		router.Get("/users/{id}", handler.GetUser)
		router.Patch("/users/{id}/password", handler.ChangePassword)
	})

	serve := func(method, path string, body interface{}, callerID string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		if callerID != "" {
			req = req.WithContext(internal.ContextWithUserID(req.Context(), callerID))
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("should log in with the demo password", func() {
		w := serve(http.MethodPost, "/auth/login", user.LoginDTO{Email: "sarah@example.com", Password: memory.DemoPassword}, "")

		Expect(w.Code).To(Equal(http.StatusOK))
		var result user.AuthResult
		Expect(json.NewDecoder(w.Body).Decode(&result)).To(Succeed())
		Expect(result.Token).NotTo(BeEmpty())
		Expect(result.User.Role).To(Equal(user.RoleSupervisor))
		Expect(w.Body.String()).NotTo(ContainSubstring("password"))
	})

	It("should answer 401 for a wrong password", func() {
		w := serve(http.MethodPost, "/auth/login", user.LoginDTO{Email: "sarah@example.com", Password: "x"}, "")

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("should list users", func() {
		w := serve(http.MethodGet, "/users", nil, "")

		var users []user.User
		Expect(json.NewDecoder(w.Body).Decode(&users)).To(Succeed())
		Expect(users).To(HaveLen(2))
	})

	It("should register a user with 201 and reject the same email with 409", func() {
		Expect(serve(http.MethodPost, "/users", validRegisterDTO(), "").Code).To(Equal(http.StatusCreated))

		w := serve(http.MethodPost, "/users", validRegisterDTO(), "")
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring(string(internal.ErrCodeEmailAlreadyExists)))
	})

	It("should answer 404 for an unknown user", func() {
		Expect(serve(http.MethodGet, "/users/ghost", nil, "").Code).To(Equal(http.StatusNotFound))
	})

	Describe("ChangePassword", func() {
		dto := user.ChangePasswordDTO{CurrentPassword: memory.DemoPassword, NewPassword: "secret9", ConfirmPassword: "secret9"}

		It("should answer 204 for the caller's own account", func() {
			Expect(serve(http.MethodPatch, "/users/emp1/password", dto, "emp1").Code).To(Equal(http.StatusNoContent))
		})

		It("should forbid changing someone else's password", func() {
			Expect(serve(http.MethodPatch, "/users/emp1/password", dto, "sup1").Code).To(Equal(http.StatusForbidden))
		})

		It("should answer a wrong current password with 403 INVALID_CREDENTIALS", func() {
			wrong := dto
			wrong.CurrentPassword = "nope"

			w := serve(http.MethodPatch, "/users/emp1/password", wrong, "emp1")

			Expect(w.Code).To(Equal(http.StatusForbidden))
			var body internal.Response
			Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
			Expect(body.Error.Code).To(Equal(internal.ErrCodeInvalidCredentials))
		})
	})
})
