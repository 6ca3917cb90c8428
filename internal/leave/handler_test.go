package leave_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/leave"
	"github.com/frahmantamala/leave-management/internal/leave/memory"
	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Leave Handler Integration", func() {
	var router chi.Router

	BeforeEach(func() {
		service := leave.NewService(memory.NewSeededLeaveStore(), logger.Discard())
		handler := leave.NewHandler(&transport.BaseHandler{Logger: logger.Discard()}, service)

		router = chi.NewRouter()
		router.Get("/leave-requests", handler.ListLeaveRequests)
		router.Post("/leave-requests", handler.CreateLeaveRequest)
		router.Get("/leave-requests/pending", handler.ListPendingLeaveRequests)
		router.Get("/leave-requests/{id}", handler.GetLeaveRequest)
		router.Patch("/leave-requests/{id}/status", handler.UpdateLeaveRequestStatus)
		router.Patch("/leave-requests/{id}/signature", handler.AddEmployeeSignature)
		router.Get("/leave-requests/user/{id}", handler.ListEmployeeLeaveRequests)
	})

	serve := func(method, path string, body interface{}, ctxFns ...func(*http.Request) *http.Request) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		for _, fn := range ctxFns {
			req = fn(req)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	as := func(userID, role string) func(*http.Request) *http.Request {
		return func(r *http.Request) *http.Request {
			ctx := internal.ContextWithUserID(r.Context(), userID)
			ctx = internal.ContextWithRole(ctx, role)
			return r.WithContext(ctx)
		}
	}

	It("should handle GET /leave-requests", func() {
		w := serve(http.MethodGet, "/leave-requests", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))
		var requests []leave.LeaveRequest
		Expect(json.NewDecoder(w.Body).Decode(&requests)).To(Succeed())
		Expect(requests).To(HaveLen(2))
	})

	It("should list only pending requests", func() {
		w := serve(http.MethodGet, "/leave-requests/pending", nil)

		var requests []leave.LeaveRequest
		Expect(json.NewDecoder(w.Body).Decode(&requests)).To(Succeed())
		Expect(requests).To(HaveLen(1))
		Expect(requests[0].ID).To(Equal("leave2"))
	})

	It("should list an employee's requests", func() {
		w := serve(http.MethodGet, "/leave-requests/user/emp1", nil)

		var requests []leave.LeaveRequest
		Expect(json.NewDecoder(w.Body).Decode(&requests)).To(Succeed())
		Expect(requests).To(HaveLen(2))
	})

	It("should answer 404 with the error envelope for an unknown id", func() {
		w := serve(http.MethodGet, "/leave-requests/nope", nil)

		Expect(w.Code).To(Equal(http.StatusNotFound))
		var body internal.Response
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body.Error.Code).To(Equal(internal.ErrCodeLeaveRequestNotFound))
	})

	It("should create a request with 201", func() {
		w := serve(http.MethodPost, "/leave-requests", validCreateDTO(), as("emp1", "employee"))

		Expect(w.Code).To(Equal(http.StatusCreated))
		var created leave.LeaveRequest
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.Status).To(Equal(leave.StatusPending))
	})

	It("should reject an invalid date range with 400", func() {
		dto := validCreateDTO()
		dto.EndDate = "2023-07-01"

		w := serve(http.MethodPost, "/leave-requests", dto)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring(string(internal.ErrCodeInvalidDateRange)))
	})

	It("should reject a malformed body with 400", func() {
		req := httptest.NewRequest(http.MethodPost, "/leave-requests", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should forbid submitting for another employee", func() {
		w := serve(http.MethodPost, "/leave-requests", validCreateDTO(), as("emp2", "employee"))

		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("should update the status", func() {
		w := serve(http.MethodPatch, "/leave-requests/leave2/status", approveDTO(), as("sup1", "supervisor"))

		Expect(w.Code).To(Equal(http.StatusOK))
		var updated leave.LeaveRequest
		Expect(json.NewDecoder(w.Body).Decode(&updated)).To(Succeed())
		Expect(updated.Status).To(Equal(leave.StatusApproved))
		Expect(updated.SupervisorName).To(Equal("Sarah Manager"))
	})

	It("should let only the owner sign", func() {
		body := leave.SignatureDTO{Signature: "data:image/png;base64,xyz"}

		Expect(serve(http.MethodPatch, "/leave-requests/leave2/signature", body, as("emp2", "employee")).Code).
			To(Equal(http.StatusForbidden))
		Expect(serve(http.MethodPatch, "/leave-requests/leave2/signature", body, as("emp1", "employee")).Code).
			To(Equal(http.StatusOK))
	})
})
