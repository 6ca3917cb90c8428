package notification_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/leave-management/internal/notification"
	"github.com/frahmantamala/leave-management/internal/notification/memory"
	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Notification Handler Integration", func() {
	var router chi.Router

	BeforeEach(func() {
		service := notification.NewService(memory.NewSeededNotificationStore(), logger.Discard())
		handler := notification.NewHandler(&transport.BaseHandler{Logger: logger.Discard()}, service)

		router = chi.NewRouter()
		router.Get("/notifications", handler.ListNotifications)
		router.Post("/notifications", handler.SendNotification)
		router.Get("/notifications/unread-count", handler.UnreadCount)
		router.Patch("/notifications/{id}/read", handler.MarkAsRead)
	})

	serve := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, path, &buf))
		return w
	}

	It("should require the recipient query parameter", func() {
		Expect(serve(http.MethodGet, "/notifications", nil).Code).To(Equal(http.StatusBadRequest))
		Expect(serve(http.MethodGet, "/notifications/unread-count", nil).Code).To(Equal(http.StatusBadRequest))
	})

	It("should list a recipient's notifications", func() {
		w := serve(http.MethodGet, "/notifications?recipient=john@example.com", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		var notifications []notification.Notification
		Expect(json.NewDecoder(w.Body).Decode(&notifications)).To(Succeed())
		Expect(notifications).To(HaveLen(2))
	})

	It("should count unread notifications", func() {
		w := serve(http.MethodGet, "/notifications/unread-count?recipient=john@example.com", nil)

		var body notification.UnreadCountResponse
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body.Count).To(Equal(1))
	})

	It("should send with 201 and mark as read", func() {
		w := serve(http.MethodPost, "/notifications", notification.SendNotificationDTO{
			Recipient: "sarah@example.com",
			Subject:   "New Leave Request",
			Message:   "John Doe has submitted a new leave request.",
		})
		Expect(w.Code).To(Equal(http.StatusCreated))
		var sent notification.Notification
		Expect(json.NewDecoder(w.Body).Decode(&sent)).To(Succeed())

		w = serve(http.MethodPatch, "/notifications/"+sent.ID+"/read", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var read notification.Notification
		Expect(json.NewDecoder(w.Body).Decode(&read)).To(Succeed())
		Expect(read.Read).To(BeTrue())
	})

	It("should answer 404 when marking an unknown notification", func() {
		Expect(serve(http.MethodPatch, "/notifications/nope/read", nil).Code).To(Equal(http.StatusNotFound))
	})
})
