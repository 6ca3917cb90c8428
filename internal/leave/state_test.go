package leave_test

import (
	"context"
	"sync"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/leave"
	"github.com/frahmantamala/leave-management/internal/leave/memory"
	"github.com/frahmantamala/leave-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordedEvents) handle(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordedEvents) all() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

// blockingBackend holds List until release is closed.
type blockingBackend struct {
	*memory.LeaveStore
	release chan struct{}
	calls   int
	mu      sync.Mutex
}

func (b *blockingBackend) List(ctx context.Context) ([]*leave.LeaveRequest, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	<-b.release
	return b.LeaveStore.List(ctx)
}

var _ = Describe("Leave State", func() {
	var (
		store    *memory.LeaveStore
		bus      *events.EventBus
		recorder *recordedEvents
		state    *leave.State
		ctx      context.Context
		clock    time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		clock = time.Date(2023, 8, 1, 9, 0, 0, 0, time.UTC)
		store = memory.NewSeededLeaveStore().WithClock(func() time.Time { return clock })
		bus = events.NewEventBus(logger.Discard())
		recorder = &recordedEvents{}
		bus.Subscribe(events.EventTypeLeaveSubmitted, recorder.handle)
		bus.Subscribe(events.EventTypeLeaveStatusChanged, recorder.handle)

		service := leave.NewService(store, logger.Discard())
		state = leave.NewState(service, logger.Discard(), leave.WithPublisher(bus))
	})

	It("should start empty and not loading", func() {
		Expect(state.LeaveRequests()).To(BeEmpty())
		Expect(state.IsLoading()).To(BeFalse())
		Expect(state.Err()).To(BeEmpty())
	})

	Describe("Refresh", func() {
		It("should load the backend collection in order", func() {
			Expect(state.Refresh(ctx)).To(Succeed())

			requests := state.LeaveRequests()
			Expect(requests).To(HaveLen(2))
			Expect(requests[0].ID).To(Equal("leave1"))
			Expect(requests[1].ID).To(Equal("leave2"))
		})

		It("should clear the collection and record a message on failure", func() {
			failing := &MockBackend{failError: internal.NewServerError("boom", 500)}
			failingState := leave.NewState(leave.NewService(failing, logger.Discard()), logger.Discard())
			Expect(failingState.Refresh(ctx)).NotTo(Succeed())
			Expect(failingState.LeaveRequests()).To(BeEmpty())
			Expect(failingState.Err()).To(Equal("Failed to fetch leave requests. Please try again later."))
			Expect(failingState.IsLoading()).To(BeFalse())
		})

		It("should share one fetch between concurrent callers", func() {
			blocking := &blockingBackend{LeaveStore: store, release: make(chan struct{})}
			shared := leave.NewState(leave.NewService(blocking, logger.Discard()), logger.Discard())

			var wg sync.WaitGroup
			for i := 0; i < 3; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					Expect(shared.Refresh(ctx)).To(Succeed())
				}()
			}

			Eventually(shared.IsLoading).Should(BeTrue())
			time.Sleep(50 * time.Millisecond)
			close(blocking.release)
			wg.Wait()

			Expect(blocking.calls).To(Equal(1))
			Expect(shared.LeaveRequests()).To(HaveLen(2))
			Expect(shared.IsLoading()).To(BeFalse())
		})

		It("should discard a result that arrives after cancellation", func() {
			blocking := &blockingBackend{LeaveStore: store, release: make(chan struct{})}
			cancelled := leave.NewState(leave.NewService(blocking, logger.Discard()), logger.Discard())
			cctx, cancel := context.WithCancel(ctx)

			done := make(chan error, 1)
			go func() { done <- cancelled.Refresh(cctx) }()

			Eventually(cancelled.IsLoading).Should(BeTrue())
			cancel()
			close(blocking.release)

			Eventually(done).Should(Receive(MatchError(context.Canceled)))
			Expect(cancelled.LeaveRequests()).To(BeEmpty())
			Expect(cancelled.Err()).To(BeEmpty())
		})

		It("should still load for a live caller sharing a fetch with a cancelled one", func() {
			blocking := &blockingBackend{LeaveStore: store, release: make(chan struct{})}
			shared := leave.NewState(leave.NewService(blocking, logger.Discard()), logger.Discard())
			cctx, cancel := context.WithCancel(ctx)

			first := make(chan error, 1)
			go func() { first <- shared.Refresh(cctx) }()
			Eventually(shared.IsLoading).Should(BeTrue())

			second := make(chan error, 1)
			go func() { second <- shared.Refresh(context.Background()) }()
			time.Sleep(50 * time.Millisecond)

			cancel()
			Eventually(first).Should(Receive(MatchError(context.Canceled)))
			close(blocking.release)

			Eventually(second).Should(Receive(BeNil()))
			blocking.mu.Lock()
			Expect(blocking.calls).To(Equal(1))
			blocking.mu.Unlock()
			Expect(shared.LeaveRequests()).To(HaveLen(2))
			Expect(shared.IsLoading()).To(BeFalse())
		})
	})

	Describe("AddLeaveRequest", func() {
		It("should append the created request and publish a submission", func() {
			Expect(state.Refresh(ctx)).To(Succeed())

			created, err := state.AddLeaveRequest(ctx, validCreateDTO())

			Expect(err).NotTo(HaveOccurred())
			Expect(created.Status).To(Equal(leave.StatusPending))
			Expect(created.CreatedAt).To(Equal(clock))
			Expect(state.LeaveRequests()).To(HaveLen(3))
			Expect(state.PendingLeaveRequests()).To(HaveLen(2))

			published := recorder.all()
			Expect(published).To(HaveLen(1))
			submitted, ok := published[0].(*events.LeaveSubmittedEvent)
			Expect(ok).To(BeTrue())
			Expect(submitted.Leave.LeaveID).To(Equal(created.ID))
		})

		It("should leave the collection untouched when validation fails", func() {
			Expect(state.Refresh(ctx)).To(Succeed())
			dto := validCreateDTO()
			dto.Reason = ""

			_, err := state.AddLeaveRequest(ctx, dto)

			Expect(err).To(HaveOccurred())
			Expect(state.LeaveRequests()).To(HaveLen(2))
			Expect(state.Err()).To(Equal("Failed to create leave request. Please try again."))
			Expect(recorder.all()).To(BeEmpty())
		})
	})

	Describe("UpdateLeaveRequestStatus", func() {
		BeforeEach(func() {
			Expect(state.Refresh(ctx)).To(Succeed())
		})

		It("should accept a decision without a supervisor descriptor", func() {
			updated, err := state.UpdateLeaveRequestStatus(ctx, "leave2", leave.UpdateStatusDTO{
				Status:  leave.StatusApproved,
				Comment: "ok",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(leave.StatusApproved))
			Expect(updated.SupervisorComment).To(Equal("ok"))
			Expect(updated.SupervisorID).To(BeEmpty())
			Expect(updated.SupervisorName).To(BeEmpty())
		})

		It("should keep the recorded supervisor when a later decision has no descriptor", func() {
			updated, err := state.UpdateLeaveRequestStatus(ctx, "leave1", leave.UpdateStatusDTO{Status: leave.StatusRejected})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(leave.StatusRejected))
			Expect(updated.SupervisorID).To(Equal("sup1"))
		})

		It("should replace the cached entry in place and publish the previous status", func() {
			updated, err := state.UpdateLeaveRequestStatus(ctx, "leave2", approveDTO())

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(leave.StatusApproved))
			Expect(updated.SupervisorComment).To(Equal("Enjoy"))

			requests := state.LeaveRequests()
			Expect(requests).To(HaveLen(2))
			Expect(requests[1].ID).To(Equal("leave2"))
			Expect(requests[1].Status).To(Equal(leave.StatusApproved))
			Expect(state.PendingLeaveRequests()).To(BeEmpty())

			published := recorder.all()
			Expect(published).To(HaveLen(1))
			changed, ok := published[0].(*events.LeaveStatusChangedEvent)
			Expect(ok).To(BeTrue())
			Expect(changed.PreviousStatus).To(Equal("pending"))
			Expect(changed.SupervisorID).To(Equal("sup1"))
		})

		It("should keep the previous comment when the new one is empty", func() {
			dto := approveDTO()
			dto.Comment = ""

			updated, err := state.UpdateLeaveRequestStatus(ctx, "leave1", dto)

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.SupervisorComment).To(Equal("Approved. Enjoy your vacation!"))
		})

		It("should record a message and keep the cache on failure", func() {
			_, err := state.UpdateLeaveRequestStatus(ctx, "missing", approveDTO())

			Expect(err).To(MatchError(internal.ErrLeaveRequestNotFound))
			Expect(state.Err()).To(Equal("Failed to update leave request status. Please try again."))
			Expect(state.LeaveRequests()).To(HaveLen(2))
		})
	})

	Describe("submitting and approving a request", func() {
		It("should create a pending request from the minimal form and record the decision", func() {
			created, err := state.AddLeaveRequest(ctx, leave.CreateLeaveRequestDTO{
				EmployeeID: "emp1",
				Type:       leave.TypeUnpaid,
				StartDate:  "2023-07-10",
				EndDate:    "2023-07-12",
				Reason:     "x",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).NotTo(BeEmpty())
			Expect(created.Status).To(Equal(leave.StatusPending))

			updated, err := state.UpdateLeaveRequestStatus(ctx, created.ID, leave.UpdateStatusDTO{
				Status:         leave.StatusApproved,
				Comment:        "ok",
				SupervisorData: &leave.SupervisorData{ID: "sup1", Name: "Sarah", Signature: "sig"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(leave.StatusApproved))
			Expect(updated.SupervisorComment).To(Equal("ok"))
			Expect(updated.SupervisorName).To(Equal("Sarah"))
			Expect(updated.SupervisorSignature).To(Equal("sig"))

			cached, ok := state.LeaveRequestByID(created.ID)
			Expect(ok).To(BeTrue())
			Expect(cached.Status).To(Equal(leave.StatusApproved))
		})
	})

	Describe("AddEmployeeSignature", func() {
		It("should store the signature on the cached entry", func() {
			Expect(state.Refresh(ctx)).To(Succeed())

			_, err := state.AddEmployeeSignature(ctx, "leave2", "data:image/png;base64,abc")

			Expect(err).NotTo(HaveOccurred())
			cached, ok := state.LeaveRequestByID("leave2")
			Expect(ok).To(BeTrue())
			Expect(cached.EmployeeSignature).To(Equal("data:image/png;base64,abc"))
			Expect(cached.UpdatedAt).To(Equal(clock))
		})
	})

	Describe("Selectors", func() {
		It("should filter by employee and return copies", func() {
			Expect(state.Refresh(ctx)).To(Succeed())

			mine := state.UserLeaveRequests("emp1")
			Expect(mine).To(HaveLen(2))
			Expect(state.UserLeaveRequests("emp2")).To(BeEmpty())

			mine[0].Status = leave.StatusRejected
			cached, _ := state.LeaveRequestByID(mine[0].ID)
			Expect(cached.Status).To(Equal(leave.StatusApproved))
		})
	})
})
