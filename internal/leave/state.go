package leave

import (
	"context"
	"log/slog"
	"sync"

	"github.com/frahmantamala/leave-management/internal/core/events"
	"golang.org/x/sync/singleflight"
)

const (
	errMsgFetch     = "Failed to fetch leave requests. Please try again later."
	errMsgCreate    = "Failed to create leave request. Please try again."
	errMsgUpdate    = "Failed to update leave request status. Please try again."
	errMsgSignature = "Failed to add signature. Please try again."
)

type StateOption func(*State)

// WithPublisher makes the state announce submissions and decisions after reconciling them.
func WithPublisher(p events.Publisher) StateOption {
	return func(s *State) {
		s.publisher = p
	}
}

// State is the client-side cache of leave requests. Mutations go through the service and
// are folded into the cached collection; read accessors never perform I/O.
type State struct {
	service   ServiceAPI
	publisher events.Publisher
	logger    *slog.Logger

	mu       sync.RWMutex
	requests []*LeaveRequest
	inflight int
	lastErr  string

	refreshGroup singleflight.Group
}

func NewState(service ServiceAPI, logger *slog.Logger, opts ...StateOption) *State {
	s := &State{
		service:  service,
		logger:   logger,
		requests: []*LeaveRequest{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh replaces the collection with the backend's. Concurrent calls share one fetch that
// outlives any single caller; each caller applies the result only while its own ctx is live.
func (s *State) Refresh(ctx context.Context) error {
	s.begin()
	flight := s.refreshGroup.DoChan("refresh", func() (interface{}, error) {
		return s.service.List(context.WithoutCancel(ctx))
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		s.end("")
		return ctx.Err()
	case res = <-flight:
	}
	if ctx.Err() != nil {
		s.end("")
		return ctx.Err()
	}

	if res.Err != nil {
		s.mu.Lock()
		s.requests = []*LeaveRequest{}
		s.mu.Unlock()
		s.end(errMsgFetch)
		return res.Err
	}

	requests, _ := res.Val.([]*LeaveRequest)
	s.mu.Lock()
	s.requests = cloneAll(requests)
	s.mu.Unlock()
	s.end("")
	return nil
}

func (s *State) AddLeaveRequest(ctx context.Context, dto CreateLeaveRequestDTO) (*LeaveRequest, error) {
	s.begin()
	created, err := s.service.Create(ctx, dto)
	if err != nil {
		s.end(errMsgCreate)
		return nil, err
	}

	s.mu.Lock()
	s.requests = append(s.requests, created.Clone())
	s.mu.Unlock()
	s.end("")

	s.publish(ctx, events.NewLeaveSubmittedEvent(created.Snapshot()))
	return created.Clone(), nil
}

func (s *State) UpdateLeaveRequestStatus(ctx context.Context, id string, dto UpdateStatusDTO) (*LeaveRequest, error) {
	previous := StatusPending
	if current, ok := s.LeaveRequestByID(id); ok {
		previous = current.Status
		if current.IsDecided() {
			s.logger.Warn("updating status of an already decided leave request",
				"leave_id", id,
				"current_status", current.Status,
				"requested_status", dto.Status)
		}
	}

	s.begin()
	updated, err := s.service.UpdateStatus(ctx, id, dto)
	if err != nil {
		s.end(errMsgUpdate)
		return nil, err
	}

	s.replace(updated)
	s.end("")

	s.publish(ctx, events.NewLeaveStatusChangedEvent(
		updated.Snapshot(),
		string(previous),
		updated.SupervisorID,
		updated.SupervisorName,
	))
	return updated.Clone(), nil
}

func (s *State) AddEmployeeSignature(ctx context.Context, id, signature string) (*LeaveRequest, error) {
	s.begin()
	updated, err := s.service.AddEmployeeSignature(ctx, id, SignatureDTO{Signature: signature})
	if err != nil {
		s.end(errMsgSignature)
		return nil, err
	}

	s.replace(updated)
	s.end("")
	return updated.Clone(), nil
}

// LeaveRequests returns every cached request in backend order.
func (s *State) LeaveRequests() []*LeaveRequest {
	return s.filter(func(*LeaveRequest) bool { return true })
}

func (s *State) UserLeaveRequests(employeeID string) []*LeaveRequest {
	return s.filter(func(l *LeaveRequest) bool { return l.EmployeeID == employeeID })
}

func (s *State) PendingLeaveRequests() []*LeaveRequest {
	return s.filter(func(l *LeaveRequest) bool { return l.Status == StatusPending })
}

func (s *State) LeaveRequestByID(id string) (*LeaveRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.requests {
		if l.ID == id {
			return l.Clone(), true
		}
	}
	return nil, false
}

func (s *State) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// Err returns the user-facing message of the last failed operation, or "".
func (s *State) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *State) begin() {
	s.mu.Lock()
	s.inflight++
	s.lastErr = ""
	s.mu.Unlock()
}

func (s *State) end(errMsg string) {
	s.mu.Lock()
	s.inflight--
	if errMsg != "" {
		s.lastErr = errMsg
	}
	s.mu.Unlock()
}

// replace swaps the cached entry with the same id. Unknown ids are left alone.
func (s *State) replace(updated *LeaveRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.requests {
		if l.ID == updated.ID {
			s.requests[i] = updated.Clone()
			return
		}
	}
}

func (s *State) filter(keep func(*LeaveRequest) bool) []*LeaveRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*LeaveRequest, 0, len(s.requests))
	for _, l := range s.requests {
		if keep(l) {
			out = append(out, l.Clone())
		}
	}
	return out
}

func (s *State) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSync(ctx, event); err != nil {
		s.logger.Error("failed to publish leave event", "event_type", event.EventType(), "error", err)
	}
}

func cloneAll(requests []*LeaveRequest) []*LeaveRequest {
	out := make([]*LeaveRequest, 0, len(requests))
	for _, l := range requests {
		out = append(out, l.Clone())
	}
	return out
}
