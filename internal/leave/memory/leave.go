// Package memory is an in-process leave backend seeded with demo data.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/leave"
	"github.com/google/uuid"
)

const demoSignature = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAASwA..."

// SeedLeaveRequests returns a fresh copy of the demo dataset.
func SeedLeaveRequests() []*leave.LeaveRequest {
	return []*leave.LeaveRequest{
		{
			ID:                  "leave1",
			EmployeeID:          "emp1",
			EmployeeName:        "John Doe",
			StartDate:           "2023-06-01",
			EndDate:             "2023-06-05",
			Type:                leave.TypePaid,
			Reason:              "Family vacation",
			Status:              leave.StatusApproved,
			CreatedAt:           time.Date(2023, 5, 20, 10, 30, 0, 0, time.UTC),
			UpdatedAt:           time.Date(2023, 5, 22, 14, 45, 0, 0, time.UTC),
			SupervisorID:        "sup1",
			SupervisorName:      "Sarah Manager",
			SupervisorComment:   "Approved. Enjoy your vacation!",
			SupervisorSignature: demoSignature,
			EmployeeSignature:   demoSignature,
		},
		{
			ID:           "leave2",
			EmployeeID:   "emp1",
			EmployeeName: "John Doe",
			StartDate:    "2023-07-10",
			EndDate:      "2023-07-12",
			Type:         leave.TypeUnpaid,
			Reason:       "Personal matters",
			Status:       leave.StatusPending,
			CreatedAt:    time.Date(2023, 7, 1, 8, 20, 0, 0, time.UTC),
			UpdatedAt:    time.Date(2023, 7, 1, 8, 20, 0, 0, time.UTC),
		},
	}
}

// LeaveStore keeps leave requests in memory. Mutations are visible to later reads.
type LeaveStore struct {
	mu       sync.RWMutex
	requests []*leave.LeaveRequest
	now      func() time.Time
}

func NewLeaveStore(seed []*leave.LeaveRequest) *LeaveStore {
	requests := make([]*leave.LeaveRequest, 0, len(seed))
	for _, l := range seed {
		requests = append(requests, l.Clone())
	}
	return &LeaveStore{
		requests: requests,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// NewSeededLeaveStore returns a store holding the demo dataset.
func NewSeededLeaveStore() *LeaveStore {
	return NewLeaveStore(SeedLeaveRequests())
}

// WithClock overrides the time source used for timestamps.
func (s *LeaveStore) WithClock(now func() time.Time) *LeaveStore {
	s.now = now
	return s
}

func (s *LeaveStore) List(_ context.Context) ([]*leave.LeaveRequest, error) {
	return s.filter(func(*leave.LeaveRequest) bool { return true }), nil
}

func (s *LeaveStore) ListByEmployee(_ context.Context, employeeID string) ([]*leave.LeaveRequest, error) {
	return s.filter(func(l *leave.LeaveRequest) bool { return l.EmployeeID == employeeID }), nil
}

func (s *LeaveStore) ListPending(_ context.Context) ([]*leave.LeaveRequest, error) {
	return s.filter(func(l *leave.LeaveRequest) bool { return l.Status == leave.StatusPending }), nil
}

func (s *LeaveStore) GetByID(_ context.Context, id string) (*leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l := s.find(id); l != nil {
		return l.Clone(), nil
	}
	return nil, internal.ErrLeaveRequestNotFound
}

func (s *LeaveStore) Create(_ context.Context, dto leave.CreateLeaveRequestDTO) (*leave.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := leave.NewLeaveRequest("leave-"+uuid.NewString(), dto, s.now())
	s.requests = append(s.requests, l)
	return l.Clone(), nil
}

func (s *LeaveStore) UpdateStatus(_ context.Context, id string, dto leave.UpdateStatusDTO) (*leave.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.find(id)
	if l == nil {
		return nil, internal.ErrLeaveRequestNotFound
	}
	l.ApplyStatus(dto, s.now())
	return l.Clone(), nil
}

func (s *LeaveStore) AddEmployeeSignature(_ context.Context, id string, dto leave.SignatureDTO) (*leave.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.find(id)
	if l == nil {
		return nil, internal.ErrLeaveRequestNotFound
	}
	l.ApplyEmployeeSignature(dto.Signature, s.now())
	return l.Clone(), nil
}

// find must be called with the lock held.
func (s *LeaveStore) find(id string) *leave.LeaveRequest {
	for _, l := range s.requests {
		if l.ID == id {
			return l
		}
	}
	return nil
}

func (s *LeaveStore) filter(keep func(*leave.LeaveRequest) bool) []*leave.LeaveRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*leave.LeaveRequest, 0, len(s.requests))
	for _, l := range s.requests {
		if keep(l) {
			out = append(out, l.Clone())
		}
	}
	return out
}
