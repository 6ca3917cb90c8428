package leave

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/leave-management/internal"
)

// Backend is the storage or transport behind the leave service.
type Backend interface {
	List(ctx context.Context) ([]*LeaveRequest, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]*LeaveRequest, error)
	ListPending(ctx context.Context) ([]*LeaveRequest, error)
	GetByID(ctx context.Context, id string) (*LeaveRequest, error)
	Create(ctx context.Context, dto CreateLeaveRequestDTO) (*LeaveRequest, error)
	UpdateStatus(ctx context.Context, id string, dto UpdateStatusDTO) (*LeaveRequest, error)
	AddEmployeeSignature(ctx context.Context, id string, dto SignatureDTO) (*LeaveRequest, error)
}

// ServiceAPI is what state objects and HTTP handlers consume.
type ServiceAPI interface {
	Backend
}

type ServiceOption func(*Service)

// WithFallback answers from fb whenever the primary backend fails with a network or server error.
func WithFallback(fb Backend) ServiceOption {
	return func(s *Service) {
		s.fallback = fb
	}
}

// WithDegradedReads turns failed collection reads into empty collections.
func WithDegradedReads() ServiceOption {
	return func(s *Service) {
		s.degradeReads = true
	}
}

// WithStrictTransitions rejects status updates on requests that are no longer pending.
func WithStrictTransitions() ServiceOption {
	return func(s *Service) {
		s.strict = true
	}
}

type Service struct {
	backend      Backend
	fallback     Backend
	degradeReads bool
	strict       bool
	logger       *slog.Logger
}

func NewService(backend Backend, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		backend: backend,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]*LeaveRequest, error) {
	return s.readMany(ctx, "list leave requests", func(b Backend) ([]*LeaveRequest, error) {
		return b.List(ctx)
	})
}

func (s *Service) ListByEmployee(ctx context.Context, employeeID string) ([]*LeaveRequest, error) {
	return s.readMany(ctx, "list employee leave requests", func(b Backend) ([]*LeaveRequest, error) {
		return b.ListByEmployee(ctx, employeeID)
	})
}

func (s *Service) ListPending(ctx context.Context) ([]*LeaveRequest, error) {
	return s.readMany(ctx, "list pending leave requests", func(b Backend) ([]*LeaveRequest, error) {
		return b.ListPending(ctx)
	})
}

func (s *Service) GetByID(ctx context.Context, id string) (*LeaveRequest, error) {
	return s.writeOne(ctx, "get leave request", func(b Backend) (*LeaveRequest, error) {
		return b.GetByID(ctx, id)
	})
}

func (s *Service) Create(ctx context.Context, dto CreateLeaveRequestDTO) (*LeaveRequest, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("leave request validation failed", "error", err, "employee_id", dto.EmployeeID)
		return nil, err
	}

	request, err := s.writeOne(ctx, "create leave request", func(b Backend) (*LeaveRequest, error) {
		return b.Create(ctx, dto)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("leave request created",
		"leave_id", request.ID,
		"employee_id", request.EmployeeID,
		"type", request.Type)
	return request, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, dto UpdateStatusDTO) (*LeaveRequest, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("leave status validation failed", "error", err, "leave_id", id)
		return nil, err
	}

	if s.strict {
		current, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.IsDecided() {
			s.logger.Warn("rejected status update on decided leave request",
				"leave_id", id,
				"current_status", current.Status,
				"requested_status", dto.Status)
			return nil, internal.ErrInvalidLeaveStatus
		}
	}

	request, err := s.writeOne(ctx, "update leave request status", func(b Backend) (*LeaveRequest, error) {
		return b.UpdateStatus(ctx, id, dto)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("leave request status updated",
		"leave_id", id,
		"status", request.Status,
		"supervisor_id", request.SupervisorID)
	return request, nil
}

func (s *Service) AddEmployeeSignature(ctx context.Context, id string, dto SignatureDTO) (*LeaveRequest, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	return s.writeOne(ctx, "add employee signature", func(b Backend) (*LeaveRequest, error) {
		return b.AddEmployeeSignature(ctx, id, dto)
	})
}

func (s *Service) readMany(ctx context.Context, op string, call func(Backend) ([]*LeaveRequest, error)) ([]*LeaveRequest, error) {
	requests, err := call(s.backend)
	if err == nil {
		if requests == nil {
			requests = []*LeaveRequest{}
		}
		return requests, nil
	}

	if ctx.Err() != nil {
		return nil, err
	}

	if s.fallback != nil && internal.IsTransient(err) {
		s.logger.Warn("backend unavailable, serving fallback data", "operation", op, "error", err)
		return call(s.fallback)
	}

	if s.degradeReads {
		s.logger.Error("read failed, returning empty collection", "operation", op, "error", err)
		return []*LeaveRequest{}, nil
	}

	s.logger.Error("read failed", "operation", op, "error", err)
	return nil, err
}

func (s *Service) writeOne(ctx context.Context, op string, call func(Backend) (*LeaveRequest, error)) (*LeaveRequest, error) {
	request, err := call(s.backend)
	if err != nil && ctx.Err() == nil && s.fallback != nil && internal.IsTransient(err) {
		s.logger.Warn("backend unavailable, serving fallback data", "operation", op, "error", err)
		request, err = call(s.fallback)
	}
	if err != nil {
		s.logger.Error("operation failed", "operation", op, "error", err)
		return nil, err
	}
	if request == nil {
		return nil, internal.ErrLeaveRequestNotFound
	}
	return request, nil
}
