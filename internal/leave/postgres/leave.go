package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/leave"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LeaveRepository implements leave.Backend using GORM.
type LeaveRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLeaveRepository(db *gorm.DB) *LeaveRepository {
	return &LeaveRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *LeaveRepository) List(ctx context.Context) ([]*leave.LeaveRequest, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *LeaveRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*leave.LeaveRequest, error) {
	return r.find(r.db.WithContext(ctx).Where("employee_id = ?", employeeID))
}

func (r *LeaveRepository) ListPending(ctx context.Context) ([]*leave.LeaveRequest, error) {
	return r.find(r.db.WithContext(ctx).Where("status = ?", string(leave.StatusPending)))
}

func (r *LeaveRepository) GetByID(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	m, err := r.first(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return leave.FromDataModel(m), nil
}

func (r *LeaveRepository) Create(ctx context.Context, dto leave.CreateLeaveRequestDTO) (*leave.LeaveRequest, error) {
	l := leave.NewLeaveRequest("leave-"+uuid.NewString(), dto, r.now())
	if err := r.db.WithContext(ctx).Create(leave.ToDataModel(l)).Error; err != nil {
		return nil, err
	}
	return l, nil
}

func (r *LeaveRepository) UpdateStatus(ctx context.Context, id string, dto leave.UpdateStatusDTO) (*leave.LeaveRequest, error) {
	return r.mutate(ctx, id, func(l *leave.LeaveRequest) {
		l.ApplyStatus(dto, r.now())
	})
}

func (r *LeaveRepository) AddEmployeeSignature(ctx context.Context, id string, dto leave.SignatureDTO) (*leave.LeaveRequest, error) {
	return r.mutate(ctx, id, func(l *leave.LeaveRequest) {
		l.ApplyEmployeeSignature(dto.Signature, r.now())
	})
}

// mutate loads, changes and saves one row inside a transaction.
func (r *LeaveRepository) mutate(ctx context.Context, id string, apply func(*leave.LeaveRequest)) (*leave.LeaveRequest, error) {
	var updated *leave.LeaveRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := r.first(tx, id)
		if err != nil {
			return err
		}
		l := leave.FromDataModel(m)
		apply(l)
		if err := tx.Save(leave.ToDataModel(l)).Error; err != nil {
			return err
		}
		updated = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *LeaveRepository) first(tx *gorm.DB, id string) (*leaveDatamodel.LeaveRequest, error) {
	var m leaveDatamodel.LeaveRequest
	if err := tx.Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrLeaveRequestNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *LeaveRepository) find(q *gorm.DB) ([]*leave.LeaveRequest, error) {
	var rows []*leaveDatamodel.LeaveRequest
	if err := q.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*leave.LeaveRequest, 0, len(rows))
	for _, m := range rows {
		out = append(out, leave.FromDataModel(m))
	}
	return out, nil
}
