// Package rest talks to the leave endpoints of the backend through the gateway.
package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/leave"
)

// Doer is the gateway surface the adapter needs.
type Doer interface {
	Do(ctx context.Context, method, path string, body, out interface{}) error
}

type LeaveClient struct {
	api Doer
}

func NewLeaveClient(api Doer) *LeaveClient {
	return &LeaveClient{api: api}
}

func (c *LeaveClient) List(ctx context.Context) ([]*leave.LeaveRequest, error) {
	return c.list(ctx, "/leave-requests")
}

func (c *LeaveClient) ListByEmployee(ctx context.Context, employeeID string) ([]*leave.LeaveRequest, error) {
	return c.list(ctx, "/leave-requests/user/"+url.PathEscape(employeeID))
}

func (c *LeaveClient) ListPending(ctx context.Context) ([]*leave.LeaveRequest, error) {
	return c.list(ctx, "/leave-requests/pending")
}

func (c *LeaveClient) GetByID(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	var out leave.LeaveRequest
	if err := c.api.Do(ctx, http.MethodGet, "/leave-requests/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

func (c *LeaveClient) Create(ctx context.Context, dto leave.CreateLeaveRequestDTO) (*leave.LeaveRequest, error) {
	var out leave.LeaveRequest
	if err := c.api.Do(ctx, http.MethodPost, "/leave-requests", dto, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *LeaveClient) UpdateStatus(ctx context.Context, id string, dto leave.UpdateStatusDTO) (*leave.LeaveRequest, error) {
	var out leave.LeaveRequest
	if err := c.api.Do(ctx, http.MethodPatch, "/leave-requests/"+url.PathEscape(id)+"/status", dto, &out); err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

func (c *LeaveClient) AddEmployeeSignature(ctx context.Context, id string, dto leave.SignatureDTO) (*leave.LeaveRequest, error) {
	var out leave.LeaveRequest
	if err := c.api.Do(ctx, http.MethodPatch, "/leave-requests/"+url.PathEscape(id)+"/signature", dto, &out); err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

// list tolerates a null body by returning an empty slice.
func (c *LeaveClient) list(ctx context.Context, path string) ([]*leave.LeaveRequest, error) {
	var out []*leave.LeaveRequest
	if err := c.api.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []*leave.LeaveRequest{}
	}
	return out, nil
}

func notFound(err error) error {
	if internal.IsType(err, internal.ErrorTypeNotFound) {
		return internal.ErrLeaveRequestNotFound.WithCause(err)
	}
	return err
}
