package user

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/leave-management/internal"
)

// Backend is the storage or transport behind the user service.
type Backend interface {
	List(ctx context.Context) ([]*User, error)
	Register(ctx context.Context, dto RegisterUserDTO) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Login(ctx context.Context, dto LoginDTO) (*AuthResult, error)
	ChangePassword(ctx context.Context, id string, dto ChangePasswordDTO) error
}

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

type Service struct {
	backend  Backend
	fallback Backend
	logger   *slog.Logger
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

func (s *Service) List(ctx context.Context) ([]*User, error) {
	users, err := s.backend.List(ctx)
	if err != nil && s.useFallback(ctx, "list users", err) {
		users, err = s.fallback.List(ctx)
	}
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}
	if users == nil {
		users = []*User{}
	}
	return users, nil
}

func (s *Service) Register(ctx context.Context, dto RegisterUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("user registration validation failed", "error", err, "email", dto.Email)
		return nil, err
	}

	u, err := s.backend.Register(ctx, dto)
	if err != nil && s.useFallback(ctx, "register user", err) {
		u, err = s.fallback.Register(ctx, dto)
	}
	if err != nil {
		s.logger.Error("failed to register user", "error", err, "email", dto.Email)
		return nil, err
	}

	s.logger.Info("user registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := s.backend.GetByID(ctx, id)
	if err != nil && s.useFallback(ctx, "get user", err) {
		u, err = s.fallback.GetByID(ctx, id)
	}
	if err != nil {
		s.logger.Error("failed to get user", "error", err, "user_id", id)
		return nil, err
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, dto LoginDTO) (*AuthResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	result, err := s.backend.Login(ctx, dto)
	if err != nil && s.useFallback(ctx, "login", err) {
		result, err = s.fallback.Login(ctx, dto)
	}
	if err != nil {
		s.logger.Warn("login failed", "error", err, "email", dto.Email)
		return nil, err
	}
	if result == nil || result.User == nil || result.Token == "" {
		return nil, internal.ErrInvalidCredentials
	}

	s.logger.Info("user logged in", "user_id", result.User.ID)
	return result, nil
}

func (s *Service) ChangePassword(ctx context.Context, id string, dto ChangePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	err := s.backend.ChangePassword(ctx, id, dto)
	if err != nil && s.useFallback(ctx, "change password", err) {
		err = s.fallback.ChangePassword(ctx, id, dto)
	}
	if err != nil {
		s.logger.Warn("password change failed", "error", err, "user_id", id)
		return err
	}

	s.logger.Info("password changed", "user_id", id)
	return nil
}

func (s *Service) useFallback(ctx context.Context, op string, err error) bool {
	if s.fallback == nil || ctx.Err() != nil || !internal.IsTransient(err) {
		return false
	}
	s.logger.Warn("backend unavailable, serving fallback data", "operation", op, "error", err)
	return true
}
