package user

import (
	"context"
	"log/slog"
	"sync"

	"github.com/frahmantamala/leave-management/internal"
	"golang.org/x/sync/singleflight"
)

// Session persists the authenticated identity between CLI invocations.
type Session interface {
	Save(token string, user interface{}) error
	LoadUser(dst interface{}) (bool, error)
	Clear() error
}

// State is the client-side cache of users plus the login/logout flow.
type State struct {
	service ServiceAPI
	session Session
	logger  *slog.Logger

	mu       sync.RWMutex
	users    []*User
	inflight int
	lastErr  string

	refreshGroup singleflight.Group
}

func NewState(service ServiceAPI, session Session, logger *slog.Logger) *State {
	return &State{
		service: service,
		session: session,
		logger:  logger,
		users:   []*User{},
	}
}

// Refresh replaces the cached users. A failed refresh keeps the previous collection.
// Concurrent calls share one fetch; a caller whose ctx is done leaves the cache alone.
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
		s.end(messageOr(res.Err, "Failed to fetch users"))
		return res.Err
	}

	users, _ := res.Val.([]*User)
	s.mu.Lock()
	s.users = cloneAll(users)
	s.mu.Unlock()
	s.end("")
	return nil
}

// AddUser registers a user after checking the email against the loaded collection.
// The check is exact and case-sensitive; the backend remains the authority.
func (s *State) AddUser(ctx context.Context, dto RegisterUserDTO) (*User, error) {
	if _, taken := s.UserByEmail(dto.Email); taken {
		s.setErr(internal.ErrEmailAlreadyExists.Message)
		return nil, internal.ErrEmailAlreadyExists
	}

	s.begin()
	created, err := s.service.Register(ctx, dto)
	if err != nil {
		s.end(messageOr(err, "Failed to create user"))
		return nil, err
	}

	s.mu.Lock()
	s.users = append(s.users, created.Clone())
	s.mu.Unlock()
	s.end("")
	return created.Clone(), nil
}

// GetUserByID always asks the service; it does not consult or update the cache.
func (s *State) GetUserByID(ctx context.Context, id string) (*User, error) {
	s.begin()
	u, err := s.service.GetByID(ctx, id)
	if err != nil {
		s.end(messageOr(err, "Failed to fetch user"))
		return nil, err
	}
	s.end("")
	return u, nil
}

// AllUsers fetches a fresh list without touching the cache.
func (s *State) AllUsers(ctx context.Context) ([]*User, error) {
	s.begin()
	users, err := s.service.List(ctx)
	if err != nil {
		s.end(messageOr(err, "Failed to fetch users"))
		return []*User{}, err
	}
	s.end("")
	return users, nil
}

func (s *State) ChangePassword(ctx context.Context, id string, dto ChangePasswordDTO) error {
	s.begin()
	if err := s.service.ChangePassword(ctx, id, dto); err != nil {
		s.end(messageOr(err, "Failed to change password"))
		return err
	}
	s.end("")
	return nil
}

// Authenticate logs in and persists the token and user in the session.
func (s *State) Authenticate(ctx context.Context, email, password string) (*User, error) {
	s.begin()
	result, err := s.service.Login(ctx, LoginDTO{Email: email, Password: password})
	if err != nil {
		s.end(messageOr(err, "Authentication failed"))
		return nil, err
	}

	if err := s.session.Save(result.Token, result.User); err != nil {
		s.end("Authentication failed")
		return nil, internal.NewInternalError("failed to persist session", err)
	}
	s.end("")
	return result.User, nil
}

func (s *State) Logout() error {
	return s.session.Clear()
}

// CurrentUser returns the user stored in the session, if any.
func (s *State) CurrentUser() (*User, bool) {
	var u User
	ok, err := s.session.LoadUser(&u)
	if err != nil {
		s.logger.Error("failed to load session user", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return &u, true
}

func (s *State) Users() []*User {
	return s.filter(func(*User) bool { return true })
}

func (s *State) Supervisors() []*User {
	return s.filter(func(u *User) bool { return u.IsSupervisor() })
}

// UserByEmail looks up a cached user by exact email.
func (s *State) UserByEmail(email string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u.Clone(), true
		}
	}
	return nil, false
}

// LookupUser resolves a user from the cache and only asks the service on a miss.
func (s *State) LookupUser(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	for _, u := range s.users {
		if u.ID == id {
			s.mu.RUnlock()
			return u.Clone(), nil
		}
	}
	s.mu.RUnlock()
	return s.GetUserByID(ctx, id)
}

// Departments maps user id to department for every cached user that has one.
func (s *State) Departments() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.users))
	for _, u := range s.users {
		if u.Department != "" {
			out[u.ID] = u.Department
		}
	}
	return out
}

func (s *State) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

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

func (s *State) setErr(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
}

func (s *State) filter(keep func(*User) bool) []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		if keep(u) {
			out = append(out, u.Clone())
		}
	}
	return out
}

func messageOr(err error, fallback string) string {
	if appErr, ok := internal.IsAppError(err); ok && appErr.GetDetailedMessage() != "" {
		return appErr.GetDetailedMessage()
	}
	return fallback
}

func cloneAll(users []*User) []*User {
	out := make([]*User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Clone())
	}
	return out
}
