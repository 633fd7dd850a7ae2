// Package session tracks the signed-in user and its derived flags.
package session

import (
	"context"

	"pkt.systems/dlmgr/internal/logx"
	"pkt.systems/dlmgr/internal/observable"
	"pkt.systems/dlmgr/schema"
	"pkt.systems/pslog"
)

// API is the subset of the gateway the session needs.
type API interface {
	Login(ctx context.Context, username, password string) (schema.Token, error)
	GetMe(ctx context.Context) (schema.User, error)
	DeleteAccount(ctx context.Context) error
}

// Credentials is the subset of the credential store the session needs.
type Credentials interface {
	Has() bool
	Clear() error
}

// Session holds the current user. A non-nil user implies a held credential.
type Session struct {
	api   API
	creds Credentials
	log   pslog.Logger

	user          *observable.Cell[*schema.User]
	authenticated *observable.Derived[bool]
	isAdmin       *observable.Derived[bool]
}

// New constructs a Session with no user loaded.
func New(api API, creds Credentials, logger pslog.Logger) *Session {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	user := observable.New[*schema.User](nil)
	return &Session{
		api:   api,
		creds: creds,
		log:   logger,
		user:  user,
		authenticated: observable.Derive[*schema.User](user, func(u *schema.User) bool {
			return u != nil
		}),
		isAdmin: observable.Derive[*schema.User](user, func(u *schema.User) bool {
			return u != nil && u.IsAdmin
		}),
	}
}

// User is the current user, nil when signed out or not yet loaded.
func (s *Session) User() observable.Readable[*schema.User] {
	return s.user
}

// Authenticated is true while a user is loaded.
func (s *Session) Authenticated() observable.Readable[bool] {
	return s.authenticated
}

// IsAdmin is true while the loaded user is an administrator.
func (s *Session) IsAdmin() observable.Readable[bool] {
	return s.isAdmin
}

// LoadUser resolves the held credential to a user. Without a credential the
// user becomes nil. Any failure is treated as an invalid credential: it is
// cleared and the user becomes nil. The failure is returned for reporting.
func (s *Session) LoadUser(ctx context.Context) error {
	if !s.creds.Has() {
		s.user.Set(nil)
		return nil
	}
	user, err := s.api.GetMe(ctx)
	if err != nil {
		s.log.Info("session load failed", "err", err)
		if clearErr := s.creds.Clear(); clearErr != nil {
			s.log.Warn("session credential clear failed", "err", clearErr)
		}
		s.user.Set(nil)
		return err
	}
	if !s.creds.Has() {
		// Signed out while the request was in flight.
		s.user.Set(nil)
		return schema.ErrNotAuthenticated
	}
	logx.WithSessionUser(s.log, &user).Debug("session load ok", "admin", user.IsAdmin)
	s.user.Set(&user)
	return nil
}

// Login signs in and loads the user.
func (s *Session) Login(ctx context.Context, username, password string) error {
	if _, err := s.api.Login(ctx, username, password); err != nil {
		return err
	}
	return s.LoadUser(ctx)
}

// Logout clears the credential and the user without contacting the backend.
func (s *Session) Logout() {
	if err := s.creds.Clear(); err != nil {
		s.log.Warn("session credential clear failed", "err", err)
	}
	s.user.Set(nil)
	s.log.Debug("session logout ok")
}

// DeleteAccount deletes the signed-in account and logs out.
func (s *Session) DeleteAccount(ctx context.Context) error {
	if err := s.api.DeleteAccount(ctx); err != nil {
		return err
	}
	s.Logout()
	return nil
}

// Close detaches the derived flags.
func (s *Session) Close() {
	s.authenticated.Close()
	s.isAdmin.Close()
}
