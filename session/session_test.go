package session

import (
	"context"
	"errors"
	"testing"

	"pkt.systems/dlmgr/internal/credential"
	"pkt.systems/dlmgr/schema"
)

type fakeAPI struct {
	creds     *credential.Store
	me        schema.User
	meErr     error
	loginErr  error
	deleteErr error
	meCalls   int
	deleted   bool
}

func (a *fakeAPI) Login(ctx context.Context, username, password string) (schema.Token, error) {
	if a.loginErr != nil {
		return schema.Token{}, a.loginErr
	}
	_ = a.creds.Set("tok-" + username)
	return schema.Token{AccessToken: "tok-" + username, TokenType: "bearer"}, nil
}

func (a *fakeAPI) GetMe(ctx context.Context) (schema.User, error) {
	a.meCalls++
	return a.me, a.meErr
}

func (a *fakeAPI) DeleteAccount(ctx context.Context) error {
	if a.deleteErr != nil {
		return a.deleteErr
	}
	a.deleted = true
	return nil
}

func newTestSession(t *testing.T) (*Session, *fakeAPI, *credential.Store) {
	t.Helper()
	creds, err := credential.NewStore(nil, nil)
	if err != nil {
		t.Fatalf("credential store: %v", err)
	}
	api := &fakeAPI{creds: creds, me: schema.User{ID: 1, Username: "alice", IsActive: true}}
	s := New(api, creds, nil)
	t.Cleanup(s.Close)
	return s, api, creds
}

func TestLoadUserWithoutCredential(t *testing.T) {
	s, api, _ := newTestSession(t)
	if err := s.LoadUser(context.Background()); err != nil {
		t.Fatalf("load user: %v", err)
	}
	if s.User().Get() != nil || s.Authenticated().Get() {
		t.Fatalf("expected no user")
	}
	if api.meCalls != 0 {
		t.Fatalf("expected no who-am-i call without credential")
	}
}

func TestLoadUserPublishesIdentity(t *testing.T) {
	s, api, creds := newTestSession(t)
	api.me.IsAdmin = true
	_ = creds.Set("tok")

	var auth []bool
	s.Authenticated().Subscribe(func(v bool) { auth = append(auth, v) })

	if err := s.LoadUser(context.Background()); err != nil {
		t.Fatalf("load user: %v", err)
	}
	if u := s.User().Get(); u == nil || u.Username != "alice" {
		t.Fatalf("unexpected user %+v", u)
	}
	if !s.Authenticated().Get() || !s.IsAdmin().Get() {
		t.Fatalf("expected authenticated admin")
	}
	if len(auth) != 2 || auth[0] || !auth[1] {
		t.Fatalf("unexpected authenticated sequence %v", auth)
	}
}

func TestLoadUserFailureClearsCredential(t *testing.T) {
	s, api, creds := newTestSession(t)
	_ = creds.Set("expired")
	api.meErr = errors.New("Could not validate credentials")

	if err := s.LoadUser(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if creds.Has() {
		t.Fatalf("expected credential cleared")
	}
	if s.User().Get() != nil || s.IsAdmin().Get() {
		t.Fatalf("expected no user")
	}
}

func TestLogoutWithoutNetwork(t *testing.T) {
	s, api, creds := newTestSession(t)
	_ = creds.Set("tok")
	if err := s.LoadUser(context.Background()); err != nil {
		t.Fatalf("load user: %v", err)
	}
	calls := api.meCalls
	s.Logout()
	if creds.Has() || s.User().Get() != nil || s.Authenticated().Get() {
		t.Fatalf("expected signed out state")
	}
	if api.meCalls != calls {
		t.Fatalf("logout must not contact the backend")
	}
}

func TestLoginLoadsUser(t *testing.T) {
	s, api, creds := newTestSession(t)
	if err := s.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if got, _ := creds.Get(); got != "tok-alice" {
		t.Fatalf("unexpected token %q", got)
	}
	if !s.Authenticated().Get() {
		t.Fatalf("expected authenticated")
	}

	api.loginErr = errors.New("Incorrect username or password")
	s.Logout()
	if err := s.Login(context.Background(), "alice", "bad"); err == nil {
		t.Fatalf("expected login error")
	}
	if s.Authenticated().Get() {
		t.Fatalf("expected unauthenticated after failed login")
	}
}

func TestDeleteAccount(t *testing.T) {
	s, api, creds := newTestSession(t)
	_ = creds.Set("tok")
	_ = s.LoadUser(context.Background())

	api.deleteErr = errors.New("nope")
	if err := s.DeleteAccount(context.Background()); err == nil {
		t.Fatalf("expected delete error")
	}
	if !creds.Has() {
		t.Fatalf("failed delete must keep the credential")
	}

	api.deleteErr = nil
	if err := s.DeleteAccount(context.Background()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !api.deleted || creds.Has() || s.User().Get() != nil {
		t.Fatalf("expected account deleted and signed out")
	}
}
