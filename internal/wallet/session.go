package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Connector is the subset of Bridge a Session needs.
type Connector interface {
	Account(ctx context.Context) (string, error)
	Connect(ctx context.Context, appName string) (string, error)
	Disconnect(ctx context.Context) error
}

var _ Connector = (*Bridge)(nil)

// Session tracks which account, if any, is signed in. It holds no keys and
// persists nothing; the bridge owns both.
type Session struct {
	conn    Connector
	appName string

	mu      sync.RWMutex
	account string
}

// NewSession builds a signed-out session backed by conn.
func NewSession(conn Connector, appName string) *Session {
	return &Session{conn: conn, appName: appName}
}

// Resume adopts the bridge's connected account, if there is one.
func (s *Session) Resume(ctx context.Context) error {
	account, err := s.conn.Account(ctx)
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("resume session: %w", err)
	}
	s.setAccount(account)
	return nil
}

// IsSignedIn reports whether an account is available for signing.
func (s *Session) IsSignedIn() bool {
	return s.CurrentAccount() != ""
}

// CurrentAccount returns the signed-in account, or "" when signed out.
func (s *Session) CurrentAccount() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account
}

// SignIn runs the bridge's connect flow and blocks until it completes.
func (s *Session) SignIn(ctx context.Context) error {
	account, err := s.conn.Connect(ctx, s.appName)
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	s.setAccount(account)
	return nil
}

// SignOut forgets the account locally even when the bridge call fails.
func (s *Session) SignOut(ctx context.Context) error {
	s.setAccount("")
	if err := s.conn.Disconnect(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

func (s *Session) setAccount(account string) {
	s.mu.Lock()
	s.account = account
	s.mu.Unlock()
}
