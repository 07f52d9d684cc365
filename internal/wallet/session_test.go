package wallet

import (
	"context"
	"errors"
	"testing"
)

type fakeConnector struct {
	account       string
	accountErr    error
	connectErr    error
	disconnectErr error
	connectCalls  int
}

func (f *fakeConnector) Account(context.Context) (string, error) {
	if f.accountErr != nil {
		return "", f.accountErr
	}
	return f.account, nil
}

func (f *fakeConnector) Connect(context.Context, string) (string, error) {
	f.connectCalls++
	if f.connectErr != nil {
		return "", f.connectErr
	}
	return f.account, nil
}

func (f *fakeConnector) Disconnect(context.Context) error { return f.disconnectErr }

func TestSession_ResumeAdoptsConnectedAccount(t *testing.T) {
	s := NewSession(&fakeConnector{account: "SP1"}, "crown")
	if s.IsSignedIn() {
		t.Fatal("new session IsSignedIn() = true, want false")
	}
	if err := s.Resume(context.Background()); err != nil {
		t.Fatalf("Resume returned error: %v", err)
	}
	if !s.IsSignedIn() || s.CurrentAccount() != "SP1" {
		t.Fatalf("CurrentAccount = %q, want SP1", s.CurrentAccount())
	}
}

func TestSession_ResumeWithoutAccountStaysSignedOut(t *testing.T) {
	s := NewSession(&fakeConnector{accountErr: ErrNoSession}, "crown")
	if err := s.Resume(context.Background()); err != nil {
		t.Fatalf("Resume returned error: %v", err)
	}
	if s.IsSignedIn() {
		t.Fatal("IsSignedIn() = true, want false")
	}
}

func TestSession_SignInAndOut(t *testing.T) {
	conn := &fakeConnector{account: "SP2", disconnectErr: errors.New("bridge down")}
	s := NewSession(conn, "crown")

	if err := s.SignIn(context.Background()); err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if s.CurrentAccount() != "SP2" || conn.connectCalls != 1 {
		t.Fatalf("after SignIn account=%q calls=%d", s.CurrentAccount(), conn.connectCalls)
	}

	if err := s.SignOut(context.Background()); err == nil {
		t.Fatal("SignOut returned nil error, want bridge error")
	}
	if s.IsSignedIn() {
		t.Fatal("SignOut should forget the account even when the bridge fails")
	}
}

func TestSession_SignInDeclined(t *testing.T) {
	s := NewSession(&fakeConnector{connectErr: ErrDeclined}, "crown")
	err := s.SignIn(context.Background())
	if !errors.Is(err, ErrDeclined) {
		t.Fatalf("SignIn error = %v, want ErrDeclined", err)
	}
	if s.IsSignedIn() {
		t.Fatal("IsSignedIn() = true after declined sign in")
	}
}
