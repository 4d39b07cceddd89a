package core

import (
	"context"
	"errors"
	"testing"

	memorystore "github.com/open-rails/otpkit/storage/memory"
)

type fakeChallenger struct {
	dir      *fakeDirectory
	answer   string
	sessions map[string]string // session -> phone
	starts   int
}

func newFakeChallenger(dir *fakeDirectory) *fakeChallenger {
	return &fakeChallenger{dir: dir, answer: "654321", sessions: make(map[string]string)}
}

func (f *fakeChallenger) StartChallenge(_ context.Context, key string) (string, error) {
	f.starts++
	if _, ok := f.dir.users[key]; !ok {
		return "", ErrUserNotFound
	}
	session := "chal-" + key
	f.sessions[session] = key
	return session, nil
}

func (f *fakeChallenger) AnswerChallenge(_ context.Context, key, session, answer string) (*Tokens, error) {
	if f.sessions[session] != key {
		return nil, ErrNotAuthorized
	}
	if answer != f.answer {
		return nil, ErrNotAuthorized
	}
	delete(f.sessions, session)
	return &Tokens{Access: "access-" + key, ExpiresIn: 3600}, nil
}

func newChallengeTestService() (*Service, *fakeDirectory, *fakeChallenger) {
	dir := newFakeDirectory()
	ch := newFakeChallenger(dir)
	svc := NewService(Config{PhoneAuthMode: PhoneAuthCustomChallenge}).
		WithDirectory(dir).
		WithChallengeDirectory(ch).
		WithEphemeralStore(memorystore.NewKV(), EphemeralMemory)
	return svc, dir, ch
}

func TestChallengeLoginCreatesUserOnFirstContact(t *testing.T) {
	ctx := context.Background()
	svc, dir, ch := newChallengeTestService()

	start, err := svc.InitiatePhoneLogin(ctx, testPhone)
	if err != nil {
		t.Fatalf("InitiatePhoneLogin failed: %v", err)
	}
	if start.Session == "" {
		t.Fatalf("expected the provider challenge session")
	}
	if ch.starts != 2 {
		t.Fatalf("expected a retry after user creation, saw %d starts", ch.starts)
	}
	if u := dir.users[testPhone]; u == nil || u.attrs["phone_number_verified"] != "true" {
		t.Fatalf("expected a verified phone record")
	}

	tokens, err := svc.ConfirmPhoneLogin(ctx, testPhone, ch.answer, start.Session)
	if err != nil {
		t.Fatalf("ConfirmPhoneLogin failed: %v", err)
	}
	if tokens.Access == "" {
		t.Fatalf("expected tokens")
	}
}

func TestChallengeLoginExistingUser(t *testing.T) {
	ctx := context.Background()
	svc, dir, ch := newChallengeTestService()
	dir.users[testPhone] = &fakeUser{cred: "permanent"}

	if _, err := svc.InitiatePhoneLogin(ctx, testPhone); err != nil {
		t.Fatalf("InitiatePhoneLogin failed: %v", err)
	}
	if ch.starts != 1 {
		t.Fatalf("existing user must not be re-created, saw %d starts", ch.starts)
	}
}

func TestChallengeLoginWrongAnswer(t *testing.T) {
	ctx := context.Background()
	svc, _, ch := newChallengeTestService()

	start, err := svc.InitiatePhoneLogin(ctx, testPhone)
	if err != nil {
		t.Fatalf("InitiatePhoneLogin failed: %v", err)
	}
	wrong := "000000"
	if wrong == ch.answer {
		wrong = "111111"
	}
	if _, err := svc.ConfirmPhoneLogin(ctx, testPhone, wrong, start.Session); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
}

func TestChallengeLoginMissingSession(t *testing.T) {
	svc, _, _ := newChallengeTestService()
	if _, err := svc.ConfirmPhoneLogin(context.Background(), testPhone, "654321", ""); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestChallengeLoginUnconfigured(t *testing.T) {
	svc := NewService(Config{PhoneAuthMode: PhoneAuthCustomChallenge}).
		WithDirectory(newFakeDirectory()).
		WithEphemeralStore(memorystore.NewKV(), EphemeralMemory)

	var de *DirectoryError
	if _, err := svc.InitiatePhoneLogin(context.Background(), testPhone); !errors.As(err, &de) {
		t.Fatalf("expected *DirectoryError, got %v", err)
	}
}
