package accounts

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/platform/analytics"
	"github.com/example/movie-platform/internal/store"
)

func newTestService(adminUsername string) *Service {
	log := zap.NewNop()
	return &Service{
		Users:         store.NewMemoryStore(),
		Tokens:        TokenService{Secret: testSecret, AccessTokenTTL: time.Hour},
		Log:           log,
		Events:        analytics.New(nil, log),
		AdminUsername: adminUsername,
	}
}

func TestRegister_ReturnsLiveSession(t *testing.T) {
	svc := newTestService("")
	sess, err := svc.Register(context.Background(), "alice@example.com", "alice", "hunter2hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if sess.AccessToken == "" || sess.ExpiresIn <= 0 {
		t.Fatalf("expected usable session, got %+v", sess)
	}
	if sess.User.Role != store.RoleUser {
		t.Fatalf("expected role user, got %q", sess.User.Role)
	}

	claims, err := svc.Tokens.ParseAccessToken(sess.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.Subject != sess.User.ID {
		t.Fatalf("token subject %q does not match user %q", claims.Subject, sess.User.ID)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService("")
	ctx := context.Background()
	cases := []struct {
		email, username, password string
	}{
		{"not-an-email", "alice", "hunter2hunter2"},
		{"a@b.co", "x", "hunter2hunter2"},
		{"a@b.co", "has space", "hunter2hunter2"},
		{"a@b.co", "alice", "short"},
	}
	for i, c := range cases {
		if _, err := svc.Register(ctx, c.email, c.username, c.password); !errors.Is(err, store.ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestRegister_BootstrapAdmin(t *testing.T) {
	svc := newTestService("root")
	ctx := context.Background()

	sess, err := svc.Register(ctx, "root@example.com", "Root", "hunter2hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if sess.User.Role != store.RoleAdmin {
		t.Fatalf("expected bootstrap admin, got role %q", sess.User.Role)
	}

	other, err := svc.Register(ctx, "bob@example.com", "bob", "hunter2hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if other.User.Role != store.RoleUser {
		t.Fatalf("expected plain user, got role %q", other.User.Role)
	}
}

func TestLogin_ByEmailOrUsername(t *testing.T) {
	svc := newTestService("")
	ctx := context.Background()
	if _, err := svc.Register(ctx, "alice@example.com", "alice", "hunter2hunter2"); err != nil {
		t.Fatalf("register: %v", err)
	}

	for _, login := range []string{"alice", "ALICE", "alice@example.com"} {
		if _, err := svc.Login(ctx, login, "hunter2hunter2"); err != nil {
			t.Fatalf("login %q: %v", login, err)
		}
	}
}

func TestProfile(t *testing.T) {
	svc := newTestService("")
	ctx := context.Background()
	sess, err := svc.Register(ctx, "alice@example.com", "alice", "hunter2hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	u, err := svc.Profile(ctx, sess.User.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if u.Username != "alice" || u.Email != "alice@example.com" {
		t.Fatalf("unexpected profile: %+v", u)
	}
	if _, err := svc.Profile(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc := newTestService("")
	ctx := context.Background()
	sess, err := svc.Register(ctx, "alice@example.com", "alice", "hunter2hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "bob@example.com", "bob", "hunter2hunter2"); err != nil {
		t.Fatalf("register bob: %v", err)
	}

	pic := "https://cdn/alice.png"
	u, err := svc.UpdateProfile(ctx, sess.User.ID, store.ProfileUpdate{Username: "alice_2", ProfilePic: &pic})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Username != "alice_2" || u.ProfilePic != pic || u.Email != "alice@example.com" {
		t.Fatalf("unexpected profile after update: %+v", u)
	}

	// Supplied fields go through the registration validators.
	if _, err := svc.UpdateProfile(ctx, sess.User.ID, store.ProfileUpdate{Username: "x"}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short username, got %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, sess.User.ID, store.ProfileUpdate{Email: "not-an-email"}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad email, got %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, sess.User.ID, store.ProfileUpdate{Username: "bob"}); !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists for taken username, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc := newTestService("")
	ctx := context.Background()
	sess, err := svc.Register(ctx, "alice@example.com", "alice", "hunter2hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.ChangePassword(ctx, sess.User.ID, "wrong-password", "a-new-password"); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for wrong current password, got %v", err)
	}
	if err := svc.ChangePassword(ctx, sess.User.ID, "hunter2hunter2", "short"); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short new password, got %v", err)
	}

	if err := svc.ChangePassword(ctx, sess.User.ID, "hunter2hunter2", "a-new-password"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := svc.Login(ctx, "alice", "a-new-password"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, err := svc.Login(ctx, "alice", "hunter2hunter2"); !errors.Is(err, store.ErrForbidden) {
		t.Fatalf("old password must stop working, got %v", err)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := newTestService("")
	ctx := context.Background()
	if _, err := svc.Register(ctx, "alice@example.com", "alice", "hunter2hunter2"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, "alice", "wrong-password"); !errors.Is(err, store.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for wrong password, got %v", err)
	}
	// An unknown login is indistinguishable from a wrong password.
	if _, err := svc.Login(ctx, "nobody", "hunter2hunter2"); !errors.Is(err, store.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for unknown login, got %v", err)
	}
}
