package ward_test

import (
	"context"
	"sync"
	"testing"

	ward "github.com/davengard/ward"
	"github.com/davengard/ward/session"
	sessionmem "github.com/davengard/ward/session/memstore"
	accountmem "github.com/davengard/ward/store/memstore"
)

// captureMailer records composed messages so flows can redeem the mailed
// tokens and codes.
type captureMailer struct {
	mu       sync.Mutex
	messages []ward.Message
}

func (m *captureMailer) Send(_ context.Context, msg ward.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

// last returns the most recent message body, which the test templates
// reduce to the bare token or code.
func (m *captureMailer) last(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		t.Fatal("no mail delivered")
	}
	return m.messages[len(m.messages)-1].Text
}

func newIntegrationEngine(t *testing.T) (*ward.Engine, func(string) session.Handle, *captureMailer) {
	t.Helper()

	cfg := ward.Config{}
	cfg.Tokens.Secret = []byte("integration-secret-0123456789abcdef")
	// Low-cost hashing keeps real argon2 in the loop without slowing the
	// suite down.
	cfg.Password = ward.PasswordConfig{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	}
	// Bare-credential bodies let the test redeem what was mailed.
	cfg.Mail.TwoFactorCode = ward.MailTemplate{Subject: "code", Text: "{{code}}"}
	cfg.Mail.ConfirmEmail = ward.MailTemplate{Subject: "confirm", Text: "{{token}}"}
	cfg.Mail.ConfirmAltEmail = ward.MailTemplate{Subject: "confirm-alt", Text: "{{token}}"}
	cfg.Mail.ResetPassword = ward.MailTemplate{Subject: "reset", Text: "{{token}}"}

	mailer := &captureMailer{}
	engine, err := ward.New().
		WithConfig(cfg).
		WithStore(accountmem.New()).
		WithMailer(mailer).
		Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	t.Cleanup(engine.Close)

	sessions := sessionmem.New(sessionmem.Config{})
	return engine, sessions.Handle, mailer
}

func TestAccountLifecycle(t *testing.T) {
	engine, handleFor, mailer := newIntegrationEngine(t)
	ctx := context.Background()
	sess := handleFor("integration-sid")

	// Sign up and confirm the address with the mailed token.
	result, acct, err := engine.SignUp(ctx, "rider@example.com", "first-password")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if result != ward.SignUpSuccess || acct == nil {
		t.Fatalf("sign up result = %v", result)
	}

	verified, err := engine.SetEmailVerified(ctx, acct, mailer.last(t))
	if err != nil {
		t.Fatalf("verify email: %v", err)
	}
	if verified != ward.MarkVerifiedSuccess {
		t.Fatalf("verify result = %v", verified)
	}
	if !acct.EmailVerified {
		t.Fatal("account not marked verified")
	}

	// Password login, no second factor yet.
	loginResult, err := engine.LogIn(ctx, sess, "rider@example.com", "first-password", false)
	if err != nil {
		t.Fatalf("log in: %v", err)
	}
	if loginResult != ward.LogInSuccess {
		t.Fatalf("log in result = %v", loginResult)
	}
	current, ok, err := engine.CurrentAccount(ctx, sess)
	if err != nil || !ok {
		t.Fatalf("current account: ok=%v err=%v", ok, err)
	}
	if current.ID != acct.ID {
		t.Fatalf("current id = %d, want %d", current.ID, acct.ID)
	}

	// Turn on the second factor; the next login becomes a challenge.
	tfResult, err := engine.SetTwoFactorEnabled(ctx, acct, true, "first-password")
	if err != nil {
		t.Fatalf("enable 2fa: %v", err)
	}
	if tfResult != ward.SetTwoFactorSuccess {
		t.Fatalf("enable 2fa result = %v", tfResult)
	}

	if err := engine.LogOff(ctx, sess); err != nil {
		t.Fatalf("log off: %v", err)
	}

	loginResult, err = engine.LogIn(ctx, sess, "rider@example.com", "first-password", true)
	if err != nil {
		t.Fatalf("log in: %v", err)
	}
	if loginResult != ward.LogInTwoFactorRequired {
		t.Fatalf("log in result = %v, want challenge", loginResult)
	}
	if _, ok, _ := engine.CurrentAccount(ctx, sess); ok {
		t.Fatal("primary session before the code was redeemed")
	}

	code := mailer.last(t)
	tfLogin, err := engine.TwoFactorLogIn(ctx, sess, code, true)
	if err != nil {
		t.Fatalf("two factor log in: %v", err)
	}
	if tfLogin != ward.TwoFactorSuccess {
		t.Fatalf("two factor result = %v", tfLogin)
	}
	if _, ok, _ := engine.CurrentAccount(ctx, sess); !ok {
		t.Fatal("no primary session after the challenge")
	}

	// A redeemed challenge cannot be replayed into a second session.
	replay, err := engine.TwoFactorLogIn(ctx, handleFor("other-sid"), code, false)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if replay != ward.TwoFactorInvalidCredentials {
		t.Fatalf("replay result = %v", replay)
	}
}

func TestEmailChangeAndVerification(t *testing.T) {
	engine, handleFor, mailer := newIntegrationEngine(t)
	ctx := context.Background()
	sess := handleFor("change-sid")

	_, acct, err := engine.SignUp(ctx, "old@example.com", "first-password")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if _, err := engine.SetEmailVerified(ctx, acct, mailer.last(t)); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if _, err := engine.LogIn(ctx, sess, "old@example.com", "first-password", false); err != nil {
		t.Fatalf("log in: %v", err)
	}

	result, err := engine.SetEmail(ctx, sess, acct, "new@example.com", "first-password")
	if err != nil {
		t.Fatalf("set email: %v", err)
	}
	if result != ward.SetEmailSuccess {
		t.Fatalf("set email result = %v", result)
	}
	if acct.EmailVerified {
		t.Fatal("a changed address must start unverified")
	}

	// The confirmation token mailed to the new address is bound to the
	// rotated account state and still redeems.
	verified, err := engine.SetEmailVerified(ctx, acct, mailer.last(t))
	if err != nil {
		t.Fatalf("verify new email: %v", err)
	}
	if verified != ward.MarkVerifiedSuccess {
		t.Fatalf("verify result = %v", verified)
	}

	// The primary session follows the account through the update.
	current, ok, err := engine.CurrentAccount(ctx, sess)
	if err != nil || !ok {
		t.Fatalf("current account: ok=%v err=%v", ok, err)
	}
	if current.Email != "new@example.com" {
		t.Fatalf("current email = %q", current.Email)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	engine, handleFor, mailer := newIntegrationEngine(t)
	ctx := context.Background()

	_, acct, err := engine.SignUp(ctx, "rider@example.com", "first-password")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if _, err := engine.SetEmailVerified(ctx, acct, mailer.last(t)); err != nil {
		t.Fatalf("verify: %v", err)
	}

	sent, err := engine.SendResetPasswordEmail(ctx, "rider@example.com")
	if err != nil {
		t.Fatalf("send reset: %v", err)
	}
	if sent != ward.SendResetSent {
		t.Fatalf("send reset result = %v", sent)
	}

	tok := mailer.last(t)
	reset, err := engine.ResetPassword(ctx, "rider@example.com", tok, "second-password")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if reset != ward.ResetPasswordSuccess {
		t.Fatalf("reset result = %v", reset)
	}

	sess := handleFor("reset-sid")
	if result, _ := engine.LogIn(ctx, sess, "rider@example.com", "first-password", false); result != ward.LogInInvalidPassword {
		t.Fatalf("old password result = %v", result)
	}
	if result, _ := engine.LogIn(ctx, sess, "rider@example.com", "second-password", false); result != ward.LogInSuccess {
		t.Fatalf("new password result = %v", result)
	}

	// The redeemed token died with the stamp rotation.
	if result, _ := engine.ResetPassword(ctx, "rider@example.com", tok, "third-password"); result != ward.ResetPasswordInvalidToken {
		t.Fatalf("replayed token result = %v", result)
	}
}
