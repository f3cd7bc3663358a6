package ward

import (
	"context"
	"strings"
	"testing"

	"github.com/davengard/ward/token"
)

func TestSetPasswordSuccess(t *testing.T) {
	f := newFixture(t)
	acct := f.seed(t, "alice@example.com", "correct-horse")
	sess := &mockHandle{}
	_ = sess.EstablishPrimary(context.Background(), claimsFor(acct, false))
	oldStamp := acct.Stamp

	result, err := f.engine.SetPassword(context.Background(), sess, acct, "correct-horse", "new-stallion")
	if err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if result != SetPasswordSuccess {
		t.Fatalf("result = %s, want Success", result)
	}
	if acct.PasswordHash != "h!new-stallion" {
		t.Fatalf("hash = %q", acct.PasswordHash)
	}
	if acct.Stamp == oldStamp {
		t.Fatal("stamp not rotated")
	}
	if sess.refreshPrimaryCalls != 1 {
		t.Fatalf("refresh calls = %d, want 1", sess.refreshPrimaryCalls)
	}
}

func TestSetPasswordInvalidCurrent(t *testing.T) {
	f := newFixture(t)
	acct := f.seed(t, "alice@example.com", "correct-horse")

	result, err := f.engine.SetPassword(context.Background(), nil, acct, "wrong-horse", "new-stallion")
	if err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if result != SetPasswordInvalidCurrent {
		t.Fatalf("result = %s, want InvalidCurrentPassword", result)
	}
	if f.store.updateCalls["password"] != 0 {
		t.Fatal("store update called after a failed authorization")
	}
}

// Authorization runs before the new-password check: a caller who fails the
// current password learns nothing about the new value.
func TestSetPasswordAuthorizesBeforeNewPasswordCheck(t *testing.T) {
	f := newFixture(t)
	acct := f.seed(t, "alice@example.com", "correct-horse")

	result, err := f.engine.SetPassword(context.Background(), nil, acct, "wrong-horse", "correct-horse")
	if err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if result != SetPasswordInvalidCurrent {
		t.Fatalf("result = %s, want InvalidCurrentPassword", result)
	}
}

func TestSetPasswordSameAsCurrent(t *testing.T) {
	f := newFixture(t)
	acct := f.seed(t, "alice@example.com", "correct-horse")

	result, err := f.engine.SetPassword(context.Background(), nil, acct, "correct-horse", "correct-horse")
	if err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if result != SetPasswordInvalidNew {
		t.Fatalf("result = %s, want InvalidNewPassword", result)
	}
	if f.store.updateCalls["password"] != 0 {
		t.Fatal("store update called for an unchanged password")
	}
}

func TestSetPasswordWeakNew(t *testing.T) {
	f := newFixture(t)
	acct := f.seed(t, "alice@example.com", "correct-horse")

	result, err := f.engine.SetPassword(context.Background(), nil, acct, "correct-horse", "ab")
	if err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if result != SetPasswordInvalidNew {
		t.Fatalf("result = %s, want InvalidNewPassword", result)
	}
}

func TestSendResetPasswordEmail(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "alice@example.com", "correct-horse")

	result, err := f.engine.SendResetPasswordEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("SendResetPasswordEmail: %v", err)
	}
	if result != SendResetSent {
		t.Fatalf("result = %s, want Sent", result)
	}
	if len(f.mailer.sent) != 1 || !strings.Contains(f.mailer.sent[0].Text, "link-token") {
		t.Fatalf("reset mail = %+v", f.mailer.sent)
	}
	if f.protect.lastPurpose != token.PurposeResetPassword {
		t.Fatalf("token purpose = %s", f.protect.lastPurpose)
	}

	result, err = f.engine.SendResetPasswordEmail(context.Background(), "ghost@example.com")
	if err != nil {
		t.Fatalf("unknown email: %v", err)
	}
	if result != SendResetInvalidEmail {
		t.Fatalf("result = %s, want InvalidEmail", result)
	}
	if len(f.mailer.sent) != 1 {
		t.Fatal("mail sent for an unknown email")
	}
}

func TestResetPasswordSuccess(t *testing.T) {
	f := newFixture(t)
	acct := f.seed(t, "alice@example.com", "correct-horse")
	oldStamp := acct.Stamp

	result, err := f.engine.ResetPassword(context.Background(), "alice@example.com", "link-token", "new-stallion")
	if err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if result != ResetPasswordSuccess {
		t.Fatalf("result = %s, want Success", result)
	}
	stored := f.store.accounts[acct.ID]
	if stored.PasswordHash != "h!new-stallion" {
		t.Fatalf("stored hash = %q", stored.PasswordHash)
	}
	if stored.Stamp == oldStamp {
		t.Fatal("stamp not rotated")
	}
	if f.protect.lastPurpose != token.PurposeResetPassword {
		t.Fatalf("token purpose = %s", f.protect.lastPurpose)
	}
}

func TestResetPasswordUnknownEmail(t *testing.T) {
	f := newFixture(t)

	result, err := f.engine.ResetPassword(context.Background(), "ghost@example.com", "link-token", "new-stallion")
	if err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if result != ResetPasswordInvalidEmail {
		t.Fatalf("result = %s, want InvalidEmail", result)
	}
	if f.protect.validateCalls != 0 {
		t.Fatal("token validated for an unknown email")
	}
}

// The replacement-equals-current check runs before token validation, so no
// token is consumed on that rejection.
func TestResetPasswordSameAsCurrentSkipsToken(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "alice@example.com", "correct-horse")

	result, err := f.engine.ResetPassword(context.Background(), "alice@example.com", "link-token", "correct-horse")
	if err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if result != ResetPasswordInvalidNew {
		t.Fatalf("result = %s, want InvalidNewPassword", result)
	}
	if f.protect.validateCalls != 0 {
		t.Fatal("token validated before the new-password rejection")
	}
	if f.store.updateCalls["password"] != 0 {
		t.Fatal("store update called for a rejected reset")
	}
}

func TestResetPasswordInvalidToken(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "alice@example.com", "correct-horse")
	f.protect.validity = token.Expired

	result, err := f.engine.ResetPassword(context.Background(), "alice@example.com", "stale-token", "new-stallion")
	if err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if result != ResetPasswordInvalidToken {
		t.Fatalf("result = %s, want InvalidToken", result)
	}
	if f.store.updateCalls["password"] != 0 {
		t.Fatal("store update called with an expired token")
	}
}
