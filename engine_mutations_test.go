package ward

import (
	"context"
	"errors"
	"testing"

	"github.com/davengard/ward/token"
)

func TestSetEmailSuccess(t *testing.T) {
	f := newFixture(t)
	acct := f.seed(t, "alice@example.com", "correct-horse")
	sess := &mockHandle{}
	_ = sess.EstablishPrimary(context.Background(), claimsFor(acct, true))
	oldStamp := acct.Stamp

	result, err := f.engine.SetEmail(context.Background(), sess, acct, "new@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("SetEmail: %v", err)
	}
	if result != SetEmailSuccess {
		t.Fatalf("result = %s, want Success", result)
	}
	if acct.Email != "new@example.com" || acct.EmailVerified {
		t.Fatalf("snapshot not updated: %+v", acct)
	}
	if acct.Stamp == oldStamp {
		t.Fatal("stamp not rotated")
	}
	if sess.refreshPrimaryCalls != 1 || sess.claims == nil || !sess.claims.Persistent {
		t.Fatalf("claims not refreshed in place: calls=%d claims=%+v", sess.refreshPrimaryCalls, sess.claims)
	}
	if len(f.mailer.sent) != 1 || f.mailer.sent[0].To != "new@example.com" {
		t.Fatalf("confirmation mail = %+v", f.mailer.sent)
	}
	// Token for the new address is bound to the rotated stamp.
	if f.protect.lastSubject.Stamp != acct.Stamp {
		t.Fatalf("token stamp %q, want rotated %q", f.protect.lastSubject.Stamp, acct.Stamp)
	}
}

func TestSetEmailAlreadySet(t *testing.T) {
	f := newFixture(t)
	acct := f.seed(t, "alice@example.com", "correct-horse")

	result, err := f.engine.SetEmail(context.Background(), nil, acct, "alice@example.com", "whatever")
	if err != nil {
		t.Fatalf("SetEmail: %v", err)
	}
	if result != SetEmailAlreadySet {
		t.Fatalf("result = %s, want AlreadySet", result)
	}
	// Idempotence is reported without authorization or persistence.
	if f.hasher.verifyCalls != 0 {
		t.Fatal("password verified on an already-set value")
	}
	if f.store.updateCalls["email"] != 0 {
		t.Fatal("store update called on an already-set value")
	}
	if len(f.mailer.sent) != 0 {
		t.Fatal("mail sent on an already-set value")
	}
}

func TestSetEmailInvalidPassword(t *testing.T) {
	f := newFixture(t)
	acct := f.seed(t, "alice@example.com", "correct-horse")

	result, err := f.engine.SetEmail(context.Background(), nil, acct, "new@example.com", "wrong")
	if err != nil {
		t.Fatalf("SetEmail: %v", err)
	}
	if result != SetEmailInvalidPassword {
		t.Fatalf("result = %s, want InvalidPassword", result)
	}
	if f.store.updateCalls["email"] != 0 {
		t.Fatal("store update called after a failed authorization")
	}
}

func TestSetEmailInUse(t *testing.T) {
	f := newFixture(t)
	acct := f.seed(t, "alice@example.com", "correct-horse")
	f.store.forceDuplicate["email"] = true

	result, err := f.engine.SetEmail(context.Background(), nil, acct, "taken@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("SetEmail: %v", err)
	}
	if result != SetEmailInUse {
		t.Fatalf("result = %s, want EmailInUse", result)
	}
	if acct.Email != "alice@example.com" {
		t.Fatal("snapshot mutated on a duplicate rejection")
	}
	if len(f.mailer.sent) != 0 {
		t.Fatal("mail sent on a duplicate rejection")
	}
}

func TestSetEmailStaleStampIsFatal(t *testing.T) {
	f := newFixture(t)
	acct := f.seed(t, "alice@example.com", "correct-horse")
	acct.Stamp = "stale-stamp"

	_, err := f.engine.SetEmail(context.Background(), nil, acct, "new@example.com", "correct-horse")
	if !errors.Is(err, ErrConcurrencyConflict) {
		t.Fatalf("err = %v, want ErrConcurrencyConflict", err)
	}
	if f.store.updateCalls["email"] != 1 {
		t.Fatalf("update retried: %d calls", f.store.updateCalls["email"])
	}
}

func TestSetAltEmail(t *testing.T) {
	f := newFixture(t)
	acct := f.seed(t, "alice@example.com", "correct-horse", func(a *Account) {
		a.AltEmail = "old-alt@example.com"
		a.AltEmailVerified = true
	})

	result, err := f.engine.SetAltEmail(context.Background(), acct, "alt@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("SetAltEmail: %v", err)
	}
	if result != SetAltEmailSuccess {
		t.Fatalf("result = %s, want Success", result)
	}
	if acct.AltEmail != "alt@example.com" || acct.AltEmailVerified {
		t.Fatalf("snapshot = %+v", acct)
	}
	if len(f.mailer.sent) != 1 || f.mailer.sent[0].To != "alt@example.com" {
		t.Fatalf("confirmation mail = %+v", f.mailer.sent)
	}
	if f.protect.lastPurpose != token.PurposeConfirmAltEmail {
		t.Fatalf("token purpose = %s", f.protect.lastPurpose)
	}
}

func TestSetDisplayName(t *testing.T) {
	f := newFixture(t)
	acct := f.seed(t, "alice@example.com", "correct-horse")

	result, err := f.engine.SetDisplayName(context.Background(), acct, "Alice", "correct-horse")
	if err != nil {
		t.Fatalf("SetDisplayName: %v", err)
	}
	if result != SetDisplayNameSuccess || acct.DisplayName != "Alice" {
		t.Fatalf("result=%s snapshot=%+v", result, acct)
	}

	f.store.forceDuplicate["display_name"] = true
	result, err = f.engine.SetDisplayName(context.Background(), acct, "Taken", "correct-horse")
	if err != nil {
		t.Fatalf("SetDisplayName duplicate: %v", err)
	}
	if result != SetDisplayNameInUse {
		t.Fatalf("result = %s, want DisplayNameInUse", result)
	}
}

func TestSetTwoFactorEnabled(t *testing.T) {
	f := newFixture(t)
	acct := f.seed(t, "alice@example.com", "correct-horse")

	result, err := f.engine.SetTwoFactorEnabled(context.Background(), acct, true, "correct-horse")
	if err != nil {
		t.Fatalf("SetTwoFactorEnabled: %v", err)
	}
	if result != SetTwoFactorSuccess || !acct.TwoFactorEnabled {
		t.Fatalf("result=%s snapshot=%+v", result, acct)
	}

	result, err = f.engine.SetTwoFactorEnabled(context.Background(), acct, true, "correct-horse")
	if err != nil {
		t.Fatalf("re-enable: %v", err)
	}
	if result != SetTwoFactorAlreadySet {
		t.Fatalf("result = %s, want AlreadySet", result)
	}

	result, err = f.engine.SetTwoFactorEnabled(context.Background(), acct, false, "correct-horse")
	if err != nil {
		t.Fatalf("disable: %v", err)
	}
	if result != SetTwoFactorSuccess || acct.TwoFactorEnabled {
		t.Fatalf("result=%s snapshot=%+v", result, acct)
	}
}

func TestSetTwoFactorEnabledRequiresVerifiedEmail(t *testing.T) {
	f := newFixture(t)
	acct := f.seed(t, "alice@example.com", "correct-horse", func(a *Account) {
		a.EmailVerified = false
	})

	result, err := f.engine.SetTwoFactorEnabled(context.Background(), acct, true, "correct-horse")
	if err != nil {
		t.Fatalf("SetTwoFactorEnabled: %v", err)
	}
	if result != SetTwoFactorEmailUnverified {
		t.Fatalf("result = %s, want EmailUnverified", result)
	}
	if acct.TwoFactorEnabled {
		t.Fatal("two-factor enabled despite unverified email")
	}
	// The refusal re-sends the verification mail.
	if len(f.mailer.sent) != 1 || f.mailer.sent[0].To != "alice@example.com" {
		t.Fatalf("verification mail = %+v", f.mailer.sent)
	}
	if f.store.updateCalls["two_factor_enabled"] != 0 {
		t.Fatal("store update called after a precondition refusal")
	}
}

// Disabling two-factor has no email precondition.
func TestSetTwoFactorDisableWithUnverifiedEmail(t *testing.T) {
	f := newFixture(t)
	acct := f.seed(t, "alice@example.com", "correct-horse", func(a *Account) {
		a.EmailVerified = false
		a.TwoFactorEnabled = true
	})

	result, err := f.engine.SetTwoFactorEnabled(context.Background(), acct, false, "correct-horse")
	if err != nil {
		t.Fatalf("SetTwoFactorEnabled: %v", err)
	}
	if result != SetTwoFactorSuccess || acct.TwoFactorEnabled {
		t.Fatalf("result=%s snapshot=%+v", result, acct)
	}
	if len(f.mailer.sent) != 0 {
		t.Fatal("verification mail sent on disable")
	}
}
