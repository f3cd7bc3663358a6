package ward

import (
	"context"
	"strings"
	"testing"

	"github.com/davengard/ward/token"
)

func TestSignUpSuccess(t *testing.T) {
	f := newFixture(t)

	result, acct, err := f.engine.SignUp(context.Background(), "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if result != SignUpSuccess {
		t.Fatalf("result = %s, want Success", result)
	}
	if acct == nil || acct.ID == 0 || acct.Stamp == "" {
		t.Fatalf("account not assigned: %+v", acct)
	}
	if acct.EmailVerified || acct.TwoFactorEnabled {
		t.Fatalf("new account not in the unverified default state: %+v", acct)
	}
	if len(f.mailer.sent) != 1 {
		t.Fatalf("sent %d mails, want 1 confirmation", len(f.mailer.sent))
	}
	if f.mailer.sent[0].To != "alice@example.com" {
		t.Fatalf("confirmation sent to %s", f.mailer.sent[0].To)
	}
	if !strings.Contains(f.mailer.sent[0].Text, "link-token") {
		t.Fatalf("confirmation body missing token link: %q", f.mailer.sent[0].Text)
	}
	if f.protect.lastPurpose != token.PurposeEmailConfirmation {
		t.Fatalf("token purpose = %s", f.protect.lastPurpose)
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "alice@example.com", "correct-horse")

	result, acct, err := f.engine.SignUp(context.Background(), "alice@example.com", "other-pass")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if result != SignUpEmailInUse {
		t.Fatalf("result = %s, want EmailInUse", result)
	}
	if acct != nil {
		t.Fatalf("duplicate signup returned an account: %+v", acct)
	}
	if len(f.mailer.sent) != 0 {
		t.Fatal("mail sent for a rejected signup")
	}
}

func TestSignUpWeakPassword(t *testing.T) {
	f := newFixture(t)

	if _, _, err := f.engine.SignUp(context.Background(), "alice@example.com", "no"); err == nil {
		t.Fatal("expected hasher policy rejection")
	}
	if f.store.createCalls != 0 {
		t.Fatal("create called with an unusable password")
	}
}
