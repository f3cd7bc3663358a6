package ward

import (
	"context"
	"fmt"

	"github.com/davengard/ward/token"
)

// SignUp creates an account for email and sends the email-confirmation
// message. A duplicate email is the one expected business outcome; the new
// account starts unverified with two-factor disabled.
func (e *Engine) SignUp(ctx context.Context, email, pw string) (SignUpResult, *Account, error) {
	if err := e.ready(); err != nil {
		return 0, nil, err
	}
	if email == "" || pw == "" {
		return 0, nil, fmt.Errorf("%w: email and password are required", ErrMissingArgument)
	}

	hash, err := e.hasher.Hash(pw)
	if err != nil {
		return 0, nil, err
	}

	acct := &Account{Email: email, PasswordHash: hash}
	result, err := e.store.Create(ctx, acct)
	if err != nil {
		return 0, nil, wrapStore(err)
	}
	if result == UpdateDuplicate {
		e.metricInc(MetricSignUpDuplicate)
		e.emitAudit(ctx, auditEventSignUp, false, 0, nil, func() map[string]string {
			return map[string]string{"reason": "email_in_use"}
		})
		return SignUpEmailInUse, nil, nil
	}
	if result != UpdateOK {
		return 0, nil, fmt.Errorf("%w: unexpected create result %s", ErrStoreBackend, result)
	}

	if err := e.sendEmailConfirmation(ctx, acct); err != nil {
		// The account exists; the caller can re-request the mail.
		return 0, nil, err
	}

	e.metricInc(MetricSignUpSuccess)
	e.emitAudit(ctx, auditEventSignUp, true, acct.ID, nil, nil)
	return SignUpSuccess, acct, nil
}

// sendEmailConfirmation issues an EmailConfirmation token for the primary
// email and mails the confirmation link.
func (e *Engine) sendEmailConfirmation(ctx context.Context, acct *Account) error {
	tok, err := e.registry.Generate(ctx, token.KindDataProtection, token.PurposeEmailConfirmation, tokenSubject(acct))
	if err != nil {
		return wrapToken(err)
	}
	e.metricInc(MetricVerificationMailSent)
	return e.composeMail(ctx, e.config.Mail.ConfirmEmail, acct.Email, map[string]string{
		"link":  e.link(e.config.Links.ConfirmEmailPath, tok, acct.Email),
		"token": tok,
		"email": acct.Email,
	})
}

// sendAltEmailConfirmation issues a ConfirmAltEmail token and mails the
// confirmation link to the alternate address.
func (e *Engine) sendAltEmailConfirmation(ctx context.Context, acct *Account) error {
	tok, err := e.registry.Generate(ctx, token.KindDataProtection, token.PurposeConfirmAltEmail, tokenSubject(acct))
	if err != nil {
		return wrapToken(err)
	}
	e.metricInc(MetricVerificationMailSent)
	return e.composeMail(ctx, e.config.Mail.ConfirmAltEmail, acct.AltEmail, map[string]string{
		"link":  e.link(e.config.Links.ConfirmAltEmailPath, tok, acct.AltEmail),
		"token": tok,
		"email": acct.AltEmail,
	})
}
