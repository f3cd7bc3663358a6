package ward

import (
	"context"
	"errors"
	"fmt"

	"github.com/davengard/ward/session"
	"github.com/davengard/ward/token"
)

// SetPassword changes the account password after re-verifying the current
// one. Unlike the other mutators, authorization runs before the idempotence
// check: reporting "new password equals the old one" without verifying the
// caller first would itself disclose password state. sess may be nil when
// the caller has no live session to refresh.
func (e *Engine) SetPassword(ctx context.Context, sess session.Handle, acct *Account, currentPw, newPw string) (SetPasswordResult, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if acct == nil || acct.ID == 0 || currentPw == "" || newPw == "" {
		return 0, fmt.Errorf("%w: account, current and new password are required", ErrMissingArgument)
	}

	ok, err := e.hasher.Verify(currentPw, acct.PasswordHash)
	if err != nil {
		return 0, wrapStore(err)
	}
	if !ok {
		e.metricInc(MetricMutationRejected)
		e.emitAudit(ctx, auditEventMutation, false, acct.ID, nil, func() map[string]string {
			return map[string]string{"attribute": "password", "reason": "unauthorized"}
		})
		return SetPasswordInvalidCurrent, nil
	}

	same, err := e.hasher.Verify(newPw, acct.PasswordHash)
	if err != nil {
		return 0, wrapStore(err)
	}
	if same {
		e.metricInc(MetricMutationAlreadySet)
		return SetPasswordInvalidNew, nil
	}

	newHash, err := e.hasher.Hash(newPw)
	if err != nil {
		// Policy rejection (too short, etc.) is a business outcome.
		e.metricInc(MetricMutationRejected)
		return SetPasswordInvalidNew, nil
	}

	outcome, err := e.applyMutation(ctx, mutationSpec{
		attribute: "password",
		accountID: acct.ID,
		persist: func(ctx context.Context) (string, UpdateResult, error) {
			return e.store.UpdatePasswordHash(ctx, acct.ID, acct.Stamp, newHash)
		},
		apply: func(newStamp string) {
			acct.PasswordHash = newHash
			acct.Stamp = newStamp
		},
		postApply: func(ctx context.Context) error {
			return e.refreshClaims(ctx, sess, acct)
		},
	})
	if err != nil {
		return 0, err
	}
	if outcome != mutationApplied {
		return 0, fmt.Errorf("%w: unexpected password mutation outcome", ErrStoreBackend)
	}
	return SetPasswordSuccess, nil
}

// SendResetPasswordEmail issues a ResetPassword token for the account
// behind email and mails the reset link.
func (e *Engine) SendResetPasswordEmail(ctx context.Context, email string) (SendResetResult, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if email == "" {
		return 0, fmt.Errorf("%w: email is required", ErrMissingArgument)
	}

	acct, err := e.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return SendResetInvalidEmail, nil
		}
		return 0, wrapStore(err)
	}

	tok, err := e.registry.Generate(ctx, token.KindDataProtection, token.PurposeResetPassword, tokenSubject(acct))
	if err != nil {
		return 0, wrapToken(err)
	}
	if err := e.composeMail(ctx, e.config.Mail.ResetPassword, acct.Email, map[string]string{
		"link":  e.link(e.config.Links.ResetPasswordPath, tok, acct.Email),
		"token": tok,
		"email": acct.Email,
	}); err != nil {
		return 0, err
	}

	e.metricInc(MetricPasswordResetRequest)
	e.emitAudit(ctx, auditEventPasswordReset, true, acct.ID, nil, func() map[string]string {
		return map[string]string{"phase": "requested"}
	})
	return SendResetSent, nil
}

// ResetPassword replaces the password of the account behind email, using a
// ResetPassword-purpose token as authorization. A replacement equal to the
// current password is rejected before any token is validated.
func (e *Engine) ResetPassword(ctx context.Context, email, tok, newPw string) (ResetPasswordResult, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if email == "" || tok == "" || newPw == "" {
		return 0, fmt.Errorf("%w: email, token and new password are required", ErrMissingArgument)
	}

	acct, err := e.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.metricInc(MetricPasswordResetFailure)
			return ResetPasswordInvalidEmail, nil
		}
		return 0, wrapStore(err)
	}

	same, err := e.hasher.Verify(newPw, acct.PasswordHash)
	if err != nil {
		return 0, wrapStore(err)
	}
	if same {
		e.metricInc(MetricPasswordResetFailure)
		return ResetPasswordInvalidNew, nil
	}

	validity, err := e.registry.Validate(ctx, token.KindDataProtection, token.PurposeResetPassword, tokenSubject(acct), tok)
	if err != nil {
		return 0, wrapToken(err)
	}
	if validity != token.Valid {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordReset, false, acct.ID, nil, func() map[string]string {
			return map[string]string{"phase": "confirm", "reason": "token_" + validity.String()}
		})
		return ResetPasswordInvalidToken, nil
	}

	newHash, err := e.hasher.Hash(newPw)
	if err != nil {
		e.metricInc(MetricPasswordResetFailure)
		return ResetPasswordInvalidNew, nil
	}

	outcome, err := e.applyMutation(ctx, mutationSpec{
		attribute: "password",
		accountID: acct.ID,
		persist: func(ctx context.Context) (string, UpdateResult, error) {
			return e.store.UpdatePasswordHash(ctx, acct.ID, acct.Stamp, newHash)
		},
		apply: func(newStamp string) {
			acct.PasswordHash = newHash
			acct.Stamp = newStamp
		},
	})
	if err != nil {
		return 0, err
	}
	if outcome != mutationApplied {
		return 0, fmt.Errorf("%w: unexpected reset mutation outcome", ErrStoreBackend)
	}

	e.metricInc(MetricPasswordResetSuccess)
	e.emitAudit(ctx, auditEventPasswordReset, true, acct.ID, nil, func() map[string]string {
		return map[string]string{"phase": "confirmed"}
	})
	return ResetPasswordSuccess, nil
}

// refreshClaims re-derives the primary session's claims from the mutated
// account so stale claims cannot be replayed. A handle for a different
// account, or no handle at all, is a no-op.
func (e *Engine) refreshClaims(ctx context.Context, sess session.Handle, acct *Account) error {
	if sess == nil {
		return nil
	}
	claims, ok, err := sess.Current(ctx)
	if err != nil {
		return wrapSession(err)
	}
	if !ok || claims.AccountID != acct.ID {
		return nil
	}
	if err := sess.RefreshPrimary(ctx, claimsFor(acct, claims.Persistent)); err != nil {
		return wrapSession(err)
	}
	return nil
}
