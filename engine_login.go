package ward

import (
	"context"
	"errors"
	"fmt"

	"github.com/davengard/ward/session"
	"github.com/davengard/ward/token"
)

// LogIn verifies email and password and, depending on the account's
// two-factor flag, either establishes the primary session or starts a
// two-factor challenge: a pending session carrying only the account id plus
// one freshly generated TwoFactor code delivered by mail.
//
// Session establishment is always the final step; a failure or cancellation
// before it leaves no observable session change.
func (e *Engine) LogIn(ctx context.Context, sess session.Handle, email, password string, persistent bool) (LogInResult, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if sess == nil || email == "" || password == "" {
		return 0, fmt.Errorf("%w: session, email and password are required", ErrMissingArgument)
	}

	acct, err := e.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLogin, false, 0, nil, func() map[string]string {
				return map[string]string{"reason": "unknown_email"}
			})
			return LogInInvalidEmail, nil
		}
		return 0, wrapStore(err)
	}

	ok, err := e.hasher.Verify(password, acct.PasswordHash)
	if err != nil {
		return 0, wrapStore(err)
	}
	if !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLogin, false, acct.ID, nil, func() map[string]string {
			return map[string]string{"reason": "password_mismatch"}
		})
		return LogInInvalidPassword, nil
	}

	if !acct.TwoFactorEnabled {
		if err := sess.EstablishPrimary(ctx, claimsFor(acct, persistent)); err != nil {
			return 0, wrapSession(err)
		}
		e.metricInc(MetricLoginSuccess)
		e.emitAudit(ctx, auditEventLogin, true, acct.ID, nil, nil)
		return LogInSuccess, nil
	}

	code, err := e.registry.Generate(ctx, token.KindTotp, token.PurposeTwoFactor, tokenSubject(acct))
	if err != nil {
		return 0, wrapToken(err)
	}
	if err := e.composeMail(ctx, e.config.Mail.TwoFactorCode, acct.Email, map[string]string{
		"code":  code,
		"email": acct.Email,
	}); err != nil {
		return 0, err
	}
	if err := sess.EstablishPending(ctx, acct.ID); err != nil {
		return 0, wrapSession(err)
	}

	e.metricInc(MetricTwoFactorChallenge)
	e.emitAudit(ctx, auditEventTwoFactorChallenge, true, acct.ID, nil, nil)
	return LogInTwoFactorRequired, nil
}

// TwoFactorLogIn resolves the pending session's account and validates code
// against the TwoFactor purpose. On success the pending session is cleared
// before the primary session is established. An invalid code keeps the
// pending session so the caller may retry until it expires.
func (e *Engine) TwoFactorLogIn(ctx context.Context, sess session.Handle, code string, persistent bool) (TwoFactorLogInResult, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if sess == nil || code == "" {
		return 0, fmt.Errorf("%w: session and code are required", ErrMissingArgument)
	}

	accountID, ok, err := sess.PendingAccountID(ctx)
	if err != nil {
		return 0, wrapSession(err)
	}
	if !ok {
		e.metricInc(MetricTwoFactorFailure)
		e.emitAudit(ctx, auditEventTwoFactorLogin, false, 0, nil, func() map[string]string {
			return map[string]string{"reason": "no_pending_session"}
		})
		return TwoFactorInvalidCredentials, nil
	}

	acct, err := e.store.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			// The pending claim references a dead account; it cannot be
			// redeemed, so drop it.
			_ = sess.ClearPending(ctx)
			e.metricInc(MetricTwoFactorFailure)
			e.emitAudit(ctx, auditEventTwoFactorLogin, false, accountID, nil, func() map[string]string {
				return map[string]string{"reason": "account_gone"}
			})
			return TwoFactorInvalidCredentials, nil
		}
		return 0, wrapStore(err)
	}

	validity, err := e.registry.Validate(ctx, token.KindTotp, token.PurposeTwoFactor, tokenSubject(acct), code)
	if err != nil {
		return 0, wrapToken(err)
	}
	if validity != token.Valid {
		e.metricInc(MetricTwoFactorFailure)
		e.emitAudit(ctx, auditEventTwoFactorLogin, false, acct.ID, nil, func() map[string]string {
			return map[string]string{"reason": "code_" + validity.String()}
		})
		return TwoFactorInvalidCode, nil
	}

	if err := sess.ClearPending(ctx); err != nil {
		return 0, wrapSession(err)
	}
	if err := sess.EstablishPrimary(ctx, claimsFor(acct, persistent)); err != nil {
		return 0, wrapSession(err)
	}

	e.metricInc(MetricTwoFactorSuccess)
	e.emitAudit(ctx, auditEventTwoFactorLogin, true, acct.ID, nil, nil)
	return TwoFactorSuccess, nil
}

// LogOff clears both session schemes. It is idempotent and reports only
// adapter failures.
func (e *Engine) LogOff(ctx context.Context, sess session.Handle) error {
	if err := e.ready(); err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("%w: session is required", ErrMissingArgument)
	}

	if err := sess.ClearPrimary(ctx); err != nil {
		return wrapSession(err)
	}
	if err := sess.ClearPending(ctx); err != nil {
		return wrapSession(err)
	}
	e.metricInc(MetricLogOff)
	e.emitAudit(ctx, auditEventLogOff, true, 0, nil, nil)
	return nil
}

// CurrentAccount returns the account referenced by the primary session's
// claims, or ok=false when no primary session exists or its account row is
// gone. It is a read-only query and never mutates session state.
func (e *Engine) CurrentAccount(ctx context.Context, sess session.Handle) (*Account, bool, error) {
	if err := e.ready(); err != nil {
		return nil, false, err
	}
	if sess == nil {
		return nil, false, fmt.Errorf("%w: session is required", ErrMissingArgument)
	}

	claims, ok, err := sess.Current(ctx)
	if err != nil {
		return nil, false, wrapSession(err)
	}
	if !ok {
		return nil, false, nil
	}

	acct, err := e.store.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, false, nil
		}
		return nil, false, wrapStore(err)
	}
	return acct, true, nil
}
