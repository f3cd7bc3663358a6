package ward

import (
	"context"
	"errors"
	"fmt"

	"github.com/davengard/ward/session"
	"github.com/davengard/ward/token"
)

// SetEmail changes the primary email address, authorized by password
// re-entry. The store clears the verified flag as part of the same write,
// and a confirmation mail for the new address goes out after persistence.
// Session claims on sess are refreshed so nothing stale survives the stamp
// rotation. sess may be nil.
func (e *Engine) SetEmail(ctx context.Context, sess session.Handle, acct *Account, newEmail, pw string) (SetEmailResult, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if acct == nil || acct.ID == 0 || newEmail == "" || pw == "" {
		return 0, fmt.Errorf("%w: account, email and password are required", ErrMissingArgument)
	}

	outcome, err := e.applyMutation(ctx, mutationSpec{
		attribute:  "email",
		accountID:  acct.ID,
		alreadySet: acct.Email == newEmail,
		authorize:  e.authorizeByPassword(acct, pw),
		persist: func(ctx context.Context) (string, UpdateResult, error) {
			return e.store.UpdateEmail(ctx, acct.ID, acct.Stamp, newEmail)
		},
		apply: func(newStamp string) {
			acct.Email = newEmail
			acct.EmailVerified = false
			acct.Stamp = newStamp
		},
		postApply: func(ctx context.Context) error {
			if err := e.refreshClaims(ctx, sess, acct); err != nil {
				return err
			}
			return e.sendEmailConfirmation(ctx, acct)
		},
	})
	if err != nil {
		return 0, err
	}
	switch outcome {
	case mutationApplied:
		return SetEmailSuccess, nil
	case mutationAlreadySet:
		return SetEmailAlreadySet, nil
	case mutationUnauthorized:
		return SetEmailInvalidPassword, nil
	case mutationDuplicate:
		return SetEmailInUse, nil
	}
	return 0, fmt.Errorf("%w: unexpected email mutation outcome", ErrStoreBackend)
}

// SetAltEmail changes the alternate email address, authorized by password
// re-entry. The store clears the alt-verified flag with the write, and a
// confirmation mail goes to the new alternate address.
func (e *Engine) SetAltEmail(ctx context.Context, acct *Account, altEmail, pw string) (SetAltEmailResult, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if acct == nil || acct.ID == 0 || altEmail == "" || pw == "" {
		return 0, fmt.Errorf("%w: account, alt email and password are required", ErrMissingArgument)
	}

	outcome, err := e.applyMutation(ctx, mutationSpec{
		attribute:  "alt_email",
		accountID:  acct.ID,
		alreadySet: acct.AltEmail == altEmail,
		authorize:  e.authorizeByPassword(acct, pw),
		persist: func(ctx context.Context) (string, UpdateResult, error) {
			return e.store.UpdateAltEmail(ctx, acct.ID, acct.Stamp, altEmail)
		},
		apply: func(newStamp string) {
			acct.AltEmail = altEmail
			acct.AltEmailVerified = false
			acct.Stamp = newStamp
		},
		postApply: func(ctx context.Context) error {
			return e.sendAltEmailConfirmation(ctx, acct)
		},
	})
	if err != nil {
		return 0, err
	}
	switch outcome {
	case mutationApplied:
		return SetAltEmailSuccess, nil
	case mutationAlreadySet:
		return SetAltEmailAlreadySet, nil
	case mutationUnauthorized:
		return SetAltEmailInvalidPassword, nil
	case mutationDuplicate:
		return SetAltEmailInUse, nil
	}
	return 0, fmt.Errorf("%w: unexpected alt email mutation outcome", ErrStoreBackend)
}

// SendEmailVerificationEmail re-sends the confirmation mail for the primary
// email. Already-verified accounts get no mail.
func (e *Engine) SendEmailVerificationEmail(ctx context.Context, acct *Account) (SendVerificationResult, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if acct == nil || acct.ID == 0 {
		return 0, fmt.Errorf("%w: account is required", ErrMissingArgument)
	}
	if acct.EmailVerified {
		return SendVerificationAlreadyVerified, nil
	}
	if err := e.sendEmailConfirmation(ctx, acct); err != nil {
		return 0, err
	}
	return SendVerificationSent, nil
}

// SendAltEmailVerificationEmail re-sends the confirmation mail for the
// alternate email.
func (e *Engine) SendAltEmailVerificationEmail(ctx context.Context, acct *Account) (SendVerificationResult, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if acct == nil || acct.ID == 0 {
		return 0, fmt.Errorf("%w: account is required", ErrMissingArgument)
	}
	if acct.AltEmail == "" {
		return SendVerificationNoAltEmail, nil
	}
	if acct.AltEmailVerified {
		return SendVerificationAlreadyVerified, nil
	}
	if err := e.sendAltEmailConfirmation(ctx, acct); err != nil {
		return 0, err
	}
	return SendVerificationSent, nil
}

// SetEmailVerified marks the primary email verified, authorized by a
// confirmation token from the verification mail.
func (e *Engine) SetEmailVerified(ctx context.Context, acct *Account, tok string) (MarkVerifiedResult, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if acct == nil || acct.ID == 0 || tok == "" {
		return 0, fmt.Errorf("%w: account and token are required", ErrMissingArgument)
	}

	outcome, err := e.applyMutation(ctx, mutationSpec{
		attribute:  "email_verified",
		accountID:  acct.ID,
		alreadySet: acct.EmailVerified,
		authorize:  e.authorizeByToken(token.KindDataProtection, token.PurposeEmailConfirmation, acct, tok),
		persist: func(ctx context.Context) (string, UpdateResult, error) {
			return e.store.UpdateEmailVerified(ctx, acct.ID, acct.Stamp, true)
		},
		apply: func(newStamp string) {
			acct.EmailVerified = true
			acct.Stamp = newStamp
		},
	})
	if err != nil {
		return 0, err
	}
	return markVerifiedResult(outcome)
}

// SetAltEmailVerified marks the alternate email verified, authorized by a
// confirmation token mailed to the alternate address.
func (e *Engine) SetAltEmailVerified(ctx context.Context, acct *Account, tok string) (MarkVerifiedResult, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if acct == nil || acct.ID == 0 || tok == "" {
		return 0, fmt.Errorf("%w: account and token are required", ErrMissingArgument)
	}

	outcome, err := e.applyMutation(ctx, mutationSpec{
		attribute:  "alt_email_verified",
		accountID:  acct.ID,
		alreadySet: acct.AltEmailVerified,
		authorize:  e.authorizeByToken(token.KindDataProtection, token.PurposeConfirmAltEmail, acct, tok),
		persist: func(ctx context.Context) (string, UpdateResult, error) {
			return e.store.UpdateAltEmailVerified(ctx, acct.ID, acct.Stamp, true)
		},
		apply: func(newStamp string) {
			acct.AltEmailVerified = true
			acct.Stamp = newStamp
		},
	})
	if err != nil {
		return 0, err
	}
	return markVerifiedResult(outcome)
}

func markVerifiedResult(outcome mutationOutcome) (MarkVerifiedResult, error) {
	switch outcome {
	case mutationApplied:
		return MarkVerifiedSuccess, nil
	case mutationAlreadySet:
		return MarkVerifiedAlreadySet, nil
	case mutationUnauthorized:
		return MarkVerifiedInvalidToken, nil
	}
	return 0, fmt.Errorf("%w: unexpected verification outcome", ErrStoreBackend)
}

// TwoFactorVerifyEmail lets the logged-in account confirm its primary email
// with a TwoFactor-purpose code instead of a mailed link. The account is
// resolved from the primary session on sess.
func (e *Engine) TwoFactorVerifyEmail(ctx context.Context, sess session.Handle, code string) (TwoFactorVerifyEmailResult, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if sess == nil || code == "" {
		return 0, fmt.Errorf("%w: session handle and code are required", ErrMissingArgument)
	}

	claims, ok, err := sess.Current(ctx)
	if err != nil {
		return 0, wrapSession(err)
	}
	if !ok {
		return TwoFactorVerifyEmailNoAccount, nil
	}
	acct, err := e.store.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return TwoFactorVerifyEmailNoAccount, nil
		}
		return 0, wrapStore(err)
	}

	outcome, err := e.applyMutation(ctx, mutationSpec{
		attribute:  "email_verified",
		accountID:  acct.ID,
		alreadySet: acct.EmailVerified,
		authorize:  e.authorizeByToken(token.KindTotp, token.PurposeTwoFactor, acct, code),
		persist: func(ctx context.Context) (string, UpdateResult, error) {
			return e.store.UpdateEmailVerified(ctx, acct.ID, acct.Stamp, true)
		},
		apply: func(newStamp string) {
			acct.EmailVerified = true
			acct.Stamp = newStamp
		},
	})
	if err != nil {
		return 0, err
	}
	switch outcome {
	case mutationApplied:
		return TwoFactorVerifyEmailSuccess, nil
	case mutationAlreadySet:
		return TwoFactorVerifyEmailAlreadySet, nil
	case mutationUnauthorized:
		return TwoFactorVerifyEmailInvalidCode, nil
	}
	return 0, fmt.Errorf("%w: unexpected verification outcome", ErrStoreBackend)
}
