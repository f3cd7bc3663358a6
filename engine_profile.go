package ward

import (
	"context"
	"fmt"
)

// SetDisplayName changes the public display name, authorized by password
// re-entry. Display names share the uniqueness treatment of email
// addresses, so a taken name reports SetDisplayNameInUse.
func (e *Engine) SetDisplayName(ctx context.Context, acct *Account, name, pw string) (SetDisplayNameResult, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if acct == nil || acct.ID == 0 || name == "" || pw == "" {
		return 0, fmt.Errorf("%w: account, name and password are required", ErrMissingArgument)
	}

	outcome, err := e.applyMutation(ctx, mutationSpec{
		attribute:  "display_name",
		accountID:  acct.ID,
		alreadySet: acct.DisplayName == name,
		authorize:  e.authorizeByPassword(acct, pw),
		persist: func(ctx context.Context) (string, UpdateResult, error) {
			return e.store.UpdateDisplayName(ctx, acct.ID, acct.Stamp, name)
		},
		apply: func(newStamp string) {
			acct.DisplayName = name
			acct.Stamp = newStamp
		},
	})
	if err != nil {
		return 0, err
	}
	switch outcome {
	case mutationApplied:
		return SetDisplayNameSuccess, nil
	case mutationAlreadySet:
		return SetDisplayNameAlreadySet, nil
	case mutationUnauthorized:
		return SetDisplayNameInvalidPassword, nil
	case mutationDuplicate:
		return SetDisplayNameInUse, nil
	}
	return 0, fmt.Errorf("%w: unexpected display name mutation outcome", ErrStoreBackend)
}

// SetTwoFactorEnabled toggles two-factor login, authorized by password
// re-entry. Enabling requires a verified primary email since the challenge
// code is delivered there; when it is unverified the call refuses, sends a
// fresh verification mail, and reports SetTwoFactorEmailUnverified.
// Disabling has no email precondition.
func (e *Engine) SetTwoFactorEnabled(ctx context.Context, acct *Account, enabled bool, pw string) (SetTwoFactorResult, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if acct == nil || acct.ID == 0 || pw == "" {
		return 0, fmt.Errorf("%w: account and password are required", ErrMissingArgument)
	}

	spec := mutationSpec{
		attribute:  "two_factor_enabled",
		accountID:  acct.ID,
		alreadySet: acct.TwoFactorEnabled == enabled,
		authorize:  e.authorizeByPassword(acct, pw),
		persist: func(ctx context.Context) (string, UpdateResult, error) {
			return e.store.UpdateTwoFactorEnabled(ctx, acct.ID, acct.Stamp, enabled)
		},
		apply: func(newStamp string) {
			acct.TwoFactorEnabled = enabled
			acct.Stamp = newStamp
		},
	}
	if enabled {
		spec.precondition = func(ctx context.Context) (bool, error) {
			if acct.EmailVerified {
				return true, nil
			}
			if err := e.sendEmailConfirmation(ctx, acct); err != nil {
				return false, err
			}
			return false, nil
		}
	}

	outcome, err := e.applyMutation(ctx, spec)
	if err != nil {
		return 0, err
	}
	switch outcome {
	case mutationApplied:
		return SetTwoFactorSuccess, nil
	case mutationAlreadySet:
		return SetTwoFactorAlreadySet, nil
	case mutationPreconditionFailed:
		return SetTwoFactorEmailUnverified, nil
	case mutationUnauthorized:
		return SetTwoFactorInvalidPassword, nil
	}
	return 0, fmt.Errorf("%w: unexpected two-factor mutation outcome", ErrStoreBackend)
}
