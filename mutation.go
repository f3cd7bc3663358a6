package ward

import (
	"context"
	"fmt"

	"github.com/davengard/ward/token"
)

// mutationOutcome is the shared protocol's verdict, mapped by each mutator
// onto its operation-specific result enumeration.
type mutationOutcome int

const (
	mutationApplied mutationOutcome = iota
	mutationAlreadySet
	mutationPreconditionFailed
	mutationUnauthorized
	mutationDuplicate
)

// mutationSpec parameterizes one run of the uniform set-attribute protocol:
// idempotence, attribute preconditions, authorization, persistence,
// classification, then side effects. Steps left nil are skipped.
type mutationSpec struct {
	// attribute names the field for audit and error messages.
	attribute string
	accountID int64

	// alreadySet short-circuits before any authorization or persistence.
	alreadySet bool
	// precondition reports false for an attribute-specific refusal. It may
	// perform its own side effects (e.g. re-sending a verification mail).
	precondition func(ctx context.Context) (bool, error)
	// authorize reports false for a failed password or token check.
	authorize func(ctx context.Context) (bool, error)
	// persist performs the purpose-specific update and returns the rotated
	// stamp on UpdateOK.
	persist func(ctx context.Context) (string, UpdateResult, error)
	// apply folds the confirmed change into the caller's account snapshot.
	apply func(newStamp string)
	// postApply runs side effects that only make sense after persistence:
	// session claim refresh, follow-up notifications. Its error is fatal.
	postApply func(ctx context.Context) error
}

func (e *Engine) applyMutation(ctx context.Context, m mutationSpec) (mutationOutcome, error) {
	if m.alreadySet {
		e.metricInc(MetricMutationAlreadySet)
		return mutationAlreadySet, nil
	}

	if m.precondition != nil {
		ok, err := m.precondition(ctx)
		if err != nil {
			return 0, err
		}
		if !ok {
			e.metricInc(MetricMutationRejected)
			e.emitAudit(ctx, auditEventMutation, false, m.accountID, nil, func() map[string]string {
				return map[string]string{"attribute": m.attribute, "reason": "precondition"}
			})
			return mutationPreconditionFailed, nil
		}
	}

	if m.authorize != nil {
		ok, err := m.authorize(ctx)
		if err != nil {
			return 0, err
		}
		if !ok {
			e.metricInc(MetricMutationRejected)
			e.emitAudit(ctx, auditEventMutation, false, m.accountID, nil, func() map[string]string {
				return map[string]string{"attribute": m.attribute, "reason": "unauthorized"}
			})
			return mutationUnauthorized, nil
		}
	}

	newStamp, result, err := m.persist(ctx)
	if err != nil {
		return 0, wrapStore(err)
	}
	switch result {
	case UpdateOK:
	case UpdateDuplicate:
		e.metricInc(MetricMutationDuplicate)
		e.emitAudit(ctx, auditEventMutation, false, m.accountID, nil, func() map[string]string {
			return map[string]string{"attribute": m.attribute, "reason": "duplicate"}
		})
		return mutationDuplicate, nil
	case UpdateConflict:
		// The caller's snapshot is stale and this layer has no way to
		// reconcile it. Surface as fatal, never as a business result, and
		// never retry.
		e.metricInc(MetricConcurrencyConflict)
		e.emitAudit(ctx, auditEventMutation, false, m.accountID, ErrConcurrencyConflict, func() map[string]string {
			return map[string]string{"attribute": m.attribute}
		})
		return 0, fmt.Errorf("%w: %s", ErrConcurrencyConflict, m.attribute)
	default:
		return 0, fmt.Errorf("%w: unknown update result %d", ErrStoreBackend, result)
	}

	if m.apply != nil {
		m.apply(newStamp)
	}
	if m.postApply != nil {
		if err := m.postApply(ctx); err != nil {
			return 0, err
		}
	}

	e.metricInc(MetricMutationApplied)
	e.emitAudit(ctx, auditEventMutation, true, m.accountID, nil, func() map[string]string {
		return map[string]string{"attribute": m.attribute}
	})
	return mutationApplied, nil
}

// authorizeByPassword builds the password-re-entry authorization step.
func (e *Engine) authorizeByPassword(acct *Account, pw string) func(context.Context) (bool, error) {
	return func(context.Context) (bool, error) {
		ok, err := e.hasher.Verify(pw, acct.PasswordHash)
		if err != nil {
			return false, wrapStore(err)
		}
		return ok, nil
	}
}

// authorizeByToken builds the token-validation authorization step.
func (e *Engine) authorizeByToken(kind token.Kind, purpose token.Purpose, acct *Account, value string) func(context.Context) (bool, error) {
	return func(ctx context.Context) (bool, error) {
		validity, err := e.registry.Validate(ctx, kind, purpose, tokenSubject(acct), value)
		if err != nil {
			return false, wrapToken(err)
		}
		return validity == token.Valid, nil
	}
}
