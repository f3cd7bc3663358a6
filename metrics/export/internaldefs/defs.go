// Package internaldefs holds the shared counter definitions for the metric
// exporters, so the Prometheus and OTel bindings render identical names and
// help strings.
package internaldefs

import (
	ward "github.com/davengard/ward"
)

// CounterDef binds one engine counter to its export name and help string.
type CounterDef struct {
	ID   ward.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: ward.MetricLoginSuccess, Name: "ward_login_success_total", Help: "Successful password logins."},
	{ID: ward.MetricLoginFailure, Name: "ward_login_failure_total", Help: "Rejected password logins (unknown email or bad password)."},
	{ID: ward.MetricTwoFactorChallenge, Name: "ward_two_factor_challenge_total", Help: "Two-factor challenges issued after a correct password."},
	{ID: ward.MetricTwoFactorSuccess, Name: "ward_two_factor_success_total", Help: "Two-factor logins completed."},
	{ID: ward.MetricTwoFactorFailure, Name: "ward_two_factor_failure_total", Help: "Two-factor logins rejected."},
	{ID: ward.MetricLogOff, Name: "ward_log_off_total", Help: "Log-off operations."},
	{ID: ward.MetricSignUpSuccess, Name: "ward_sign_up_success_total", Help: "Accounts created."},
	{ID: ward.MetricSignUpDuplicate, Name: "ward_sign_up_duplicate_total", Help: "Sign-ups rejected for a duplicate email."},
	{ID: ward.MetricMutationApplied, Name: "ward_mutation_applied_total", Help: "Account mutations persisted."},
	{ID: ward.MetricMutationAlreadySet, Name: "ward_mutation_already_set_total", Help: "Account mutations short-circuited as already set."},
	{ID: ward.MetricMutationRejected, Name: "ward_mutation_rejected_total", Help: "Account mutations refused by precondition or authorization."},
	{ID: ward.MetricMutationDuplicate, Name: "ward_mutation_duplicate_total", Help: "Account mutations rejected by a unique constraint."},
	{ID: ward.MetricConcurrencyConflict, Name: "ward_concurrency_conflict_total", Help: "Updates aborted on a stale concurrency stamp."},
	{ID: ward.MetricPasswordResetRequest, Name: "ward_password_reset_request_total", Help: "Password reset mails requested."},
	{ID: ward.MetricPasswordResetSuccess, Name: "ward_password_reset_success_total", Help: "Password resets completed."},
	{ID: ward.MetricPasswordResetFailure, Name: "ward_password_reset_failure_total", Help: "Password resets rejected."},
	{ID: ward.MetricVerificationMailSent, Name: "ward_verification_mail_sent_total", Help: "Email verification mails issued."},
	{ID: ward.MetricMailSent, Name: "ward_mail_sent_total", Help: "Mails handed to the mailer successfully."},
	{ID: ward.MetricMailFailure, Name: "ward_mail_failure_total", Help: "Mails the mailer failed to deliver."},
}
