package ward

import "sync/atomic"

// MetricID indexes one engine counter.
type MetricID uint16

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricTwoFactorChallenge
	MetricTwoFactorSuccess
	MetricTwoFactorFailure
	MetricLogOff
	MetricSignUpSuccess
	MetricSignUpDuplicate
	MetricMutationApplied
	MetricMutationAlreadySet
	MetricMutationRejected
	MetricMutationDuplicate
	MetricConcurrencyConflict
	MetricPasswordResetRequest
	MetricPasswordResetSuccess
	MetricPasswordResetFailure
	MetricVerificationMailSent
	MetricMailSent
	MetricMailFailure
	metricIDCount
)

var metricNames = [metricIDCount]string{
	MetricLoginSuccess:         "ward_login_success_total",
	MetricLoginFailure:         "ward_login_failure_total",
	MetricTwoFactorChallenge:   "ward_two_factor_challenge_total",
	MetricTwoFactorSuccess:     "ward_two_factor_success_total",
	MetricTwoFactorFailure:     "ward_two_factor_failure_total",
	MetricLogOff:               "ward_log_off_total",
	MetricSignUpSuccess:        "ward_sign_up_success_total",
	MetricSignUpDuplicate:      "ward_sign_up_duplicate_total",
	MetricMutationApplied:      "ward_mutation_applied_total",
	MetricMutationAlreadySet:   "ward_mutation_already_set_total",
	MetricMutationRejected:     "ward_mutation_rejected_total",
	MetricMutationDuplicate:    "ward_mutation_duplicate_total",
	MetricConcurrencyConflict:  "ward_concurrency_conflict_total",
	MetricPasswordResetRequest: "ward_password_reset_request_total",
	MetricPasswordResetSuccess: "ward_password_reset_success_total",
	MetricPasswordResetFailure: "ward_password_reset_failure_total",
	MetricVerificationMailSent: "ward_verification_mail_sent_total",
	MetricMailSent:             "ward_mail_sent_total",
	MetricMailFailure:          "ward_mail_failure_total",
}

// MetricName returns the stable export name for id, or "" for an unknown id.
func MetricName(id MetricID) string {
	if id >= metricIDCount {
		return ""
	}
	return metricNames[id]
}

// MetricIDs returns every defined id, in export order.
func MetricIDs() []MetricID {
	out := make([]MetricID, 0, metricIDCount)
	for id := MetricID(0); id < metricIDCount; id++ {
		out = append(out, id)
	}
	return out
}

// Metrics is a fixed set of atomic counters. A disabled Metrics is inert
// but still safe to call.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]atomic.Uint64
}

func newMetrics(enabled bool) *Metrics {
	return &Metrics{enabled: enabled}
}

// Inc bumps id by one.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// Snapshot copies all counters. Counters increment concurrently, so the
// snapshot is per-counter consistent, not globally consistent.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricIDCount)}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
