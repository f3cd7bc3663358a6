// Package session defines the session identity contract the engine writes
// through: two independent logical schemes, a primary (fully authenticated)
// scheme carrying account-id and persistence claims and a short-lived
// pending scheme carrying only an account id for two-factor correlation,
// plus the compact binary record encoding shared by the backing stores.
//
// A [Handle] is request-scoped and owned by the caller; the engine never
// holds one between calls. Either scheme, both, or neither may exist on a
// given request, and the pending scheme never carries enough claims to be
// mistaken for a primary session.
//
// # What this package must NOT do
//
//   - Import the root ward package (no upward imports).
//   - Hold account state; claims are a disposable projection recomputed from
//     the account row on every refresh.
package session
