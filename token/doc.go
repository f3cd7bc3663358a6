// Package token issues and validates short-lived, purpose-scoped security
// tokens, and routes generate/validate calls through a registry keyed by a
// closed set of provider kinds.
//
// A token is meaningful only for the exact (kind, purpose, account) triple
// it was generated for. Providers additionally bind tokens to the account's
// concurrency stamp at generation time, so any security-sensitive account
// change invalidates outstanding tokens.
//
// Business-level outcomes (Invalid, Expired) are [Validity] values. Errors
// are reserved for precondition violations (empty arguments, unregistered
// kinds) and backend failures.
package token
