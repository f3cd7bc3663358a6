// Package ward orchestrates account authentication: primary credential
// verification, an intermediate two-factor challenge, purpose-scoped security
// token issuance and validation, and safe mutation of security-sensitive
// account attributes.
//
// The package is a library, not a server. Transport, cookies, password
// hashing internals, SQL, and outbound email are collaborator interfaces
// ([AccountStore], [session.Handle], [Mailer], [Hasher]) supplied by the
// host; reference implementations live under store/, session/ and mail/.
//
// # Architecture boundaries
//
// ward is the public surface. It exposes [Engine], [Builder], [Config], the
// per-operation result enumerations, and the collaborator contracts. Engine
// methods are safe to call from multiple goroutines after initialization
// through [Builder.Build].
//
// # Error channels
//
// Every operation separates business outcomes from failures. Expected,
// enumerable outcomes (invalid credentials, already-set attributes, values
// in use) come back as typed result values and never as errors. Errors are
// reserved for fatal conditions: collaborator failures, malformed required
// arguments, unregistered token providers, and concurrency conflicts
// ([ErrConcurrencyConflict]), which this layer never retries or translates
// into a business result.
package ward
