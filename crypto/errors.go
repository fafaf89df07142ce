package crypto

import "errors"

// Error taxonomy for the identity core. Callers are expected to test with
// errors.Is; operations wrap these sentinels with context.
var (
	// ErrConfiguration indicates malformed key material at construction,
	// such as a key bundle missing a required role.
	ErrConfiguration = errors.New("configuration error")

	// ErrTypeMismatch indicates a secret, key, or counterparty that is
	// incompatible with the current operation's ciphersuite. It is raised
	// before any cryptographic work is attempted.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrSecurity indicates a failed signature or MAC verification, or an
	// inbound payload that could not be securely interpreted. It is always
	// returned explicitly, never as a silent false.
	ErrSecurity = errors.New("security failure")
)
