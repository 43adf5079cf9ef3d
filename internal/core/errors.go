package core

import "errors"

// Error taxonomy of the engagement core. Adapters map these onto
// reason codes of outbound error events; none of them terminates a
// connection, let alone the process.
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionNotActive = errors.New("session not active")
	ErrNotAMember       = errors.New("not a member of this session")
	ErrTransientStore   = errors.New("transient store failure")
)
