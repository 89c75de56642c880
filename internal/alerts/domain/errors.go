package alerts

import "errors"

// ErrNotFound indicates the alert is absent from the local store.
var ErrNotFound = errors.New("alerts: not found")

// ErrTerminalStatus indicates a transition was requested from resolved.
var ErrTerminalStatus = errors.New("alerts: status is terminal")
