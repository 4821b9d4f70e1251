package gateway

import "errors"

// ErrUnreachable is returned when no connection exists for the target party
// or the write to it failed.
var ErrUnreachable = errors.New("party unreachable")
