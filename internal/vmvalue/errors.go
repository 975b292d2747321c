package vmvalue

import "errors"

// ErrTypeMismatch is returned when a Value accessor is called against the
// wrong Kind, e.g. popping a Long where the opcode expected an Int.
var ErrTypeMismatch = errors.New("type mismatch")
