package interp

import "errors"

var (
	// ErrUnsupportedOpcode is fatal: the opcode byte isn't in §4.6's
	// table.
	ErrUnsupportedOpcode = errors.New("unsupported opcode")
	// ErrNoSuchMethod is returned when an INVOKESTATIC target isn't
	// present on the resolved owner class.
	ErrNoSuchMethod = errors.New("no such method")
	// ErrDivisionByZero is fatal: this core has no in-VM exception
	// machinery to catch it (§7, §9 Open Question 2).
	ErrDivisionByZero = errors.New("division by zero")
)
