package linkedclass

import "errors"

var (
	// ErrMissingCode is returned when a non-native, non-abstract method
	// has no Code attribute (§4.4).
	ErrMissingCode = errors.New("missing Code attribute")
	// ErrAmbiguousCode is returned when a method carries more than one
	// attribute named "Code".
	ErrAmbiguousCode = errors.New("ambiguous Code attribute")
)
