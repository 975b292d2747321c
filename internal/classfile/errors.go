package classfile

import "errors"

var (
	// ErrBadMagic is returned when the leading 4-byte magic doesn't match
	// 0xCAFEBABE.
	ErrBadMagic = errors.New("bad magic")
	// ErrUnsupportedConstant is returned for a constant-pool tag byte this
	// core doesn't understand.
	ErrUnsupportedConstant = errors.New("unsupported constant tag")
	// ErrBadUtf8 is returned when a Utf8 constant's bytes aren't valid
	// UTF-8.
	ErrBadUtf8 = errors.New("invalid utf8 in constant")
)
