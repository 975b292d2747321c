// Package descriptor scans a method descriptor string "(params)ret" into
// the ordered parameter Kinds the interpreter needs to know how many
// stack values an invocation consumes and how to lay them into locals
// (§4.7).
package descriptor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/khlevnov/jvmlite/internal/vmvalue"
)

// ErrUnsupportedDescriptor is returned for any descriptor token this core
// doesn't support: arrays, reference types, and the primitives this
// subset never needs (B C S Z).
var ErrUnsupportedDescriptor = errors.New("unsupported descriptor token")

// Params scans the parameter list of a method descriptor, returning one
// vmvalue.Kind per parameter in left-to-right order.
func Params(descriptor string) ([]vmvalue.Kind, error) {
	open := strings.IndexByte(descriptor, '(')
	close := strings.IndexByte(descriptor, ')')
	if open != 0 || close < 0 || close < open {
		return nil, fmt.Errorf("%w: malformed descriptor %q", ErrUnsupportedDescriptor, descriptor)
	}

	var kinds []vmvalue.Kind
	params := descriptor[open+1 : close]
	for i := 0; i < len(params); i++ {
		switch params[i] {
		case 'I':
			kinds = append(kinds, vmvalue.KindInt)
		case 'J':
			kinds = append(kinds, vmvalue.KindLong)
		case 'F':
			kinds = append(kinds, vmvalue.KindFloat)
		case 'D':
			kinds = append(kinds, vmvalue.KindDouble)
		case '[':
			return nil, fmt.Errorf("%w: array type in %q", ErrUnsupportedDescriptor, descriptor)
		case 'L':
			end := strings.IndexByte(params[i:], ';')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated reference type in %q", ErrUnsupportedDescriptor, descriptor)
			}
			return nil, fmt.Errorf("%w: reference type %q in %q", ErrUnsupportedDescriptor, params[i:i+end+1], descriptor)
		default:
			return nil, fmt.Errorf("%w: token %q in %q", ErrUnsupportedDescriptor, string(params[i]), descriptor)
		}
	}

	return kinds, nil
}
