package constpool

import "errors"

// ErrWrongConstantKind is returned when an index resolves to a constant
// of a different kind than the caller expected (§4.3).
var ErrWrongConstantKind = errors.New("wrong constant kind")

// ErrIndexOutOfRange is returned when an index falls outside
// 1..constant_pool_count (§3 invariant: every pool index is in range).
var ErrIndexOutOfRange = errors.New("constant pool index out of range")
