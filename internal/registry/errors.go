package registry

import "errors"

// ErrClassNotFound is wrapped with the dotted class name and reported to
// the host as "java.lang.ClassNotFoundException: a.b.C" (§4.5).
var ErrClassNotFound = errors.New("java.lang.ClassNotFoundException")
