package classfile

// RawConstant is one entry decoded from the binary constant pool (§3,
// §4.2). Each concrete type below corresponds to one supported tag.
type RawConstant interface {
	rawConstant()
}

// ConstClass is tag 7: a class or interface reference.
type ConstClass struct {
	NameIndex uint16
}

// ConstFieldRef is tag 9. Unused by the interpreter (no fields) but
// decoded so constant-pool indexing stays aligned with the binary.
type ConstFieldRef struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

// ConstMethodRef is tag 10: owner class + name-and-type of a method.
type ConstMethodRef struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

// ConstStringRef is tag 8: an index into the Utf8 constants.
type ConstStringRef struct {
	Utf8Index uint16
}

// ConstInteger is tag 3.
type ConstInteger struct {
	Value int32
}

// ConstFloat is tag 4.
type ConstFloat struct {
	Value float32
}

// ConstLong is tag 5. Occupies its own index plus a following
// ConstUnusable (§4.2 item 5).
type ConstLong struct {
	Value int64
}

// ConstDouble is tag 6. Occupies its own index plus a following
// ConstUnusable.
type ConstDouble struct {
	Value float64
}

// ConstNameAndType is tag 12: a (name, descriptor) pair referenced by
// field/method refs.
type ConstNameAndType struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

// ConstUtf8 is tag 1: a decoded UTF-8 string.
type ConstUtf8 struct {
	Value string
}

// ConstUnusable is the sentinel slot following a Long or Double so later
// indices keep their on-disk numbering.
type ConstUnusable struct{}

func (ConstClass) rawConstant()        {}
func (ConstFieldRef) rawConstant()     {}
func (ConstMethodRef) rawConstant()    {}
func (ConstStringRef) rawConstant()    {}
func (ConstInteger) rawConstant()      {}
func (ConstFloat) rawConstant()        {}
func (ConstLong) rawConstant()         {}
func (ConstDouble) rawConstant()       {}
func (ConstNameAndType) rawConstant()  {}
func (ConstUtf8) rawConstant()         {}
func (ConstUnusable) rawConstant()     {}
