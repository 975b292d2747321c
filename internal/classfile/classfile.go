// Package classfile decodes the canonical class file binary (§4.2 of
// SPEC_FULL.md) into structured, still-unlinked records. Linking those
// records into a runnable Class/Method pair is internal/linkedclass's job.
package classfile

import (
	"fmt"
	"unicode/utf8"

	"github.com/khlevnov/jvmlite/internal/binreader"
)

const magic = 0xCAFEBABE

// AttributeInfo is an undecoded attribute: a name index plus its raw
// payload bytes. Only the Code attribute is ever decoded further, and only
// on demand by the method linker.
type AttributeInfo struct {
	NameIndex uint16
	Info      []byte
}

// RawMethod is a method_info record as laid out on disk, before linking.
type RawMethod struct {
	AccessFlags    uint16
	NameIndex      uint16
	DescriptorIndex uint16
	Attributes     []AttributeInfo
}

// RawField mirrors RawMethod's shape; fields are decoded for structural
// completeness (§4.2 item 6) but are out of scope for linking (no heap).
type RawField struct {
	AccessFlags     uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

// RawClass is the fully decoded, unlinked class file.
type RawClass struct {
	MinorVersion uint16
	MajorVersion uint16

	ConstantPool []RawConstant // 1-indexed; ConstantPool[0] is unused

	AccessFlags uint16
	ThisClass   uint16
	SuperClass  uint16

	Interfaces []uint16
	Fields     []RawField
	Methods    []RawMethod
	Attributes []AttributeInfo
}

// Decode parses buf as a class file binary. It reads exactly §4.2's shape
// and retains all attribute payloads as raw bytes.
func Decode(buf []byte) (*RawClass, error) {
	r := binreader.New(buf)

	magicWord, err := r.ReadU4()
	if err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	if magicWord != magic {
		return nil, fmt.Errorf("%w: got %#x at offset 0", ErrBadMagic, magicWord)
	}

	minor, err := r.ReadU2()
	if err != nil {
		return nil, fmt.Errorf("reading minor_version: %w", err)
	}
	major, err := r.ReadU2()
	if err != nil {
		return nil, fmt.Errorf("reading major_version: %w", err)
	}

	pool, err := decodeConstantPool(r)
	if err != nil {
		return nil, err
	}

	accessFlags, err := r.ReadU2()
	if err != nil {
		return nil, fmt.Errorf("reading access_flags: %w", err)
	}
	thisClass, err := r.ReadU2()
	if err != nil {
		return nil, fmt.Errorf("reading this_class: %w", err)
	}
	superClass, err := r.ReadU2()
	if err != nil {
		return nil, fmt.Errorf("reading super_class: %w", err)
	}

	interfaceCount, err := r.ReadU2()
	if err != nil {
		return nil, fmt.Errorf("reading interfaces_count: %w", err)
	}
	interfaces := make([]uint16, interfaceCount)
	for i := range interfaces {
		interfaces[i], err = r.ReadU2()
		if err != nil {
			return nil, fmt.Errorf("reading interface[%d]: %w", i, err)
		}
	}

	fields, err := decodeFieldsOrMethods[RawField](r, func(af, ni, di uint16, attrs []AttributeInfo) RawField {
		return RawField{AccessFlags: af, NameIndex: ni, DescriptorIndex: di, Attributes: attrs}
	})
	if err != nil {
		return nil, fmt.Errorf("reading fields: %w", err)
	}

	methods, err := decodeFieldsOrMethods[RawMethod](r, func(af, ni, di uint16, attrs []AttributeInfo) RawMethod {
		return RawMethod{AccessFlags: af, NameIndex: ni, DescriptorIndex: di, Attributes: attrs}
	})
	if err != nil {
		return nil, fmt.Errorf("reading methods: %w", err)
	}

	attrs, err := decodeAttributes(r)
	if err != nil {
		return nil, fmt.Errorf("reading class attributes: %w", err)
	}

	return &RawClass{
		MinorVersion: minor,
		MajorVersion: major,
		ConstantPool: pool,
		AccessFlags:  accessFlags,
		ThisClass:    thisClass,
		SuperClass:   superClass,
		Interfaces:   interfaces,
		Fields:       fields,
		Methods:      methods,
		Attributes:   attrs,
	}, nil
}

func decodeConstantPool(r *binreader.Reader) ([]RawConstant, error) {
	count, err := r.ReadU2()
	if err != nil {
		return nil, fmt.Errorf("reading constant_pool_count: %w", err)
	}

	pool := make([]RawConstant, count)
	for idx := uint16(1); idx < count; idx++ {
		tag, err := r.ReadU1()
		if err != nil {
			return nil, fmt.Errorf("reading constant tag at index %d: %w", idx, err)
		}

		switch tag {
		case 1: // Utf8
			length, err := r.ReadU2()
			if err != nil {
				return nil, fmt.Errorf("reading Utf8 length at index %d: %w", idx, err)
			}
			raw, err := r.ReadExact(int(length))
			if err != nil {
				return nil, fmt.Errorf("reading Utf8 bytes at index %d: %w", idx, err)
			}
			if !utf8.Valid(raw) {
				return nil, fmt.Errorf("%w: at constant index %d", ErrBadUtf8, idx)
			}
			pool[idx] = ConstUtf8{Value: string(raw)}

		case 3: // Integer
			v, err := r.ReadI4()
			if err != nil {
				return nil, fmt.Errorf("reading Integer at index %d: %w", idx, err)
			}
			pool[idx] = ConstInteger{Value: v}

		case 4: // Float
			bits, err := r.ReadU4()
			if err != nil {
				return nil, fmt.Errorf("reading Float at index %d: %w", idx, err)
			}
			pool[idx] = ConstFloat{Value: float32FromBits(bits)}

		case 5: // Long
			bits, err := r.ReadU8()
			if err != nil {
				return nil, fmt.Errorf("reading Long at index %d: %w", idx, err)
			}
			pool[idx] = ConstLong{Value: int64(bits)}
			idx++
			if int(idx) < len(pool) {
				pool[idx] = ConstUnusable{}
			}

		case 6: // Double
			bits, err := r.ReadU8()
			if err != nil {
				return nil, fmt.Errorf("reading Double at index %d: %w", idx, err)
			}
			pool[idx] = ConstDouble{Value: float64FromBits(bits)}
			idx++
			if int(idx) < len(pool) {
				pool[idx] = ConstUnusable{}
			}

		case 7: // Class
			nameIdx, err := r.ReadU2()
			if err != nil {
				return nil, fmt.Errorf("reading Class name_index at index %d: %w", idx, err)
			}
			pool[idx] = ConstClass{NameIndex: nameIdx}

		case 8: // String
			utf8Idx, err := r.ReadU2()
			if err != nil {
				return nil, fmt.Errorf("reading String string_index at index %d: %w", idx, err)
			}
			pool[idx] = ConstStringRef{Utf8Index: utf8Idx}

		case 9: // FieldRef
			classIdx, err := r.ReadU2()
			if err != nil {
				return nil, fmt.Errorf("reading FieldRef class_index at index %d: %w", idx, err)
			}
			ntIdx, err := r.ReadU2()
			if err != nil {
				return nil, fmt.Errorf("reading FieldRef name_and_type_index at index %d: %w", idx, err)
			}
			pool[idx] = ConstFieldRef{ClassIndex: classIdx, NameAndTypeIndex: ntIdx}

		case 10: // MethodRef
			classIdx, err := r.ReadU2()
			if err != nil {
				return nil, fmt.Errorf("reading MethodRef class_index at index %d: %w", idx, err)
			}
			ntIdx, err := r.ReadU2()
			if err != nil {
				return nil, fmt.Errorf("reading MethodRef name_and_type_index at index %d: %w", idx, err)
			}
			pool[idx] = ConstMethodRef{ClassIndex: classIdx, NameAndTypeIndex: ntIdx}

		case 12: // NameAndType
			nameIdx, err := r.ReadU2()
			if err != nil {
				return nil, fmt.Errorf("reading NameAndType name_index at index %d: %w", idx, err)
			}
			descIdx, err := r.ReadU2()
			if err != nil {
				return nil, fmt.Errorf("reading NameAndType descriptor_index at index %d: %w", idx, err)
			}
			pool[idx] = ConstNameAndType{NameIndex: nameIdx, DescriptorIndex: descIdx}

		default:
			return nil, fmt.Errorf("%w: tag %d at index %d", ErrUnsupportedConstant, tag, idx)
		}
	}

	return pool, nil
}

func decodeFieldsOrMethods[T any](r *binreader.Reader, build func(accessFlags, nameIdx, descIdx uint16, attrs []AttributeInfo) T) ([]T, error) {
	count, err := r.ReadU2()
	if err != nil {
		return nil, fmt.Errorf("reading count: %w", err)
	}

	out := make([]T, count)
	for i := range out {
		accessFlags, err := r.ReadU2()
		if err != nil {
			return nil, fmt.Errorf("reading access_flags[%d]: %w", i, err)
		}
		nameIdx, err := r.ReadU2()
		if err != nil {
			return nil, fmt.Errorf("reading name_index[%d]: %w", i, err)
		}
		descIdx, err := r.ReadU2()
		if err != nil {
			return nil, fmt.Errorf("reading descriptor_index[%d]: %w", i, err)
		}
		attrs, err := decodeAttributes(r)
		if err != nil {
			return nil, fmt.Errorf("reading attributes[%d]: %w", i, err)
		}
		out[i] = build(accessFlags, nameIdx, descIdx, attrs)
	}

	return out, nil
}

func decodeAttributes(r *binreader.Reader) ([]AttributeInfo, error) {
	count, err := r.ReadU2()
	if err != nil {
		return nil, fmt.Errorf("reading attributes_count: %w", err)
	}

	out := make([]AttributeInfo, count)
	for i := range out {
		nameIdx, err := r.ReadU2()
		if err != nil {
			return nil, fmt.Errorf("reading attribute_name_index[%d]: %w", i, err)
		}
		length, err := r.ReadU4()
		if err != nil {
			return nil, fmt.Errorf("reading attribute_length[%d]: %w", i, err)
		}
		info, err := r.ReadExact(int(length))
		if err != nil {
			return nil, fmt.Errorf("reading attribute bytes[%d]: %w", i, err)
		}
		out[i] = AttributeInfo{NameIndex: nameIdx, Info: append([]byte(nil), info...)}
	}

	return out, nil
}
