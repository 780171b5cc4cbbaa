package ir

import "github.com/x448/float16"

// ConstUnion is one scalar constant value tagged with its basic type.
// Signed integers of every width share the i field, unsigned the u
// field; all floating-point kinds share the d field, with Float16
// values quantized to their storable form on construction.
type ConstUnion struct {
	kind BasicType
	i    int64
	u    uint64
	d    float64
	b    bool
	s    string
}

// NewIConst returns an Int constant.
func NewIConst(v int64) ConstUnion { return ConstUnion{kind: Int, i: v} }

// NewI16Const returns an Int16 constant.
func NewI16Const(v int16) ConstUnion { return ConstUnion{kind: Int16, i: int64(v)} }

// NewI64Const returns an Int64 constant.
func NewI64Const(v int64) ConstUnion { return ConstUnion{kind: Int64, i: v} }

// NewUConst returns a Uint constant.
func NewUConst(v uint64) ConstUnion { return ConstUnion{kind: Uint, u: v} }

// NewU16Const returns a Uint16 constant.
func NewU16Const(v uint16) ConstUnion { return ConstUnion{kind: Uint16, u: uint64(v)} }

// NewU64Const returns a Uint64 constant.
func NewU64Const(v uint64) ConstUnion { return ConstUnion{kind: Uint64, u: v} }

// NewBConst returns a Bool constant.
func NewBConst(v bool) ConstUnion { return ConstUnion{kind: Bool, b: v} }

// NewSConst returns a string constant.
func NewSConst(v string) ConstUnion { return ConstUnion{kind: TString, s: v} }

// NewDConst returns a floating-point constant of the given kind.
// Float16 values are rounded to their 16-bit storable form so that a
// folded half constant behaves exactly like one loaded from storage.
func NewDConst(v float64, kind BasicType) ConstUnion {
	if kind == Float16 {
		v = float64(float16.Fromfloat32(float32(v)).Float32())
	}
	return ConstUnion{kind: kind, d: v}
}

// Kind returns the constant's basic type.
func (c ConstUnion) Kind() BasicType { return c.kind }

// IConst returns the signed integer value.
func (c ConstUnion) IConst() int64 { return c.i }

// UConst returns the unsigned integer value.
func (c ConstUnion) UConst() uint64 { return c.u }

// DConst returns the floating-point value.
func (c ConstUnion) DConst() float64 { return c.d }

// BConst returns the boolean value.
func (c ConstUnion) BConst() bool { return c.b }

// SConst returns the string value.
func (c ConstUnion) SConst() string { return c.s }

// Equal reports exact equality of kind and value.
func (c ConstUnion) Equal(o ConstUnion) bool { return c == o }
