// Package ir builds and links the typed intermediate representation of
// a shading-language compilation unit.
//
// One Intermediate context owns everything a unit accumulates while its
// tree is built: the typed node tree, the resource-usage tracker, the
// call graph, and the process log. Contexts are independent until the
// explicit Merge step combines finalized units into one program.
package ir

// BasicType is a primitive scalar kind.
type BasicType uint8

const (
	Void BasicType = iota
	Bool
	Int16
	Uint16
	Int
	Uint
	Int64
	Uint64
	Float16
	Float
	Double
	TString // string literals, never participate in conversions
)

// String returns the source-language spelling of the basic type.
func (b BasicType) String() string {
	switch b {
	case Void:
		return "void"
	case Bool:
		return "bool"
	case Int16:
		return "int16_t"
	case Uint16:
		return "uint16_t"
	case Int:
		return "int"
	case Uint:
		return "uint"
	case Int64:
		return "int64_t"
	case Uint64:
		return "uint64_t"
	case Float16:
		return "float16_t"
	case Float:
		return "float"
	case Double:
		return "double"
	case TString:
		return "string"
	default:
		return "unknown"
	}
}

// IsIntegral reports whether the type is a signed or unsigned integer.
func (b BasicType) IsIntegral() bool {
	switch b {
	case Int16, Uint16, Int, Uint, Int64, Uint64:
		return true
	default:
		return false
	}
}

// IsFloatingPoint reports whether the type is a floating-point kind.
func (b BasicType) IsFloatingPoint() bool {
	switch b {
	case Float16, Float, Double:
		return true
	default:
		return false
	}
}

// IsSigned reports whether the integral type is signed.
func (b BasicType) IsSigned() bool {
	switch b {
	case Int16, Int, Int64:
		return true
	default:
		return false
	}
}

// Width returns the type's width in bits, or 0 for non-numeric types.
func (b BasicType) Width() int {
	switch b {
	case Int16, Uint16, Float16:
		return 16
	case Int, Uint, Float:
		return 32
	case Int64, Uint64, Double:
		return 64
	default:
		return 0
	}
}

// Stage identifies a pipeline shader stage.
type Stage uint8

const (
	StageVertex Stage = iota
	StageTessControl
	StageTessEvaluation
	StageGeometry
	StageFragment
	StageCompute

	StageCount
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageTessControl:
		return "tess-control"
	case StageTessEvaluation:
		return "tess-evaluation"
	case StageGeometry:
		return "geometry"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		return "unknown"
	}
}

// StorageQualifier says where a variable lives relative to the shader's
// external surface.
type StorageQualifier uint8

const (
	StorageTemp StorageQualifier = iota
	StorageGlobal
	StorageConst
	StorageIn
	StorageOut
	StorageUniform
	StorageBuffer
)

// String returns the storage qualifier keyword.
func (s StorageQualifier) String() string {
	switch s {
	case StorageTemp:
		return "temp"
	case StorageGlobal:
		return "global"
	case StorageConst:
		return "const"
	case StorageIn:
		return "in"
	case StorageOut:
		return "out"
	case StorageUniform:
		return "uniform"
	case StorageBuffer:
		return "buffer"
	default:
		return "unknown"
	}
}

// LayoutNotSet marks a layout field that was never declared.
const LayoutNotSet = -1

// ImplicitArraySize marks an array whose size is to be resolved from
// another compilation unit at link time.
const ImplicitArraySize = -1

// Qualifier carries the layout attributes attached to a declaration.
// Unset numeric fields hold LayoutNotSet.
type Qualifier struct {
	Storage   StorageQualifier
	Location  int
	Component int
	Index     int
	Binding   int
	Set       int
	Offset    int
	SpecID    int
	XfbBuffer int
	XfbOffset int
	XfbStride int
}

// NewQualifier returns a qualifier with every layout field unset.
func NewQualifier(storage StorageQualifier) Qualifier {
	return Qualifier{
		Storage:   storage,
		Location:  LayoutNotSet,
		Component: LayoutNotSet,
		Index:     LayoutNotSet,
		Binding:   LayoutNotSet,
		Set:       LayoutNotSet,
		Offset:    LayoutNotSet,
		SpecID:    LayoutNotSet,
		XfbBuffer: LayoutNotSet,
		XfbOffset: LayoutNotSet,
		XfbStride: LayoutNotSet,
	}
}

// HasLocation reports whether an explicit location was declared.
func (q Qualifier) HasLocation() bool { return q.Location != LayoutNotSet }

// HasComponent reports whether an explicit component was declared.
func (q Qualifier) HasComponent() bool { return q.Component != LayoutNotSet }

// HasIndex reports whether an explicit index was declared.
func (q Qualifier) HasIndex() bool { return q.Index != LayoutNotSet }

// HasBinding reports whether an explicit binding was declared.
func (q Qualifier) HasBinding() bool { return q.Binding != LayoutNotSet }

// HasSpecID reports whether a specialization-constant id was declared.
func (q Qualifier) HasSpecID() bool { return q.SpecID != LayoutNotSet }

// HasXfb reports whether the declaration targets a transform-feedback
// buffer.
func (q Qualifier) HasXfb() bool { return q.XfbBuffer != LayoutNotSet }

// Type describes the shape of a value: a basic scalar kind, an optional
// vector/matrix shape, an optional array dimension, and the declaration
// qualifier.
type Type struct {
	Basic      BasicType
	Vector     int // component count; 1 for scalars
	MatrixCols int // 0 when not a matrix
	MatrixRows int
	ArraySize  int // 0: not an array; ImplicitArraySize: unsized
	Qualifier  Qualifier
}

// NewType returns a scalar type of the given basic kind with an unset
// qualifier.
func NewType(basic BasicType) Type {
	return Type{Basic: basic, Vector: 1, Qualifier: NewQualifier(StorageTemp)}
}

// NewVectorType returns a vector type of the given basic kind and size.
func NewVectorType(basic BasicType, size int) Type {
	t := NewType(basic)
	t.Vector = size
	return t
}

// NewMatrixType returns a matrix type of the given basic kind and shape.
func NewMatrixType(basic BasicType, cols, rows int) Type {
	t := NewType(basic)
	t.Vector = rows
	t.MatrixCols = cols
	t.MatrixRows = rows
	return t
}

// IsScalar reports whether the type is a lone scalar.
func (t Type) IsScalar() bool { return t.Vector == 1 && t.MatrixCols == 0 && !t.IsArray() }

// IsVector reports whether the type is a vector.
func (t Type) IsVector() bool { return t.Vector > 1 && t.MatrixCols == 0 }

// IsMatrix reports whether the type is a matrix.
func (t Type) IsMatrix() bool { return t.MatrixCols > 0 }

// IsArray reports whether the type is an array.
func (t Type) IsArray() bool { return t.ArraySize != 0 }

// IsImplicitlySizedArray reports whether the array size awaits link-time
// resolution.
func (t Type) IsImplicitlySizedArray() bool { return t.ArraySize == ImplicitArraySize }

// Components returns the number of scalar components in one element.
func (t Type) Components() int {
	if t.IsMatrix() {
		return t.MatrixCols * t.MatrixRows
	}
	return t.Vector
}

// ElementType returns the type with one array dimension stripped.
func (t Type) ElementType() Type {
	t.ArraySize = 0
	return t
}

// SameShape reports whether two types agree on basic kind, vector and
// matrix shape, and array size, ignoring qualifiers.
func (t Type) SameShape(other Type) bool {
	return t.Basic == other.Basic &&
		t.Vector == other.Vector &&
		t.MatrixCols == other.MatrixCols &&
		t.MatrixRows == other.MatrixRows &&
		t.ArraySize == other.ArraySize
}

// SameQualification reports whether two types agree on storage and all
// declared layout fields.
func (t Type) SameQualification(other Type) bool {
	return t.Qualifier == other.Qualifier
}
