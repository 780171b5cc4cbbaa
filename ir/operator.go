package ir

// Op identifies the operation a node performs.
type Op uint8

const (
	OpNull Op = iota

	// Binary arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpRightShift
	OpLeftShift
	OpAnd
	OpInclusiveOr
	OpExclusiveOr

	// Comparison
	OpEqual
	OpNotEqual
	OpLessThan
	OpGreaterThan
	OpLessThanEqual
	OpGreaterThanEqual

	// Logical
	OpLogicalOr
	OpLogicalXor
	OpLogicalAnd

	// Unary
	OpNegative
	OpLogicalNot
	OpBitwiseNot

	// Assignment
	OpAssign
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpDivAssign
	OpModAssign
	OpAndAssign
	OpInclusiveOrAssign
	OpExclusiveOrAssign
	OpLeftShiftAssign
	OpRightShiftAssign

	// Indexing and selection
	OpIndexDirect
	OpIndexIndirect
	OpVectorSwizzle
	OpSelection
	OpComma

	// Structure
	OpSequence
	OpFunction
	OpFunctionCall
	OpParameters
	OpLinkerObjects
	OpConstruct

	// Conversion to the node's declared type
	OpConvert

	// Flow control
	OpReturn
	OpBreak
	OpContinue
	OpDiscard
)

// String returns a short operator name for diagnostics.
func (op Op) String() string {
	switch op {
	case OpNull:
		return ""
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpRightShift:
		return ">>"
	case OpLeftShift:
		return "<<"
	case OpAnd:
		return "&"
	case OpInclusiveOr:
		return "|"
	case OpExclusiveOr:
		return "^"
	case OpEqual:
		return "=="
	case OpNotEqual:
		return "!="
	case OpLessThan:
		return "<"
	case OpGreaterThan:
		return ">"
	case OpLessThanEqual:
		return "<="
	case OpGreaterThanEqual:
		return ">="
	case OpLogicalOr:
		return "||"
	case OpLogicalXor:
		return "^^"
	case OpLogicalAnd:
		return "&&"
	case OpNegative:
		return "-"
	case OpLogicalNot:
		return "!"
	case OpBitwiseNot:
		return "~"
	case OpAssign:
		return "="
	case OpAddAssign:
		return "+="
	case OpSubAssign:
		return "-="
	case OpMulAssign:
		return "*="
	case OpDivAssign:
		return "/="
	case OpModAssign:
		return "%="
	case OpAndAssign:
		return "&="
	case OpInclusiveOrAssign:
		return "|="
	case OpExclusiveOrAssign:
		return "^="
	case OpLeftShiftAssign:
		return "<<="
	case OpRightShiftAssign:
		return ">>="
	case OpIndexDirect, OpIndexIndirect:
		return "[]"
	case OpVectorSwizzle:
		return "swizzle"
	case OpSelection:
		return "?:"
	case OpComma:
		return ","
	case OpSequence:
		return "sequence"
	case OpFunction:
		return "function"
	case OpFunctionCall:
		return "call"
	case OpParameters:
		return "parameters"
	case OpLinkerObjects:
		return "linker-objects"
	case OpConstruct:
		return "construct"
	case OpConvert:
		return "convert"
	case OpReturn:
		return "return"
	case OpBreak:
		return "break"
	case OpContinue:
		return "continue"
	case OpDiscard:
		return "discard"
	default:
		return "op"
	}
}

// IsAssignment reports whether the operator stores into its left
// operand.
func (op Op) IsAssignment() bool {
	switch op {
	case OpAssign, OpAddAssign, OpSubAssign, OpMulAssign, OpDivAssign, OpModAssign,
		OpAndAssign, OpInclusiveOrAssign, OpExclusiveOrAssign,
		OpLeftShiftAssign, OpRightShiftAssign:
		return true
	default:
		return false
	}
}

// IsShift reports whether the operator is a bit shift or shift-assign.
func (op Op) IsShift() bool {
	switch op {
	case OpLeftShift, OpRightShift, OpLeftShiftAssign, OpRightShiftAssign:
		return true
	default:
		return false
	}
}

// IsComparison reports whether the operator compares its operands.
func (op Op) IsComparison() bool {
	switch op {
	case OpEqual, OpNotEqual, OpLessThan, OpGreaterThan, OpLessThanEqual, OpGreaterThanEqual:
		return true
	default:
		return false
	}
}

// IsBitwise reports whether the operator works on the bit pattern and
// therefore requires integral operands.
func (op Op) IsBitwise() bool {
	switch op {
	case OpAnd, OpInclusiveOr, OpExclusiveOr, OpBitwiseNot,
		OpAndAssign, OpInclusiveOrAssign, OpExclusiveOrAssign:
		return true
	default:
		return op.IsShift() || op == OpMod || op == OpModAssign
	}
}

// IsLogical reports whether the operator requires boolean operands.
func (op Op) IsLogical() bool {
	switch op {
	case OpLogicalAnd, OpLogicalOr, OpLogicalXor, OpLogicalNot:
		return true
	default:
		return false
	}
}
