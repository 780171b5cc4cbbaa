package ir

// The promotion/conversion lattice over basic numeric types. Every
// higher-level node-construction routine consults CanImplicitlyPromote;
// the five classifiers below are mutually exclusive for any ordered
// pair of types.

// IsIntegralPromotion reports a value-preserving integral widening:
// every value of from is representable in to.
func IsIntegralPromotion(from, to BasicType) bool {
	if from == to {
		return false
	}
	switch from {
	case Int16:
		return to == Int || to == Int64
	case Uint16:
		return to == Int || to == Int64 || to == Uint || to == Uint64
	case Int:
		return to == Int64
	case Uint:
		return to == Int64 || to == Uint64
	default:
		return false
	}
}

// IsFPPromotion reports a value-preserving floating-point widening.
func IsFPPromotion(from, to BasicType) bool {
	if from == to {
		return false
	}
	switch from {
	case Float16:
		return to == Float || to == Double
	case Float:
		return to == Double
	default:
		return false
	}
}

// IsIntegralConversion reports an integral-to-integral change that may
// lose precision or signedness.
func IsIntegralConversion(from, to BasicType) bool {
	if from == to || !from.IsIntegral() || !to.IsIntegral() {
		return false
	}
	return !IsIntegralPromotion(from, to)
}

// IsFPConversion reports a floating-point narrowing.
func IsFPConversion(from, to BasicType) bool {
	if from == to || !from.IsFloatingPoint() || !to.IsFloatingPoint() {
		return false
	}
	return !IsFPPromotion(from, to)
}

// IsFPIntegralConversion reports an integral-to-floating-point change.
// The reverse direction is never implicit.
func IsFPIntegralConversion(from, to BasicType) bool {
	return from.IsIntegral() && to.IsFloatingPoint()
}

// CanImplicitlyPromote decides whether a value of type from may be
// implicitly converted to type to in the context of op. Pass OpNull
// when there is no operator context.
//
// Operator special cases:
//   - shifts take any pair of integral operands, signedness-free, but
//     never floating point;
//   - assignments accept promotions and integral→floating-point but
//     refuse narrowing;
//   - comparisons and the ternary selector refuse sign-changing
//     integral conversions, whose result would be ambiguous.
func CanImplicitlyPromote(from, to BasicType, op Op) bool {
	if from == to {
		return true
	}
	if from == Void || to == Void || from == TString || to == TString {
		return false
	}
	if from == Bool || to == Bool {
		// bool never converts implicitly
		return false
	}

	if op.IsShift() {
		return from.IsIntegral() && to.IsIntegral()
	}

	promotion := IsIntegralPromotion(from, to) || IsFPPromotion(from, to)
	if promotion {
		return true
	}

	if op.IsAssignment() {
		// No narrowing on stores; only the always-safe cases.
		return IsFPIntegralConversion(from, to)
	}

	if (op.IsComparison() || op == OpSelection) &&
		IsIntegralConversion(from, to) && from.IsSigned() != to.IsSigned() {
		return false
	}

	return IsIntegralConversion(from, to) ||
		IsFPConversion(from, to) ||
		IsFPIntegralConversion(from, to)
}

// rank orders the numeric types for common-type resolution; higher
// wins. Unsigned outranks signed at equal width.
func rank(b BasicType) int {
	switch b {
	case Int16:
		return 1
	case Uint16:
		return 2
	case Int:
		return 3
	case Uint:
		return 4
	case Int64:
		return 5
	case Uint64:
		return 6
	case Float16:
		return 7
	case Float:
		return 8
	case Double:
		return 9
	default:
		return 0
	}
}

// ConversionDestinationType resolves the common target type a binary
// operator promotes its operands to. It returns ok=false when no target
// is implicitly reachable from both operands under op.
func ConversionDestinationType(a, b BasicType, op Op) (BasicType, bool) {
	if a == b {
		return a, true
	}
	dst := a
	if rank(b) > rank(a) {
		dst = b
	}
	// A shift keeps its left operand's type regardless of rank.
	if op.IsShift() {
		dst = a
	}
	if !CanImplicitlyPromote(a, dst, op) || !CanImplicitlyPromote(b, dst, op) {
		return Void, false
	}
	return dst, true
}
