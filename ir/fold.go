package ir

import (
	"math"

	"github.com/x448/float16"

	"github.com/gogpu/glslang/diag"
)

// Constant folding operates purely on already-type-checked constant
// nodes. Arithmetic is evaluated at the declared result type's
// precision. Widening promotions never hard-fail; a lossy fold warns.

// asFloat reads the constant as a float64 regardless of integral or
// floating-point kind.
func (c ConstUnion) asFloat() float64 {
	switch {
	case c.kind.IsFloatingPoint():
		return c.d
	case c.kind.IsSigned():
		return float64(c.i)
	default:
		return float64(c.u)
	}
}

// asSigned reads the constant as an int64, truncating floats.
func (c ConstUnion) asSigned() int64 {
	switch {
	case c.kind.IsFloatingPoint():
		return int64(c.d)
	case c.kind.IsSigned():
		return c.i
	default:
		return int64(c.u)
	}
}

// asUnsigned reads the constant as a uint64, truncating floats.
func (c ConstUnion) asUnsigned() uint64 {
	switch {
	case c.kind.IsFloatingPoint():
		return uint64(c.d)
	case c.kind.IsSigned():
		return uint64(c.i)
	default:
		return c.u
	}
}

// convertConstUnion converts one constant to the destination basic
// type. exact is false when the destination cannot represent the source
// value exactly; ok is false when no conversion exists at all.
func convertConstUnion(c ConstUnion, to BasicType) (out ConstUnion, exact, ok bool) {
	if c.kind == to {
		return c, true, true
	}
	if c.kind == Bool || c.kind == TString || to == Bool || to == TString || to == Void {
		return c, false, false
	}

	switch to {
	case Int16:
		v := c.asSigned()
		w := int64(int16(v))
		return ConstUnion{kind: to, i: w}, w == v && intExact(c), true
	case Int:
		v := c.asSigned()
		w := int64(int32(v))
		return ConstUnion{kind: to, i: w}, w == v && intExact(c), true
	case Int64:
		v := c.asSigned()
		return ConstUnion{kind: to, i: v}, intExact(c), true
	case Uint16:
		v := c.asUnsigned()
		w := uint64(uint16(v))
		return ConstUnion{kind: to, u: w}, w == v && intExact(c), true
	case Uint:
		v := c.asUnsigned()
		w := uint64(uint32(v))
		return ConstUnion{kind: to, u: w}, w == v && intExact(c), true
	case Uint64:
		v := c.asUnsigned()
		return ConstUnion{kind: to, u: v}, intExact(c), true
	case Float16:
		src := c.asFloat()
		f := float16.Fromfloat32(float32(src))
		w := float64(f.Float32())
		return ConstUnion{kind: to, d: w}, w == src, true
	case Float:
		src := c.asFloat()
		w := float64(float32(src))
		return ConstUnion{kind: to, d: w}, w == src && floatHoldsInt(c, w), true
	case Double:
		src := c.asFloat()
		return ConstUnion{kind: to, d: src}, floatHoldsInt(c, src), true
	default:
		return c, false, false
	}
}

// intExact reports whether an integral destination received the source
// value without dropping a fractional part.
func intExact(c ConstUnion) bool {
	if !c.kind.IsFloatingPoint() {
		return true
	}
	return c.d == math.Trunc(c.d)
}

// floatHoldsInt reports whether a floating destination value w still
// equals an integral source exactly.
func floatHoldsInt(c ConstUnion, w float64) bool {
	switch {
	case c.kind.IsFloatingPoint():
		return true
	case c.kind.IsSigned():
		return int64(w) == c.i && w == float64(c.i)
	default:
		return uint64(w) == c.u && w == float64(c.u)
	}
}

// PromoteConstantUnion folds a constant node into the destination basic
// type, returning nil when no conversion exists. A lossy fold warns;
// widening promotions are always exact and silent.
func (i *Intermediate) PromoteConstantUnion(to BasicType, node *ConstantUnion) Typed {
	values := make([]ConstUnion, len(node.Values))
	lossy := false
	for idx, v := range node.Values {
		converted, exact, ok := convertConstUnion(v, to)
		if !ok {
			return nil
		}
		if !exact {
			lossy = true
		}
		values[idx] = converted
	}
	if lossy {
		i.sink.Warn(node.Loc(), "constant conversion loses precision", to.String())
	}

	typ := *node.Type()
	typ.Basic = to
	folded := NewConstantUnion(values, typ, node.Loc())
	folded.Literal = node.Literal
	return folded
}

// wrapIntegral truncates an integral result to its kind's width, the
// way the declared result type would store it.
func wrapIntegral(c ConstUnion) ConstUnion {
	switch c.kind {
	case Int16:
		c.i = int64(int16(c.i))
	case Int:
		c.i = int64(int32(c.i))
	case Uint16:
		c.u = uint64(uint16(c.u))
	case Uint:
		c.u = uint64(uint32(c.u))
	}
	return c
}

// foldScalarBinary evaluates one component of a binary operation at the
// declared result type's precision. Both operands have already been
// converted to the result's basic type, except shift counts which keep
// their own integral kind.
func (i *Intermediate) foldScalarBinary(op Op, a, b ConstUnion, loc diag.Loc) (ConstUnion, bool) {
	kind := a.kind

	// Comparisons produce bool from any matching numeric pair.
	if op.IsComparison() {
		switch op {
		case OpEqual:
			return NewBConst(a.Equal(b)), true
		case OpNotEqual:
			return NewBConst(!a.Equal(b)), true
		}
		var less, equal bool
		switch {
		case kind.IsFloatingPoint():
			less, equal = a.d < b.d, a.d == b.d
		case kind.IsSigned():
			less, equal = a.i < b.i, a.i == b.i
		case kind.IsIntegral():
			less, equal = a.u < b.u, a.u == b.u
		default:
			return ConstUnion{}, false
		}
		switch op {
		case OpLessThan:
			return NewBConst(less), true
		case OpGreaterThan:
			return NewBConst(!less && !equal), true
		case OpLessThanEqual:
			return NewBConst(less || equal), true
		case OpGreaterThanEqual:
			return NewBConst(!less), true
		}
		return ConstUnion{}, false
	}

	if op.IsLogical() {
		if kind != Bool {
			return ConstUnion{}, false
		}
		switch op {
		case OpLogicalAnd:
			return NewBConst(a.b && b.b), true
		case OpLogicalOr:
			return NewBConst(a.b || b.b), true
		case OpLogicalXor:
			return NewBConst(a.b != b.b), true
		}
		return ConstUnion{}, false
	}

	if op.IsShift() {
		count := b.asUnsigned() & 63
		out := a
		switch op {
		case OpLeftShift, OpLeftShiftAssign:
			if kind.IsSigned() {
				out.i = a.i << count
			} else {
				out.u = a.u << count
			}
		case OpRightShift, OpRightShiftAssign:
			if kind.IsSigned() {
				out.i = a.i >> count
			} else {
				out.u = a.u >> count
			}
		}
		return wrapIntegral(out), true
	}

	switch {
	case kind.IsFloatingPoint():
		out := ConstUnion{kind: kind}
		switch op {
		case OpAdd:
			out.d = a.d + b.d
		case OpSub:
			out.d = a.d - b.d
		case OpMul:
			out.d = a.d * b.d
		case OpDiv:
			if b.d == 0 {
				i.sink.Error(loc, "division by zero", op.String())
				out.d = 0
			} else {
				out.d = a.d / b.d
			}
		case OpMod:
			out.d = math.Mod(a.d, b.d)
		default:
			return ConstUnion{}, false
		}
		if kind == Float16 {
			out = NewDConst(out.d, Float16)
		}
		return out, true

	case kind.IsSigned():
		out := ConstUnion{kind: kind}
		switch op {
		case OpAdd:
			out.i = a.i + b.i
		case OpSub:
			out.i = a.i - b.i
		case OpMul:
			out.i = a.i * b.i
		case OpDiv:
			if b.i == 0 {
				i.sink.Error(loc, "division by zero", op.String())
			} else {
				out.i = a.i / b.i
			}
		case OpMod:
			if b.i == 0 {
				i.sink.Error(loc, "modulo by zero", op.String())
			} else {
				out.i = a.i % b.i
			}
		case OpAnd:
			out.i = a.i & b.i
		case OpInclusiveOr:
			out.i = a.i | b.i
		case OpExclusiveOr:
			out.i = a.i ^ b.i
		default:
			return ConstUnion{}, false
		}
		return wrapIntegral(out), true

	case kind.IsIntegral():
		out := ConstUnion{kind: kind}
		switch op {
		case OpAdd:
			out.u = a.u + b.u
		case OpSub:
			out.u = a.u - b.u
		case OpMul:
			out.u = a.u * b.u
		case OpDiv:
			if b.u == 0 {
				i.sink.Error(loc, "division by zero", op.String())
			} else {
				out.u = a.u / b.u
			}
		case OpMod:
			if b.u == 0 {
				i.sink.Error(loc, "modulo by zero", op.String())
			} else {
				out.u = a.u % b.u
			}
		case OpAnd:
			out.u = a.u & b.u
		case OpInclusiveOr:
			out.u = a.u | b.u
		case OpExclusiveOr:
			out.u = a.u ^ b.u
		default:
			return ConstUnion{}, false
		}
		return wrapIntegral(out), true
	}

	return ConstUnion{}, false
}

// foldBinary folds a binary operation over two constant nodes,
// componentwise with scalar broadcast. Returns nil when the operation
// has no constant evaluation.
func (i *Intermediate) foldBinary(op Op, left, right *ConstantUnion, resultType Type, loc diag.Loc) Typed {
	n := len(left.Values)
	if len(right.Values) > n {
		n = len(right.Values)
	}
	pick := func(vals []ConstUnion, idx int) ConstUnion {
		if len(vals) == 1 {
			return vals[0]
		}
		return vals[idx]
	}

	// Aggregate equality collapses to a single bool.
	if (op == OpEqual || op == OpNotEqual) && n > 1 {
		equal := true
		for idx := 0; idx < n; idx++ {
			if !pick(left.Values, idx).Equal(pick(right.Values, idx)) {
				equal = false
				break
			}
		}
		if op == OpNotEqual {
			equal = !equal
		}
		return NewConstantUnion([]ConstUnion{NewBConst(equal)}, resultType, loc)
	}

	values := make([]ConstUnion, n)
	for idx := 0; idx < n; idx++ {
		v, ok := i.foldScalarBinary(op, pick(left.Values, idx), pick(right.Values, idx), loc)
		if !ok {
			return nil
		}
		values[idx] = v
	}
	return NewConstantUnion(values, resultType, loc)
}

// foldUnary folds a unary operation over a constant node.
func (i *Intermediate) foldUnary(op Op, operand *ConstantUnion, resultType Type, loc diag.Loc) Typed {
	values := make([]ConstUnion, len(operand.Values))
	for idx, v := range operand.Values {
		out := v
		switch op {
		case OpNegative:
			switch {
			case v.kind.IsFloatingPoint():
				out = NewDConst(-v.d, v.kind)
			case v.kind.IsSigned():
				out.i = -v.i
				out = wrapIntegral(out)
			case v.kind.IsIntegral():
				out.u = -v.u
				out = wrapIntegral(out)
			default:
				return nil
			}
		case OpLogicalNot:
			if v.kind != Bool {
				return nil
			}
			out.b = !v.b
		case OpBitwiseNot:
			switch {
			case v.kind.IsSigned():
				out.i = ^v.i
				out = wrapIntegral(out)
			case v.kind.IsIntegral():
				out.u = ^v.u
				out = wrapIntegral(out)
			default:
				return nil
			}
		default:
			return nil
		}
		values[idx] = out
	}
	return NewConstantUnion(values, resultType, loc)
}

// FoldConstructor folds a constructor aggregate whose children are all
// constants into one constant node, converting each argument into the
// constructed basic type and broadcasting a lone scalar across the
// shape. Returns nil when any child resists folding.
func (i *Intermediate) FoldConstructor(agg *Aggregate) Typed {
	typ := *agg.Type()
	var gathered []ConstUnion
	for _, child := range agg.Children {
		c, ok := child.(*ConstantUnion)
		if !ok {
			return nil
		}
		promoted := i.PromoteConstantUnion(typ.Basic, c)
		if promoted == nil {
			return nil
		}
		gathered = append(gathered, promoted.(*ConstantUnion).Values...)
	}

	want := typ.Components()
	if typ.IsArray() && typ.ArraySize > 0 {
		want *= typ.ArraySize
	}
	if len(gathered) == 1 && want > 1 {
		broadcast := make([]ConstUnion, want)
		for idx := range broadcast {
			broadcast[idx] = gathered[0]
		}
		gathered = broadcast
	}
	if len(gathered) < want {
		return nil
	}
	return NewConstantUnion(gathered[:want], typ, agg.Loc())
}

// FoldDereference folds indexing a constant vector, matrix, or array
// with a constant index. Out-of-range indexes report an error and clamp
// to the first element.
func (i *Intermediate) FoldDereference(node Typed, index int, loc diag.Loc) Typed {
	c, ok := node.(*ConstantUnion)
	if !ok {
		return node
	}
	typ := *node.Type()

	var span int
	var elem Type
	switch {
	case typ.IsArray():
		elem = typ.ElementType()
		span = elem.Components()
	case typ.IsMatrix():
		elem = NewVectorType(typ.Basic, typ.MatrixRows)
		span = typ.MatrixRows
	case typ.IsVector():
		elem = NewType(typ.Basic)
		span = 1
	default:
		return node
	}

	start := index * span
	if start < 0 || start+span > len(c.Values) {
		i.sink.Error(loc, "constant index out of range", "")
		start = 0
	}
	values := make([]ConstUnion, span)
	copy(values, c.Values[start:start+span])
	return NewConstantUnion(values, elem, loc)
}

// FoldSwizzle folds swizzling a constant vector with the given
// component selectors.
func (i *Intermediate) FoldSwizzle(node Typed, selectors []int, loc diag.Loc) Typed {
	c, ok := node.(*ConstantUnion)
	if !ok {
		return node
	}
	values := make([]ConstUnion, 0, len(selectors))
	for _, s := range selectors {
		if s < 0 || s >= len(c.Values) {
			i.sink.Error(loc, "swizzle selector out of range", "")
			s = 0
		}
		values = append(values, c.Values[s])
	}
	typ := NewVectorType(node.Type().Basic, len(selectors))
	if len(selectors) == 1 {
		typ = NewType(node.Type().Basic)
	}
	return NewConstantUnion(values, typ, loc)
}
