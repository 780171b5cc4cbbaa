package ir

import (
	"github.com/gogpu/glslang/diag"
)

// Node construction. Every routine applies the conversion lattice,
// validates operand shapes, and folds constants; a routine that cannot
// build a legal node returns nil and leaves error reporting to the
// caller, so one pass can surface many type errors.

// AddSymbol creates a symbol node for a declared variable, assigning it
// a unit-unique id.
func (i *Intermediate) AddSymbol(name string, typ Type, loc diag.Loc) *Symbol {
	i.symbolID++
	return NewSymbol(i.symbolID, name, typ, loc)
}

// AddConstantUnion creates a constant node over pre-folded values.
func (i *Intermediate) AddConstantUnion(values []ConstUnion, typ Type, loc diag.Loc, literal bool) *ConstantUnion {
	c := NewConstantUnion(values, typ, loc)
	c.Literal = literal
	return c
}

// AddScalarConstant creates a scalar constant node of the value's own
// kind.
func (i *Intermediate) AddScalarConstant(v ConstUnion, loc diag.Loc) *ConstantUnion {
	return NewConstantUnion([]ConstUnion{v}, NewType(v.Kind()), loc)
}

// AddConversion wraps node in a conversion to the target type's basic
// kind, but only when the lattice licenses it for op; otherwise nil.
// Constant operands fold immediately instead of wrapping.
func (i *Intermediate) AddConversion(op Op, to Type, node Typed) Typed {
	from := node.Type().Basic
	if from == to.Basic {
		return node
	}
	if !CanImplicitlyPromote(from, to.Basic, op) {
		return nil
	}

	if c, ok := node.(*ConstantUnion); ok {
		return i.PromoteConstantUnion(to.Basic, c)
	}

	converted := *node.Type()
	converted.Basic = to.Basic
	u := &Unary{Op: OpConvert, Operand: node}
	u.typ = converted
	u.loc = node.Loc()
	return u
}

// addConversionPair converts two operands to the common type op
// promotes them to. Returns nils when no common type is reachable.
func (i *Intermediate) addConversionPair(op Op, left, right Typed) (Typed, Typed) {
	dst, ok := ConversionDestinationType(left.Type().Basic, right.Type().Basic, op)
	if !ok {
		return nil, nil
	}
	to := NewType(dst)
	if op.IsShift() {
		// Shift operands keep their own integral kinds.
		return left, right
	}
	l := i.AddConversion(op, to, left)
	r := i.AddConversion(op, to, right)
	if l == nil || r == nil {
		return nil, nil
	}
	return l, r
}

// binaryShapesAgree validates the scalar/vector/matrix shapes of a
// binary operation and returns the result shape (ignoring basic type).
func binaryShapesAgree(op Op, left, right Type) (Type, bool) {
	switch {
	case left.IsArray() || right.IsArray():
		// Arrays only compare and assign, shape-identical.
		if left.SameShape(right) && (op.IsComparison() || op.IsAssignment()) {
			return left, true
		}
		return Type{}, false

	case left.IsScalar() && right.IsScalar():
		return left, true

	case left.IsMatrix() || right.IsMatrix():
		switch {
		case left.IsMatrix() && right.IsScalar():
			return left, true
		case left.IsScalar() && right.IsMatrix():
			return right, true
		case left.IsMatrix() && right.IsVector():
			// M * v needs columns == vector size
			if op == OpMul && left.MatrixCols == right.Vector {
				return NewVectorType(left.Basic, left.MatrixRows), true
			}
			return Type{}, false
		case left.IsVector() && right.IsMatrix():
			if op == OpMul && left.Vector == right.MatrixRows {
				return NewVectorType(right.Basic, right.MatrixCols), true
			}
			return Type{}, false
		default: // matrix op matrix
			if op == OpMul {
				if left.MatrixCols == right.MatrixRows {
					return NewMatrixType(left.Basic, right.MatrixCols, left.MatrixRows), true
				}
				return Type{}, false
			}
			if left.MatrixCols == right.MatrixCols && left.MatrixRows == right.MatrixRows {
				return left, true
			}
			return Type{}, false
		}

	case left.IsVector() && right.IsVector():
		if left.Vector != right.Vector {
			return Type{}, false
		}
		return left, true

	case left.IsVector():
		return left, true // vector op scalar broadcasts

	default:
		return right, true // scalar op vector broadcasts
	}
}

// AddBinaryMath builds a typed binary-operator node, inserting implicit
// conversions and folding constants. Returns nil on an illegal operand
// pair; the caller reports the type error.
func (i *Intermediate) AddBinaryMath(op Op, left, right Typed, loc diag.Loc) Typed {
	if left == nil || right == nil {
		return nil
	}
	lt, rt := *left.Type(), *right.Type()

	if op.IsLogical() {
		if lt.Basic != Bool || rt.Basic != Bool || !lt.IsScalar() || !rt.IsScalar() {
			return nil
		}
	}
	if op.IsBitwise() && !op.IsShift() && op != OpMod && op != OpModAssign {
		if !lt.Basic.IsIntegral() || !rt.Basic.IsIntegral() {
			return nil
		}
	}
	if op.IsShift() && (!lt.Basic.IsIntegral() || !rt.Basic.IsIntegral()) {
		return nil
	}
	// Ordered comparisons take scalars only; == and != compare whole
	// aggregates.
	if op.IsComparison() && op != OpEqual && op != OpNotEqual {
		if !lt.IsScalar() || !rt.IsScalar() {
			return nil
		}
	}

	shape, ok := binaryShapesAgree(op, lt, rt)
	if !ok {
		return nil
	}

	if !op.IsLogical() {
		left, right = i.addConversionPair(op, left, right)
		if left == nil || right == nil {
			return nil
		}
	}

	resultType := shape
	resultType.Basic = left.Type().Basic
	if op.IsComparison() {
		// Aggregate comparison yields one scalar bool.
		resultType = NewType(Bool)
	}
	if op.IsLogical() {
		resultType = NewType(Bool)
	}

	if lc, lok := left.(*ConstantUnion); lok {
		if rc, rok := right.(*ConstantUnion); rok {
			if folded := i.foldBinary(op, lc, rc, resultType, loc); folded != nil {
				return folded
			}
		}
	}

	node := &Binary{Op: op, Left: left, Right: right}
	node.typ = resultType
	node.loc = loc
	return node
}

// AddAssign builds an assignment node, converting the right operand to
// the left's type. Returns nil when the store would need an illegal
// implicit conversion.
func (i *Intermediate) AddAssign(op Op, left, right Typed, loc diag.Loc) Typed {
	if left == nil || right == nil || !op.IsAssignment() {
		return nil
	}
	lt, rt := *left.Type(), *right.Type()

	if _, ok := binaryShapesAgree(op, lt, rt); !ok {
		return nil
	}
	converted := i.AddConversion(op, lt, right)
	if converted == nil {
		return nil
	}

	node := &Binary{Op: op, Left: left, Right: converted}
	node.typ = lt
	node.typ.Qualifier = NewQualifier(StorageTemp)
	node.loc = loc
	return node
}

// AddIndex builds an indexing node over a vector, matrix, or array
// base. A constant base with a constant direct index folds.
func (i *Intermediate) AddIndex(op Op, base, index Typed, loc diag.Loc) Typed {
	if base == nil || index == nil {
		return nil
	}
	bt := *base.Type()
	if !index.Type().Basic.IsIntegral() || !index.Type().IsScalar() {
		return nil
	}

	var elem Type
	switch {
	case bt.IsArray():
		elem = bt.ElementType()
	case bt.IsMatrix():
		elem = NewVectorType(bt.Basic, bt.MatrixRows)
	case bt.IsVector():
		elem = NewType(bt.Basic)
	default:
		return nil
	}

	if op == OpIndexDirect {
		if ic, ok := index.(*ConstantUnion); ok && IsConstant(base) {
			return i.FoldDereference(base, int(ic.Values[0].asSigned()), loc)
		}
	}

	node := &Binary{Op: op, Left: base, Right: index}
	node.typ = elem
	node.loc = loc
	return node
}

// AddUnaryMath builds a typed unary-operator node, folding constant
// operands. Returns nil on an illegal operand.
func (i *Intermediate) AddUnaryMath(op Op, child Typed, loc diag.Loc) Typed {
	if child == nil {
		return nil
	}
	ct := *child.Type()

	switch op {
	case OpNegative:
		if !ct.Basic.IsIntegral() && !ct.Basic.IsFloatingPoint() {
			return nil
		}
	case OpLogicalNot:
		if ct.Basic != Bool || !ct.IsScalar() {
			return nil
		}
	case OpBitwiseNot:
		if !ct.Basic.IsIntegral() {
			return nil
		}
	case OpConvert:
		// built through AddConversion only
		return nil
	}

	resultType := ct
	resultType.Qualifier = NewQualifier(StorageTemp)

	if c, ok := child.(*ConstantUnion); ok {
		if folded := i.foldUnary(op, c, resultType, loc); folded != nil {
			return folded
		}
	}

	node := &Unary{Op: op, Operand: child}
	node.typ = resultType
	node.loc = loc
	return node
}

// AddSelection builds a ternary selection. Both branches converge to a
// common type; a constant condition selects its branch outright.
func (i *Intermediate) AddSelection(cond Typed, trueBlock, falseBlock Typed, loc diag.Loc) Typed {
	if cond == nil || trueBlock == nil || falseBlock == nil {
		return nil
	}
	if cond.Type().Basic != Bool || !cond.Type().IsScalar() {
		return nil
	}

	trueBlock, falseBlock = i.addConversionPair(OpSelection, trueBlock, falseBlock)
	if trueBlock == nil || falseBlock == nil {
		return nil
	}
	if !trueBlock.Type().SameShape(*falseBlock.Type()) {
		return nil
	}

	if c, ok := cond.(*ConstantUnion); ok {
		if c.Values[0].BConst() {
			return trueBlock
		}
		return falseBlock
	}

	node := &Selection{Cond: cond, TrueBlock: trueBlock, FalseBlock: falseBlock}
	node.typ = *trueBlock.Type()
	node.typ.Qualifier = NewQualifier(StorageTemp)
	node.loc = loc
	return node
}

// AddIfElse builds an if/else statement node (void type). The false
// block may be nil.
func (i *Intermediate) AddIfElse(cond Typed, trueBlock, falseBlock Node, loc diag.Loc) *Selection {
	if cond == nil {
		return nil
	}
	node := &Selection{Cond: cond, TrueBlock: trueBlock, FalseBlock: falseBlock}
	node.typ = NewType(Void)
	node.loc = loc
	return node
}

// AddComma builds a comma expression taking the right operand's value.
func (i *Intermediate) AddComma(left, right Typed, loc diag.Loc) Typed {
	if left == nil || right == nil {
		return nil
	}
	node := &Binary{Op: OpComma, Left: left, Right: right}
	node.typ = *right.Type()
	node.typ.Qualifier = NewQualifier(StorageTemp)
	node.loc = loc
	return node
}

// AddSwizzle builds a component-selection node over a vector base,
// folding a constant base.
func (i *Intermediate) AddSwizzle(base Typed, selectors []int, loc diag.Loc) Typed {
	if base == nil || len(selectors) == 0 || len(selectors) > 4 {
		return nil
	}
	bt := *base.Type()
	if !bt.IsVector() {
		return nil
	}
	for _, s := range selectors {
		if s < 0 || s >= bt.Vector {
			return nil
		}
	}

	if IsConstant(base) {
		return i.FoldSwizzle(base, selectors, loc)
	}

	sel := make([]Node, len(selectors))
	for idx, s := range selectors {
		sel[idx] = i.AddScalarConstant(NewIConst(int64(s)), loc)
	}
	selAgg := &Aggregate{Op: OpSequence, Children: sel}
	selAgg.typ = NewType(Int)
	selAgg.loc = loc

	node := &Binary{Op: OpVectorSwizzle, Left: base, Right: selAgg}
	if len(selectors) == 1 {
		node.typ = NewType(bt.Basic)
	} else {
		node.typ = NewVectorType(bt.Basic, len(selectors))
	}
	node.loc = loc
	return node
}

// MakeAggregate wraps a node in a new OpNull aggregate, ready to grow.
func (i *Intermediate) MakeAggregate(node Node, loc diag.Loc) *Aggregate {
	agg := &Aggregate{Op: OpNull}
	if node != nil {
		agg.Children = append(agg.Children, node)
	}
	agg.typ = NewType(Void)
	agg.loc = loc
	return agg
}

// GrowAggregate appends right to left, creating or reusing an untyped
// aggregate.
func (i *Intermediate) GrowAggregate(left, right Node, loc diag.Loc) *Aggregate {
	if left == nil {
		return i.MakeAggregate(right, loc)
	}
	if agg, ok := left.(*Aggregate); ok && agg.Op == OpNull {
		if right != nil {
			agg.Children = append(agg.Children, right)
		}
		return agg
	}
	agg := i.MakeAggregate(left, loc)
	if right != nil {
		agg.Children = append(agg.Children, right)
	}
	return agg
}

// SetAggregateOperator stamps an operator and result type onto an
// aggregate, wrapping a non-aggregate node first.
func (i *Intermediate) SetAggregateOperator(node Node, op Op, typ Type, loc diag.Loc) *Aggregate {
	agg, ok := node.(*Aggregate)
	if !ok {
		agg = i.MakeAggregate(node, loc)
	}
	agg.Op = op
	agg.typ = typ
	agg.loc = loc
	return agg
}

// AreAllChildConst reports whether every child of an aggregate is a
// folded constant.
func (i *Intermediate) AreAllChildConst(agg *Aggregate) bool {
	for _, child := range agg.Children {
		if !IsConstant(child) {
			return false
		}
	}
	return true
}

// AddConstructor builds a constructor aggregate of the target type,
// folding when all arguments are constant.
func (i *Intermediate) AddConstructor(typ Type, args []Node, loc diag.Loc) Typed {
	agg := &Aggregate{Op: OpConstruct, Children: args}
	agg.typ = typ
	agg.loc = loc
	if i.AreAllChildConst(agg) {
		if folded := i.FoldConstructor(agg); folded != nil {
			return folded
		}
	}
	return agg
}

// AddFunctionCall builds a call aggregate and records the call edge for
// recursion and dead-code analysis.
func (i *Intermediate) AddFunctionCall(caller, callee string, args []Node, returnType Type, loc diag.Loc) *Aggregate {
	agg := &Aggregate{Op: OpFunctionCall, Name: callee, Children: args}
	agg.typ = returnType
	agg.loc = loc
	i.AddToCallGraph(caller, callee)
	return agg
}

// AddFunctionDefinition builds a function-definition aggregate from its
// parameter list and body, counting entry-point definitions.
func (i *Intermediate) AddFunctionDefinition(name string, returnType Type, params *Aggregate, body Node, loc diag.Loc) *Aggregate {
	fn := &Aggregate{Op: OpFunction, Name: name}
	if params != nil {
		params.Op = OpParameters
		fn.Children = append(fn.Children, params)
	} else {
		fn.Children = append(fn.Children, i.SetAggregateOperator(nil, OpParameters, NewType(Void), loc))
	}
	if body != nil {
		fn.Children = append(fn.Children, body)
	}
	fn.typ = returnType
	fn.loc = loc

	if mangledBase(name) == i.entryPointName {
		i.IncrementEntryPointCount()
		if i.entryPointMangledName == "" {
			i.entryPointMangledName = name
		}
	}
	return fn
}

// AddLoop builds a loop node.
func (i *Intermediate) AddLoop(body Node, test, terminal Typed, testFirst bool, loc diag.Loc) *Loop {
	l := &Loop{Body: body, Test: test, Terminal: terminal, TestFirst: testFirst}
	l.loc = loc
	return l
}

// AddBranch builds a flow-control node; expression is the operand of a
// value-carrying return, nil otherwise.
func (i *Intermediate) AddBranch(op Op, expression Typed, loc diag.Loc) *Branch {
	b := &Branch{FlowOp: op, Expression: expression}
	b.loc = loc
	return b
}

// FindLValueBase walks indexing (and optionally swizzles) down to the
// base symbol of an l-value, or nil when the node is not an l-value
// chain.
func FindLValueBase(node Typed, swizzleOkay bool) Typed {
	for {
		bin, ok := node.(*Binary)
		if !ok {
			if _, isSym := node.(*Symbol); isSym {
				return node
			}
			return nil
		}
		switch bin.Op {
		case OpIndexDirect, OpIndexIndirect:
			node = bin.Left
		case OpVectorSwizzle:
			if !swizzleOkay {
				return nil
			}
			node = bin.Left
		default:
			return nil
		}
	}
}
