package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/glslang/diag"
)

func TestAddBinaryMath_FoldsIntArithmetic(t *testing.T) {
	im, _ := newTestIntermediate(StageVertex)

	sum := im.AddBinaryMath(OpAdd,
		im.AddScalarConstant(NewIConst(2), diag.Loc{}),
		im.AddScalarConstant(NewIConst(3), diag.Loc{}),
		diag.Loc{})
	require.NotNil(t, sum)

	folded, ok := sum.(*ConstantUnion)
	require.True(t, ok, "constant operands must fold")
	assert.Equal(t, int64(5), folded.Values[0].IConst())
	assert.Equal(t, Int, folded.Type().Basic)
}

func TestAddBinaryMath_ConvertsToCommonType(t *testing.T) {
	im, _ := newTestIntermediate(StageVertex)

	sum := im.AddBinaryMath(OpAdd,
		im.AddScalarConstant(NewIConst(2), diag.Loc{}),
		im.AddScalarConstant(NewDConst(3.5, Double), diag.Loc{}),
		diag.Loc{})
	require.NotNil(t, sum)

	folded := sum.(*ConstantUnion)
	assert.Equal(t, Double, folded.Type().Basic)
	assert.Equal(t, 5.5, folded.Values[0].DConst())
}

func TestAddBinaryMath_ShiftKeepsLeftType(t *testing.T) {
	im, _ := newTestIntermediate(StageVertex)

	shifted := im.AddBinaryMath(OpLeftShift,
		im.AddScalarConstant(NewUConst(1), diag.Loc{}),
		im.AddScalarConstant(NewIConst(3), diag.Loc{}),
		diag.Loc{})
	require.NotNil(t, shifted)

	folded := shifted.(*ConstantUnion)
	assert.Equal(t, Uint, folded.Type().Basic)
	assert.Equal(t, uint64(8), folded.Values[0].UConst())
}

func TestAddBinaryMath_IntegerWidthWraps(t *testing.T) {
	im, _ := newTestIntermediate(StageVertex)
	loc := diag.Loc{}

	// 32-bit signed overflow wraps at the result type's width.
	sum := im.AddBinaryMath(OpAdd,
		im.AddScalarConstant(NewIConst(2147483647), loc),
		im.AddScalarConstant(NewIConst(1), loc),
		loc)
	require.NotNil(t, sum)
	assert.Equal(t, int64(-2147483648), sum.(*ConstantUnion).Values[0].IConst())

	// 16-bit signed overflow.
	sum16 := im.AddBinaryMath(OpAdd,
		im.AddScalarConstant(NewI16Const(30000), loc),
		im.AddScalarConstant(NewI16Const(30000), loc),
		loc)
	require.NotNil(t, sum16)
	folded16 := sum16.(*ConstantUnion)
	assert.Equal(t, Int16, folded16.Type().Basic)
	assert.Equal(t, int64(-5536), folded16.Values[0].IConst())

	// 32-bit unsigned underflow.
	diff := im.AddBinaryMath(OpSub,
		im.AddScalarConstant(NewUConst(0), loc),
		im.AddScalarConstant(NewUConst(1), loc),
		loc)
	require.NotNil(t, diff)
	assert.Equal(t, uint64(4294967295), diff.(*ConstantUnion).Values[0].UConst())

	// Shifts wrap too.
	shifted := im.AddBinaryMath(OpLeftShift,
		im.AddScalarConstant(NewIConst(1), loc),
		im.AddScalarConstant(NewIConst(31), loc),
		loc)
	require.NotNil(t, shifted)
	assert.Equal(t, int64(-2147483648), shifted.(*ConstantUnion).Values[0].IConst())

	// Bitwise-not of a 32-bit unsigned stays 32 bits wide.
	not := im.AddUnaryMath(OpBitwiseNot, im.AddScalarConstant(NewUConst(0), loc), loc)
	require.NotNil(t, not)
	assert.Equal(t, uint64(4294967295), not.(*ConstantUnion).Values[0].UConst())

	// Negating the minimum 32-bit int wraps back to itself.
	neg := im.AddUnaryMath(OpNegative, im.AddScalarConstant(NewIConst(-2147483648), loc), loc)
	require.NotNil(t, neg)
	assert.Equal(t, int64(-2147483648), neg.(*ConstantUnion).Values[0].IConst())

	// 64-bit kinds keep their full width.
	sum64 := im.AddBinaryMath(OpAdd,
		im.AddScalarConstant(NewI64Const(2147483647), loc),
		im.AddScalarConstant(NewI64Const(1), loc),
		loc)
	require.NotNil(t, sum64)
	assert.Equal(t, int64(2147483648), sum64.(*ConstantUnion).Values[0].IConst())
}

func TestAddBinaryMath_DivisionByZeroReports(t *testing.T) {
	im, sink := newTestIntermediate(StageVertex)

	im.AddBinaryMath(OpDiv,
		im.AddScalarConstant(NewIConst(1), diag.Loc{}),
		im.AddScalarConstant(NewIConst(0), diag.Loc{}),
		diag.Loc{})

	assert.Equal(t, 1, countErrors(sink, "division by zero"))
}

func TestAddBinaryMath_ComparisonYieldsBool(t *testing.T) {
	im, _ := newTestIntermediate(StageVertex)

	less := im.AddBinaryMath(OpLessThan,
		im.AddScalarConstant(NewIConst(2), diag.Loc{}),
		im.AddScalarConstant(NewIConst(3), diag.Loc{}),
		diag.Loc{})
	require.NotNil(t, less)

	folded := less.(*ConstantUnion)
	assert.Equal(t, Bool, folded.Type().Basic)
	assert.True(t, folded.Values[0].BConst())
}

func TestAddBinaryMath_VectorEqualityIsOneBool(t *testing.T) {
	im, _ := newTestIntermediate(StageVertex)

	vecA := NewConstantUnion([]ConstUnion{NewIConst(1), NewIConst(2)}, NewVectorType(Int, 2), diag.Loc{})
	vecB := NewConstantUnion([]ConstUnion{NewIConst(1), NewIConst(3)}, NewVectorType(Int, 2), diag.Loc{})

	eq := im.AddBinaryMath(OpEqual, vecA, vecB, diag.Loc{})
	require.NotNil(t, eq)

	folded := eq.(*ConstantUnion)
	require.Len(t, folded.Values, 1)
	assert.False(t, folded.Values[0].BConst())
	assert.True(t, folded.Type().IsScalar())

	ne := im.AddBinaryMath(OpNotEqual, vecA, vecB, diag.Loc{}).(*ConstantUnion)
	assert.True(t, ne.Values[0].BConst())
}

func TestAddBinaryMath_IllegalOperands(t *testing.T) {
	im, _ := newTestIntermediate(StageVertex)
	loc := diag.Loc{}

	intConst := im.AddScalarConstant(NewIConst(1), loc)
	uintConst := im.AddScalarConstant(NewUConst(1), loc)
	floatConst := im.AddScalarConstant(NewDConst(1, Float), loc)
	boolConst := im.AddScalarConstant(NewBConst(true), loc)
	vec2 := im.AddSymbol("a", NewVectorType(Float, 2), loc)
	vec3 := im.AddSymbol("b", NewVectorType(Float, 3), loc)

	assert.Nil(t, im.AddBinaryMath(OpLogicalAnd, intConst, boolConst, loc),
		"logical operators take bool scalars only")
	assert.Nil(t, im.AddBinaryMath(OpAnd, floatConst, intConst, loc),
		"bitwise operators take integral operands only")
	assert.Nil(t, im.AddBinaryMath(OpLeftShift, floatConst, intConst, loc),
		"shifts take integral operands only")
	assert.Nil(t, im.AddBinaryMath(OpAdd, vec2, vec3, loc),
		"mismatched vector sizes")
	assert.Nil(t, im.AddBinaryMath(OpLessThan, intConst, uintConst, loc),
		"sign-changing comparison")
	assert.Nil(t, im.AddBinaryMath(OpLessThan, vec2, vec2, loc),
		"ordered comparison of vectors")
}

func TestAddBinaryMath_MatrixShapes(t *testing.T) {
	im, _ := newTestIntermediate(StageVertex)
	loc := diag.Loc{}

	mat := im.AddSymbol("m", NewMatrixType(Float, 4, 4), loc)
	vec := im.AddSymbol("v", NewVectorType(Float, 4), loc)
	scalar := im.AddSymbol("s", NewType(Float), loc)

	mv := im.AddBinaryMath(OpMul, mat, vec, loc)
	require.NotNil(t, mv)
	assert.True(t, mv.Type().IsVector())
	assert.Equal(t, 4, mv.Type().Vector)

	vm := im.AddBinaryMath(OpMul, vec, mat, loc)
	require.NotNil(t, vm)
	assert.Equal(t, 4, vm.Type().Vector)

	ms := im.AddBinaryMath(OpMul, mat, scalar, loc)
	require.NotNil(t, ms)
	assert.True(t, ms.Type().IsMatrix())

	mm := im.AddBinaryMath(OpMul, mat, mat, loc)
	require.NotNil(t, mm)
	assert.True(t, mm.Type().IsMatrix())

	badVec := im.AddSymbol("w", NewVectorType(Float, 3), loc)
	assert.Nil(t, im.AddBinaryMath(OpMul, mat, badVec, loc),
		"matrix*vector needs columns == vector size")
}

func TestAddBinaryMath_ScalarBroadcast(t *testing.T) {
	im, _ := newTestIntermediate(StageVertex)
	loc := diag.Loc{}

	vec := im.AddSymbol("v", NewVectorType(Float, 3), loc)
	scalar := im.AddScalarConstant(NewDConst(2, Float), loc)

	node := im.AddBinaryMath(OpMul, vec, scalar, loc)
	require.NotNil(t, node)
	assert.Equal(t, 3, node.Type().Vector)
}

func TestAddAssign(t *testing.T) {
	im, _ := newTestIntermediate(StageVertex)
	loc := diag.Loc{}

	target := im.AddSymbol("x", NewType(Float), loc)

	// int stores into float: always-safe conversion.
	node := im.AddAssign(OpAssign, target, im.AddScalarConstant(NewIConst(3), loc), loc)
	require.NotNil(t, node)
	assert.Equal(t, Float, node.Type().Basic)

	bin := node.(*Binary)
	converted := bin.Right.(*ConstantUnion)
	assert.Equal(t, Float, converted.Type().Basic)
	assert.Equal(t, 3.0, converted.Values[0].DConst())

	// double stores into float: narrowing, refused.
	assert.Nil(t, im.AddAssign(OpAssign, target, im.AddScalarConstant(NewDConst(1, Double), loc), loc))

	// non-assignment operator refused outright.
	assert.Nil(t, im.AddAssign(OpAdd, target, im.AddScalarConstant(NewIConst(1), loc), loc))
}

func TestAddIndex(t *testing.T) {
	im, _ := newTestIntermediate(StageVertex)
	loc := diag.Loc{}

	vec := im.AddSymbol("v", NewVectorType(Float, 4), loc)
	idx := im.AddScalarConstant(NewIConst(2), loc)

	node := im.AddIndex(OpIndexDirect, vec, idx, loc)
	require.NotNil(t, node)
	assert.True(t, node.Type().IsScalar())
	assert.Equal(t, Float, node.Type().Basic)

	// Constant base with a direct index folds.
	constVec := NewConstantUnion(
		[]ConstUnion{NewIConst(10), NewIConst(20), NewIConst(30)}, NewVectorType(Int, 3), loc)
	folded := im.AddIndex(OpIndexDirect, constVec, idx, loc)
	require.NotNil(t, folded)
	assert.True(t, IsConstant(folded))
	assert.Equal(t, int64(30), folded.(*ConstantUnion).Values[0].IConst())

	// Index must be an integral scalar.
	assert.Nil(t, im.AddIndex(OpIndexDirect, vec, im.AddScalarConstant(NewDConst(1, Float), loc), loc))
	// Scalars have no elements.
	assert.Nil(t, im.AddIndex(OpIndexDirect, im.AddSymbol("s", NewType(Float), loc), idx, loc))
}

func TestAddUnaryMath(t *testing.T) {
	im, _ := newTestIntermediate(StageVertex)
	loc := diag.Loc{}

	neg := im.AddUnaryMath(OpNegative, im.AddScalarConstant(NewIConst(5), loc), loc)
	require.NotNil(t, neg)
	assert.Equal(t, int64(-5), neg.(*ConstantUnion).Values[0].IConst())

	not := im.AddUnaryMath(OpLogicalNot, im.AddScalarConstant(NewBConst(true), loc), loc)
	require.NotNil(t, not)
	assert.False(t, not.(*ConstantUnion).Values[0].BConst())

	assert.Nil(t, im.AddUnaryMath(OpBitwiseNot, im.AddScalarConstant(NewDConst(1, Float), loc), loc))
	assert.Nil(t, im.AddUnaryMath(OpLogicalNot, im.AddScalarConstant(NewIConst(1), loc), loc))

	sym := im.AddSymbol("x", NewType(Int), loc)
	node := im.AddUnaryMath(OpNegative, sym, loc)
	require.NotNil(t, node)
	_, isUnary := node.(*Unary)
	assert.True(t, isUnary)
}

func TestAddSelection(t *testing.T) {
	im, _ := newTestIntermediate(StageVertex)
	loc := diag.Loc{}

	cond := im.AddSymbol("c", NewType(Bool), loc)
	node := im.AddSelection(cond,
		im.AddScalarConstant(NewIConst(1), loc),
		im.AddScalarConstant(NewDConst(2, Double), loc),
		loc)
	require.NotNil(t, node)
	assert.Equal(t, Double, node.Type().Basic, "branches converge to the common type")

	// A constant condition selects its branch outright.
	picked := im.AddSelection(
		im.AddScalarConstant(NewBConst(true), loc),
		im.AddScalarConstant(NewIConst(1), loc),
		im.AddScalarConstant(NewIConst(2), loc),
		loc)
	require.NotNil(t, picked)
	assert.Equal(t, int64(1), picked.(*ConstantUnion).Values[0].IConst())

	// The condition must be a scalar bool.
	assert.Nil(t, im.AddSelection(
		im.AddScalarConstant(NewIConst(1), loc),
		im.AddScalarConstant(NewIConst(1), loc),
		im.AddScalarConstant(NewIConst(2), loc),
		loc))
}

func TestAddSwizzle(t *testing.T) {
	im, _ := newTestIntermediate(StageVertex)
	loc := diag.Loc{}

	vec := im.AddSymbol("v", NewVectorType(Float, 4), loc)

	node := im.AddSwizzle(vec, []int{1, 0, 2}, loc)
	require.NotNil(t, node)
	assert.Equal(t, 3, node.Type().Vector)
	bin := node.(*Binary)
	assert.Equal(t, OpVectorSwizzle, bin.Op)

	single := im.AddSwizzle(vec, []int{3}, loc)
	require.NotNil(t, single)
	assert.True(t, single.Type().IsScalar())

	assert.Nil(t, im.AddSwizzle(vec, []int{4}, loc), "selector out of range")
	assert.Nil(t, im.AddSwizzle(vec, []int{0, 1, 2, 3, 0}, loc), "too many selectors")
	assert.Nil(t, im.AddSwizzle(im.AddSymbol("s", NewType(Float), loc), []int{0}, loc),
		"swizzle needs a vector base")

	// Constant base folds.
	constVec := NewConstantUnion(
		[]ConstUnion{NewIConst(1), NewIConst(2)}, NewVectorType(Int, 2), loc)
	folded := im.AddSwizzle(constVec, []int{1, 1}, loc)
	require.NotNil(t, folded)
	assert.True(t, IsConstant(folded))
}

func TestAddFunctionCall_RecordsEdge(t *testing.T) {
	im, _ := newTestIntermediate(StageVertex)

	im.AddFunctionCall("main", "helper", nil, NewType(Float), diag.Loc{})

	calls := im.CallGraph().Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, Call{Caller: "main", Callee: "helper"}, calls[0])
}

func TestAddFunctionDefinition_CountsEntryPoints(t *testing.T) {
	im, _ := newTestIntermediate(StageVertex)
	im.SetEntryPointName("main")

	fn := im.AddFunctionDefinition("main(", NewType(Void), nil, nil, diag.Loc{})
	require.NotNil(t, fn)
	assert.Equal(t, OpFunction, fn.Op)
	assert.Equal(t, 1, im.NumEntryPoints())
	assert.Equal(t, "main(", im.EntryPointMangledName())

	im.AddFunctionDefinition("helper(f1;", NewType(Float), nil, nil, diag.Loc{})
	assert.Equal(t, 1, im.NumEntryPoints(), "only the entry point counts")
}

func TestAddSymbol_UniqueIDs(t *testing.T) {
	im, _ := newTestIntermediate(StageVertex)

	a := im.AddSymbol("a", NewType(Float), diag.Loc{})
	b := im.AddSymbol("b", NewType(Float), diag.Loc{})
	if a.ID == b.ID {
		t.Errorf("symbol ids must be unique, both %d", a.ID)
	}
}

func TestGrowAggregate(t *testing.T) {
	im, _ := newTestIntermediate(StageVertex)
	loc := diag.Loc{}

	first := im.AddScalarConstant(NewIConst(1), loc)
	second := im.AddScalarConstant(NewIConst(2), loc)

	agg := im.GrowAggregate(nil, first, loc)
	agg = im.GrowAggregate(agg, second, loc)
	require.Len(t, agg.Children, 2)

	seq := im.SetAggregateOperator(agg, OpSequence, NewType(Void), loc)
	assert.Equal(t, OpSequence, seq.Op)
}

func TestFindLValueBase(t *testing.T) {
	im, _ := newTestIntermediate(StageVertex)
	loc := diag.Loc{}

	arr := NewVectorType(Float, 4)
	arr.ArraySize = 4
	sym := im.AddSymbol("data", arr, loc)
	idx := im.AddScalarConstant(NewIConst(1), loc)

	indexed := im.AddIndex(OpIndexIndirect, sym, idx, loc)
	require.NotNil(t, indexed)
	assert.Equal(t, Typed(sym), FindLValueBase(indexed, false))

	swizzled := im.AddSwizzle(indexed, []int{0, 1}, loc)
	require.NotNil(t, swizzled)
	assert.Equal(t, Typed(sym), FindLValueBase(swizzled, true))
	assert.Nil(t, FindLValueBase(swizzled, false))

	assert.Nil(t, FindLValueBase(im.AddScalarConstant(NewIConst(0), loc), true))
}
