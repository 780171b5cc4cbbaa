package ir

import "github.com/gogpu/glslang/diag"

// Node is any node in the built tree.
type Node interface {
	Loc() diag.Loc
}

// Typed is a node carrying a value of a known type.
type Typed interface {
	Node
	Type() *Type
}

// base holds the fields shared by every node.
type base struct {
	loc diag.Loc
}

func (b base) Loc() diag.Loc { return b.loc }

// typedBase adds the value type.
type typedBase struct {
	base
	typ Type
}

func (t *typedBase) Type() *Type { return &t.typ }

// Symbol references a declared variable.
type Symbol struct {
	typedBase
	ID   int64
	Name string
}

// NewSymbol creates a symbol node.
func NewSymbol(id int64, name string, typ Type, loc diag.Loc) *Symbol {
	s := &Symbol{ID: id, Name: name}
	s.typ = typ
	s.loc = loc
	return s
}

// ConstantUnion holds one or more folded constant values, one per
// scalar component of its type.
type ConstantUnion struct {
	typedBase
	Values  []ConstUnion
	Literal bool // literal in source; exempt from spec-const propagation
}

// NewConstantUnion creates a constant node over pre-folded values.
func NewConstantUnion(values []ConstUnion, typ Type, loc diag.Loc) *ConstantUnion {
	c := &ConstantUnion{Values: values}
	c.typ = typ
	c.loc = loc
	return c
}

// Binary is an operator node with two operands.
type Binary struct {
	typedBase
	Op    Op
	Left  Typed
	Right Typed
}

// Unary is an operator node with one operand. OpConvert unaries carry
// the conversion target as the node type.
type Unary struct {
	typedBase
	Op      Op
	Operand Typed
}

// Aggregate is an ordered list of children under one operator:
// sequences, function definitions, call argument lists, constructors,
// and the linker-objects list.
type Aggregate struct {
	typedBase
	Op       Op
	Name     string // function name for OpFunction / OpFunctionCall
	Children []Node
}

// Selection is either a ternary expression (typed) or an if/else
// statement (void type).
type Selection struct {
	typedBase
	Cond       Typed
	TrueBlock  Node
	FalseBlock Node
}

// Loop is a while/do-while/for body. Test and Terminal may be nil.
type Loop struct {
	base
	Body      Node
	Test      Typed
	Terminal  Typed
	TestFirst bool
}

// Branch is a flow-control statement; Expression is the operand of a
// value-carrying return, nil otherwise.
type Branch struct {
	base
	FlowOp     Op
	Expression Typed
}

// IsConstant reports whether the node is a folded constant.
func IsConstant(n Node) bool {
	_, ok := n.(*ConstantUnion)
	return ok
}
