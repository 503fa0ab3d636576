package numeric

import (
	"fmt"
	"strings"
)

type exprOp uint8

const (
	opLeaf exprOp = iota
	opConst
	opAdd
)

// LazyExpr is an immutable node of a deferred addition tree.
// Children are fixed at construction, so a tree can never contain a cycle.
type LazyExpr struct {
	op    exprOp
	name  string
	value float64
	left  *LazyExpr
	right *LazyExpr
}

// Leaf creates a named input. Differentiation targets leaves by name.
func Leaf(name string, value float64) *LazyExpr {
	return &LazyExpr{op: opLeaf, name: name, value: value}
}

// Const creates an unnamed input whose derivative is always zero
func Const(value float64) *LazyExpr {
	return &LazyExpr{op: opConst, value: value}
}

// AddExpr builds the node a + b. Both children must be non-nil.
func AddExpr(a, b *LazyExpr) *LazyExpr {
	if a == nil || b == nil {
		panic("numeric: AddExpr requires non-nil operands")
	}
	return &LazyExpr{op: opAdd, left: a, right: b}
}

// SumExpr folds terms left to right into a tree. It returns Const(0) for
// no terms.
func SumExpr(terms ...*LazyExpr) *LazyExpr {
	if len(terms) == 0 {
		return Const(0)
	}
	expr := terms[0]
	for _, t := range terms[1:] {
		expr = AddExpr(expr, t)
	}
	return expr
}

// IsLeaf reports whether e is a named leaf
func (e *LazyExpr) IsLeaf() bool { return e.op == opLeaf }

// Name returns the leaf name, or "" for other nodes
func (e *LazyExpr) Name() string { return e.name }

// Evaluate folds the tree post-order with float addition
func (e *LazyExpr) Evaluate() float64 {
	switch e.op {
	case opAdd:
		return e.left.Evaluate() + e.right.Evaluate()
	default:
		return e.value
	}
}

// Differentiate returns d(e)/d(wrt). A leaf named wrt contributes 1,
// every other input 0, and an add node the sum of its children.
func (e *LazyExpr) Differentiate(wrt string) float64 {
	switch e.op {
	case opLeaf:
		if e.name == wrt {
			return 1
		}
		return 0
	case opAdd:
		return e.left.Differentiate(wrt) + e.right.Differentiate(wrt)
	default:
		return 0
	}
}

// Gradient is exactly expr.Differentiate(wrt)
func Gradient(expr *LazyExpr, wrt string) float64 {
	return expr.Differentiate(wrt)
}

// Gradients differentiates with respect to every leaf name
func (e *LazyExpr) Gradients() map[string]float64 {
	grads := make(map[string]float64)
	for _, name := range e.Variables() {
		grads[name] = e.Differentiate(name)
	}
	return grads
}

// Terms lists the input values in left-to-right order
func (e *LazyExpr) Terms() []float64 {
	var out []float64
	e.walk(func(n *LazyExpr) {
		out = append(out, n.value)
	})
	return out
}

// Variables lists distinct leaf names in first-seen order
func (e *LazyExpr) Variables() []string {
	seen := make(map[string]struct{})
	var out []string
	e.walk(func(n *LazyExpr) {
		if n.op != opLeaf {
			return
		}
		if _, ok := seen[n.name]; ok {
			return
		}
		seen[n.name] = struct{}{}
		out = append(out, n.name)
	})
	return out
}

// Bind returns a copy of the tree with the named leaves set to new values.
// Names not present in values keep their current value.
func (e *LazyExpr) Bind(values map[string]float64) *LazyExpr {
	switch e.op {
	case opLeaf:
		if v, ok := values[e.name]; ok {
			return Leaf(e.name, v)
		}
		return e
	case opAdd:
		return AddExpr(e.left.Bind(values), e.right.Bind(values))
	default:
		return e
	}
}

// walk visits the inputs (leaves and constants) left to right
func (e *LazyExpr) walk(visit func(*LazyExpr)) {
	if e.op == opAdd {
		e.left.walk(visit)
		e.right.walk(visit)
		return
	}
	visit(e)
}

func (e *LazyExpr) String() string {
	var sb strings.Builder
	e.render(&sb)
	return sb.String()
}

func (e *LazyExpr) render(sb *strings.Builder) {
	switch e.op {
	case opLeaf:
		sb.WriteString(e.name)
	case opConst:
		fmt.Fprintf(sb, "%g", e.value)
	case opAdd:
		sb.WriteByte('(')
		e.left.render(sb)
		sb.WriteString(" + ")
		e.right.render(sb)
		sb.WriteByte(')')
	}
}
