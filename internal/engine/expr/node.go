// Package expr defines the expression tree evaluated over per-instrument time series.
//
// Every node renders a canonical string that identifies what it computes; the string
// is a pure function of the tree structure and doubles as part of the feature cache key.
// Trees are immutable after construction and their window requirements are folded
// bottom-up when a node is built.
package expr

import (
	"strconv"

	"go.trai.ch/qcache/internal/core/domain"
	"go.trai.ch/zerr"
)

// Node is an expression tree node.
type Node interface {
	// String returns the canonical form of the subtree.
	String() string
	// BackRolling is the number of historical steps upstream data must extend beyond
	// the requested range for this subtree to be evaluated.
	BackRolling() int
	// ExtendedWindow is the left extension of the load range required by this subtree.
	ExtendedWindow() int
	// Children returns the direct children in evaluation order.
	Children() []Node
}

// Operator is a node that combines the values of its children.
type Operator interface {
	Node
	// Window is the number of extra leading steps this operator needs from its children.
	Window() int
	// Apply combines child values, all covering the same span, into a value over that span.
	Apply(inputs []domain.Series) (domain.Series, error)
}

// Leaf refers to a raw feature loaded from the backend.
type Leaf struct {
	name   domain.InternedString
	period bool
}

// Feature returns the leaf for the raw feature name, rendered as "$name".
func Feature(name string) (*Leaf, error) {
	if err := domain.ValidateName("feature", name); err != nil {
		return nil, err
	}
	return &Leaf{name: domain.NewInternedString(name)}, nil
}

// PeriodFeature returns the leaf for a point-in-time feature, rendered as "$$name".
func PeriodFeature(name string) (*Leaf, error) {
	leaf, err := Feature(name)
	if err != nil {
		return nil, err
	}
	leaf.period = true
	return leaf, nil
}

// MustFeature is Feature for names known to be valid; it panics otherwise.
func MustFeature(name string) *Leaf {
	leaf, err := Feature(name)
	if err != nil {
		panic(err)
	}
	return leaf
}

// Name returns the bare feature name.
func (l *Leaf) Name() string { return l.name.String() }

// Period reports whether the leaf is a point-in-time feature.
func (l *Leaf) Period() bool { return l.period }

func (l *Leaf) String() string {
	if l.period {
		return "$$" + l.name.String()
	}
	return "$" + l.name.String()
}

// BackRolling implements Node.
func (l *Leaf) BackRolling() int { return 0 }

// ExtendedWindow implements Node.
func (l *Leaf) ExtendedWindow() int { return 0 }

// Children implements Node.
func (l *Leaf) Children() []Node { return nil }

// Constant is a scalar broadcast against the series it is combined with.
type Constant struct {
	value float64
}

// Const returns a constant node.
func Const(v float64) *Constant {
	return &Constant{value: v}
}

// Value returns the constant.
func (c *Constant) Value() float64 { return c.value }

func (c *Constant) String() string {
	return strconv.FormatFloat(c.value, 'g', -1, 64)
}

// BackRolling implements Node.
func (c *Constant) BackRolling() int { return 0 }

// ExtendedWindow implements Node.
func (c *Constant) ExtendedWindow() int { return 0 }

// Children implements Node.
func (c *Constant) Children() []Node { return nil }

// CrossInstrument evaluates its child against another instrument.
type CrossInstrument struct {
	instrument domain.InternedString
	child      Node
	back, ext  int
}

// ChangeInstrument rebinds child to instrument.
func ChangeInstrument(instrument string, child Node) (*CrossInstrument, error) {
	if err := domain.ValidateName("instrument", instrument); err != nil {
		return nil, err
	}
	return &CrossInstrument{
		instrument: domain.NewInternedString(instrument),
		child:      child,
		back:       child.BackRolling(),
		ext:        child.ExtendedWindow(),
	}, nil
}

// Instrument returns the instrument the child is evaluated against.
func (c *CrossInstrument) Instrument() string { return c.instrument.String() }

// Child returns the rebound subtree.
func (c *CrossInstrument) Child() Node { return c.child }

func (c *CrossInstrument) String() string {
	return "ChangeInstrument(" + c.instrument.String() + "," + c.child.String() + ")"
}

// BackRolling implements Node.
func (c *CrossInstrument) BackRolling() int { return c.back }

// ExtendedWindow implements Node.
func (c *CrossInstrument) ExtendedWindow() int { return c.ext }

// Children implements Node.
func (c *CrossInstrument) Children() []Node { return []Node{c.child} }

// Unary applies an elementwise function to one child.
type Unary struct {
	op        UnaryOp
	child     Node
	back, ext int
}

// NewUnary builds a unary node.
func NewUnary(op UnaryOp, child Node) *Unary {
	return &Unary{op: op, child: child, back: child.BackRolling(), ext: child.ExtendedWindow()}
}

// Abs is |x|.
func Abs(n Node) *Unary { return NewUnary(OpAbs, n) }

// Neg is -x.
func Neg(n Node) *Unary { return NewUnary(OpNeg, n) }

// Log is the natural logarithm.
func Log(n Node) *Unary { return NewUnary(OpLog, n) }

// Sign is -1, 0 or 1.
func Sign(n Node) *Unary { return NewUnary(OpSign, n) }

// Not is logical negation.
func Not(n Node) *Unary { return NewUnary(OpNot, n) }

// Op returns the operator.
func (u *Unary) Op() UnaryOp { return u.op }

func (u *Unary) String() string {
	return u.op.String() + "(" + u.child.String() + ")"
}

// BackRolling implements Node.
func (u *Unary) BackRolling() int { return u.back }

// ExtendedWindow implements Node.
func (u *Unary) ExtendedWindow() int { return u.ext }

// Children implements Node.
func (u *Unary) Children() []Node { return []Node{u.child} }

// Window implements Operator.
func (u *Unary) Window() int { return 0 }

// Apply implements Operator.
func (u *Unary) Apply(inputs []domain.Series) (domain.Series, error) {
	in := inputs[0]
	out := make(domain.Series, len(in))
	fn := u.op.fn()
	for i, v := range in {
		out[i] = fn(v)
	}
	return out, nil
}

// Binary applies an elementwise function to two aligned children.
type Binary struct {
	op          BinaryOp
	left, right Node
	back, ext   int
}

// NewBinary builds a binary node.
func NewBinary(op BinaryOp, left, right Node) *Binary {
	return &Binary{
		op:    op,
		left:  left,
		right: right,
		back:  max(left.BackRolling(), right.BackRolling()),
		ext:   max(left.ExtendedWindow(), right.ExtendedWindow()),
	}
}

// Add is a + b.
func Add(a, b Node) *Binary { return NewBinary(OpAdd, a, b) }

// Sub is a - b.
func Sub(a, b Node) *Binary { return NewBinary(OpSub, a, b) }

// Mul is a * b.
func Mul(a, b Node) *Binary { return NewBinary(OpMul, a, b) }

// Div is a / b.
func Div(a, b Node) *Binary { return NewBinary(OpDiv, a, b) }

// Power is a ** b.
func Power(a, b Node) *Binary { return NewBinary(OpPower, a, b) }

// Gt is a > b.
func Gt(a, b Node) *Binary { return NewBinary(OpGt, a, b) }

// Ge is a >= b.
func Ge(a, b Node) *Binary { return NewBinary(OpGe, a, b) }

// Lt is a < b.
func Lt(a, b Node) *Binary { return NewBinary(OpLt, a, b) }

// Le is a <= b.
func Le(a, b Node) *Binary { return NewBinary(OpLe, a, b) }

// Eq is a == b.
func Eq(a, b Node) *Binary { return NewBinary(OpEq, a, b) }

// Ne is a != b.
func Ne(a, b Node) *Binary { return NewBinary(OpNe, a, b) }

// And is logical conjunction.
func And(a, b Node) *Binary { return NewBinary(OpAnd, a, b) }

// Or is logical disjunction.
func Or(a, b Node) *Binary { return NewBinary(OpOr, a, b) }

// Greater is the elementwise maximum.
func Greater(a, b Node) *Binary { return NewBinary(OpGreater, a, b) }

// Less is the elementwise minimum.
func Less(a, b Node) *Binary { return NewBinary(OpLess, a, b) }

// Op returns the operator.
func (b *Binary) Op() BinaryOp { return b.op }

func (b *Binary) String() string {
	return b.op.String() + "(" + b.left.String() + "," + b.right.String() + ")"
}

// BackRolling implements Node.
func (b *Binary) BackRolling() int { return b.back }

// ExtendedWindow implements Node.
func (b *Binary) ExtendedWindow() int { return b.ext }

// Children implements Node.
func (b *Binary) Children() []Node { return []Node{b.left, b.right} }

// Window implements Operator.
func (b *Binary) Window() int { return 0 }

// Apply implements Operator. A constant operand is broadcast; any other length
// mismatch is an alignment error.
func (b *Binary) Apply(inputs []domain.Series) (domain.Series, error) {
	left, right := inputs[0], inputs[1]
	_, leftConst := b.left.(*Constant)
	_, rightConst := b.right.(*Constant)

	n := len(left)
	switch {
	case leftConst && !rightConst:
		n = len(right)
	case !leftConst && !rightConst && len(left) != len(right):
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrAlignment, "operands differ in length"),
			"left", len(left)), "right", len(right))
	}

	at := func(s domain.Series, isConst bool, i int) float64 {
		if isConst {
			return s[0]
		}
		return s[i]
	}

	fn := b.op.fn()
	out := make(domain.Series, n)
	for i := range out {
		out[i] = fn(at(left, leftConst, i), at(right, rightConst, i))
	}
	return out, nil
}

// Rolling aggregates its child over a trailing window of n steps.
type Rolling struct {
	op        RollingOp
	child     Node
	n         int
	back, ext int
}

// NewRolling builds a rolling node. The window must be positive.
func NewRolling(op RollingOp, child Node, n int) (*Rolling, error) {
	if n <= 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidWindow, op.String()+" rejected"), "window", n)
	}
	r := &Rolling{op: op, child: child, n: n}
	r.back = child.BackRolling() + r.Window()
	r.ext = child.ExtendedWindow() + r.Window()
	return r, nil
}

// Ref shifts the child back by n steps.
func Ref(n Node, window int) (*Rolling, error) { return NewRolling(OpRef, n, window) }

// Mean is the trailing mean.
func Mean(n Node, window int) (*Rolling, error) { return NewRolling(OpMean, n, window) }

// Sum is the trailing sum.
func Sum(n Node, window int) (*Rolling, error) { return NewRolling(OpSum, n, window) }

// Max is the trailing maximum.
func Max(n Node, window int) (*Rolling, error) { return NewRolling(OpMax, n, window) }

// Min is the trailing minimum.
func Min(n Node, window int) (*Rolling, error) { return NewRolling(OpMin, n, window) }

// Std is the trailing sample standard deviation.
func Std(n Node, window int) (*Rolling, error) { return NewRolling(OpStd, n, window) }

// Op returns the operator.
func (r *Rolling) Op() RollingOp { return r.op }

// N returns the window length.
func (r *Rolling) N() int { return r.n }

func (r *Rolling) String() string {
	return r.op.String() + "(" + r.child.String() + "," + strconv.Itoa(r.n) + ")"
}

// BackRolling implements Node.
func (r *Rolling) BackRolling() int { return r.back }

// ExtendedWindow implements Node.
func (r *Rolling) ExtendedWindow() int { return r.ext }

// Children implements Node.
func (r *Rolling) Children() []Node { return []Node{r.child} }

// Window implements Operator. Ref needs n earlier steps, aggregations n-1.
func (r *Rolling) Window() int {
	if r.op == OpRef {
		return r.n
	}
	return r.n - 1
}

// Apply implements Operator. Positions without a full window of history are NaN.
func (r *Rolling) Apply(inputs []domain.Series) (domain.Series, error) {
	in := inputs[0]
	out := domain.NewSeries(len(in))

	if r.op == OpRef {
		for i := r.n; i < len(in); i++ {
			out[i] = in[i-r.n]
		}
		return out, nil
	}

	agg := r.op.agg()
	for i := r.n - 1; i < len(in); i++ {
		out[i] = agg(in[i-r.n+1 : i+1])
	}
	return out, nil
}
