package expr

import "math"

// UnaryOp enumerates elementwise single-operand operators.
type UnaryOp int

// Unary operators.
const (
	OpAbs UnaryOp = iota + 1
	OpNeg
	OpLog
	OpSign
	OpNot
)

var unaryNames = map[UnaryOp]string{
	OpAbs:  "Abs",
	OpNeg:  "Neg",
	OpLog:  "Log",
	OpSign: "Sign",
	OpNot:  "Not",
}

func (op UnaryOp) String() string { return unaryNames[op] }

func (op UnaryOp) fn() func(float64) float64 {
	switch op {
	case OpAbs:
		return math.Abs
	case OpNeg:
		return func(v float64) float64 { return -v }
	case OpLog:
		return math.Log
	case OpSign:
		return func(v float64) float64 {
			switch {
			case math.IsNaN(v):
				return v
			case v > 0:
				return 1
			case v < 0:
				return -1
			}
			return 0
		}
	case OpNot:
		return func(v float64) float64 {
			if math.IsNaN(v) {
				return v
			}
			return boolean(v == 0)
		}
	}
	panic("expr: unknown unary operator")
}

// BinaryOp enumerates elementwise two-operand operators.
type BinaryOp int

// Binary operators.
const (
	OpAdd BinaryOp = iota + 1
	OpSub
	OpMul
	OpDiv
	OpPower
	OpGt
	OpGe
	OpLt
	OpLe
	OpEq
	OpNe
	OpAnd
	OpOr
	OpGreater
	OpLess
)

var binaryNames = map[BinaryOp]string{
	OpAdd:     "Add",
	OpSub:     "Sub",
	OpMul:     "Mul",
	OpDiv:     "Div",
	OpPower:   "Power",
	OpGt:      "Gt",
	OpGe:      "Ge",
	OpLt:      "Lt",
	OpLe:      "Le",
	OpEq:      "Eq",
	OpNe:      "Ne",
	OpAnd:     "And",
	OpOr:      "Or",
	OpGreater: "Greater",
	OpLess:    "Less",
}

func (op BinaryOp) String() string { return binaryNames[op] }

// Comparisons follow IEEE semantics, so a NaN operand compares false except under Ne.
func (op BinaryOp) fn() func(a, b float64) float64 {
	switch op {
	case OpAdd:
		return func(a, b float64) float64 { return a + b }
	case OpSub:
		return func(a, b float64) float64 { return a - b }
	case OpMul:
		return func(a, b float64) float64 { return a * b }
	case OpDiv:
		return func(a, b float64) float64 { return a / b }
	case OpPower:
		return math.Pow
	case OpGt:
		return func(a, b float64) float64 { return boolean(a > b) }
	case OpGe:
		return func(a, b float64) float64 { return boolean(a >= b) }
	case OpLt:
		return func(a, b float64) float64 { return boolean(a < b) }
	case OpLe:
		return func(a, b float64) float64 { return boolean(a <= b) }
	case OpEq:
		return func(a, b float64) float64 { return boolean(a == b) }
	case OpNe:
		return func(a, b float64) float64 { return boolean(a != b) }
	case OpAnd:
		return func(a, b float64) float64 {
			if math.IsNaN(a) || math.IsNaN(b) {
				return math.NaN()
			}
			return boolean(a != 0 && b != 0)
		}
	case OpOr:
		return func(a, b float64) float64 {
			if math.IsNaN(a) || math.IsNaN(b) {
				return math.NaN()
			}
			return boolean(a != 0 || b != 0)
		}
	case OpGreater:
		return math.Max
	case OpLess:
		return math.Min
	}
	panic("expr: unknown binary operator")
}

// RollingOp enumerates trailing-window operators.
type RollingOp int

// Rolling operators.
const (
	OpRef RollingOp = iota + 1
	OpMean
	OpSum
	OpMax
	OpMin
	OpStd
)

var rollingNames = map[RollingOp]string{
	OpRef:  "Ref",
	OpMean: "Mean",
	OpSum:  "Sum",
	OpMax:  "Max",
	OpMin:  "Min",
	OpStd:  "Std",
}

func (op RollingOp) String() string { return rollingNames[op] }

// agg reduces one full window. A NaN anywhere in the window yields NaN.
func (op RollingOp) agg() func([]float64) float64 {
	switch op {
	case OpMean:
		return func(w []float64) float64 { return sum(w) / float64(len(w)) }
	case OpSum:
		return sum
	case OpMax:
		return func(w []float64) float64 {
			out := math.Inf(-1)
			for _, v := range w {
				out = math.Max(out, v)
			}
			return out
		}
	case OpMin:
		return func(w []float64) float64 {
			out := math.Inf(1)
			for _, v := range w {
				out = math.Min(out, v)
			}
			return out
		}
	case OpStd:
		return func(w []float64) float64 {
			if len(w) < 2 {
				return math.NaN()
			}
			mean := sum(w) / float64(len(w))
			var ss float64
			for _, v := range w {
				ss += (v - mean) * (v - mean)
			}
			return math.Sqrt(ss / float64(len(w)-1))
		}
	}
	panic("expr: no aggregation for " + op.String())
}

func sum(w []float64) float64 {
	var s float64
	for _, v := range w {
		s += v
	}
	return s
}

func boolean(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

var (
	unaryByName   = invert(unaryNames)
	binaryByName  = invert(binaryNames)
	rollingByName = invert(rollingNames)
)

func invert[K comparable](m map[K]string) map[string]K {
	out := make(map[string]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}
