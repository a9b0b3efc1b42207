package interpreter

import (
	"math"
	"strconv"

	"github.com/otterjs/otter/internal/bytecode"
	"github.com/otterjs/otter/internal/ic"
	"github.com/otterjs/otter/internal/value"
)

// operandKind classifies v for binary-op feedback (spec §4.6).
func operandKind(v value.Value) ic.OperandKind {
	switch v.Kind() {
	case value.Int32:
		return ic.KindInt32
	case value.Number:
		return ic.KindNumber
	case value.String:
		return ic.KindString
	default:
		return ic.KindAny
	}
}

// toDisplayString implements the ToString coercion Add's string-
// concatenation path needs. Full ToString (calling toString/valueOf on
// objects) is an intrinsics-layer concern; this covers the primitive
// cases the interpreter itself can resolve.
func (i *Interpreter) toDisplayString(v value.Value) string {
	switch v.Kind() {
	case value.String:
		s, _ := v.AsString()
		return s.String()
	case value.Undefined:
		return "undefined"
	case value.Null:
		return "null"
	case value.Boolean:
		if v.ToBool() {
			return "true"
		}
		return "false"
	default:
		n := v.ToNumber()
		if n == math.Trunc(n) && !math.IsInf(n, 0) && !math.IsNaN(n) {
			return strconv.FormatInt(int64(n), 10)
		}
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
}

// binaryOp evaluates Add/Sub/Mul/Div/Mod/Pow/bitwise/compare instructions,
// recording operand-kind feedback for the arithmetic fallback's fast-path
// hinting (spec §4.6 "Binary-op feedback").
func (i *Interpreter) binaryOp(f *Frame, instr bytecode.Instruction) (value.Value, error) {
	lhs := f.Get(instr.A)
	rhs := f.Get(instr.B)
	if f.Feedback != nil && int(instr.FeedbackIndex) < f.Feedback.Len() {
		f.Feedback.RecordBinaryOperands(instr.FeedbackIndex, operandKind(lhs), operandKind(rhs))
	}

	switch instr.Op {
	case bytecode.OpAdd:
		return i.add(lhs, rhs)
	case bytecode.OpSub:
		return value.NewNumber(lhs.ToNumber() - rhs.ToNumber()), nil
	case bytecode.OpMul:
		return value.NewNumber(lhs.ToNumber() * rhs.ToNumber()), nil
	case bytecode.OpDiv:
		return value.NewNumber(lhs.ToNumber() / rhs.ToNumber()), nil
	case bytecode.OpMod:
		return value.NewNumber(math.Mod(lhs.ToNumber(), rhs.ToNumber())), nil
	case bytecode.OpPow:
		return value.NewNumber(math.Pow(lhs.ToNumber(), rhs.ToNumber())), nil
	case bytecode.OpAnd:
		return value.NewInt32(toInt32(lhs) & toInt32(rhs)), nil
	case bytecode.OpOr:
		return value.NewInt32(toInt32(lhs) | toInt32(rhs)), nil
	case bytecode.OpXor:
		return value.NewInt32(toInt32(lhs) ^ toInt32(rhs)), nil
	case bytecode.OpShl:
		return value.NewInt32(toInt32(lhs) << (toUint32(rhs) & 31)), nil
	case bytecode.OpShrS:
		return value.NewInt32(toInt32(lhs) >> (toUint32(rhs) & 31)), nil
	case bytecode.OpShrU:
		return value.NewNumber(float64(toUint32(lhs) >> (toUint32(rhs) & 31))), nil
	case bytecode.OpLt:
		return value.NewBool(lhs.ToNumber() < rhs.ToNumber()), nil
	case bytecode.OpLe:
		return value.NewBool(lhs.ToNumber() <= rhs.ToNumber()), nil
	case bytecode.OpGt:
		return value.NewBool(lhs.ToNumber() > rhs.ToNumber()), nil
	case bytecode.OpGe:
		return value.NewBool(lhs.ToNumber() >= rhs.ToNumber()), nil
	case bytecode.OpEq:
		return value.NewBool(looseEquals(lhs, rhs)), nil
	case bytecode.OpNe:
		return value.NewBool(!looseEquals(lhs, rhs)), nil
	case bytecode.OpStrictEq:
		return value.NewBool(lhs.StrictEquals(rhs)), nil
	case bytecode.OpStrictNe:
		return value.NewBool(!lhs.StrictEquals(rhs)), nil
	default:
		return value.Undef, &internalOpcodeError{instr.Op}
	}
}

// add implements the `+` operator's two shapes: string concatenation if
// either operand is a string, numeric addition otherwise.
func (i *Interpreter) add(lhs, rhs value.Value) (value.Value, error) {
	if _, ok := lhs.AsString(); ok {
		return i.concat(lhs, rhs)
	}
	if _, ok := rhs.AsString(); ok {
		return i.concat(lhs, rhs)
	}
	return value.NewNumber(lhs.ToNumber() + rhs.ToNumber()), nil
}

func (i *Interpreter) concat(lhs, rhs value.Value) (value.Value, error) {
	s, err := value.NewJsString(i.collector, i.toDisplayString(lhs)+i.toDisplayString(rhs))
	if err != nil {
		return value.Undef, err
	}
	return value.NewString(s), nil
}

// looseEquals implements `==`'s coercion for the cases the interpreter
// can resolve without calling back into user code (numbers, strings,
// booleans, null/undefined, and same-type object identity); a full
// ToPrimitive coercion for objects belongs to intrinsics.
func looseEquals(lhs, rhs value.Value) bool {
	if lhs.Kind() == rhs.Kind() {
		return lhs.StrictEquals(rhs)
	}
	if lhs.IsNullish() && rhs.IsNullish() {
		return true
	}
	if lhs.IsNullish() || rhs.IsNullish() {
		return false
	}
	return lhs.ToNumber() == rhs.ToNumber()
}

func (i *Interpreter) unaryOp(f *Frame, instr bytecode.Instruction) (value.Value, error) {
	src := f.Get(instr.A)
	switch instr.Op {
	case bytecode.OpNot:
		return value.NewBool(!src.ToBool()), nil
	case bytecode.OpNeg:
		return value.NewNumber(-src.ToNumber()), nil
	case bytecode.OpTypeOf:
		s, err := value.NewJsString(i.collector, src.TypeOf())
		if err != nil {
			return value.Undef, err
		}
		return value.NewString(s), nil
	default:
		return value.Undef, &internalOpcodeError{instr.Op}
	}
}

// formatKeyNumber renders a computed property key's numeric operand the
// same way toDisplayString would, without needing an Interpreter
// receiver — ToPropertyKey's coercion never allocates a heap string.
func formatKeyNumber(n float64) string {
	if n == math.Trunc(n) && !math.IsInf(n, 0) && !math.IsNaN(n) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

func toInt32(v value.Value) int32 {
	n := v.ToNumber()
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return int32(int64(n))
}

func toUint32(v value.Value) uint32 {
	return uint32(toInt32(v))
}

type internalOpcodeError struct {
	op bytecode.Opcode
}

func (e *internalOpcodeError) Error() string {
	return "interpreter: unexpected opcode in arithmetic dispatch: " + e.op.String()
}
