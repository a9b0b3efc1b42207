// Package bytecode implements the compiled-module wire format and
// register-based instruction set described in spec §4.3–§4.4: a constant
// pool, a function table, import/export records, and the file format a
// compiler or a bytecode cache writes and the interpreter reads back.
package bytecode

// Register names one of a frame's 256 general-purpose slots (spec §4.4:
// "256 registers per frame plus overflow-spill semantics").
type Register uint8

// Opcode is the tag of a single bytecode instruction.
type Opcode uint8

const (
	// Constants
	OpLoadConst Opcode = iota
	OpLoadInt32
	OpLoadTrue
	OpLoadFalse
	OpLoadUndefined
	OpLoadNull

	// Moves
	OpMove
	OpCopy

	// Arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow

	// Bitwise
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShrS
	OpShrU

	// Compare
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpStrictEq
	OpStrictNe

	// Logical
	OpNot
	OpNeg
	OpTypeOf

	// Control
	OpJump
	OpJumpIfTrue
	OpJumpIfFalse
	OpReturn
	OpThrow

	// Exceptions
	OpPushTry
	OpPopTry
	OpRaiseException

	// Objects
	OpNewObject
	OpNewArray
	OpGetPropConst
	OpGetPropDyn
	OpSetPropConst
	OpSetPropDyn
	OpDeleteProp

	// Calls
	OpCall
	OpConstruct
	OpCallMethod

	// Closures
	OpMakeClosure
	OpLoadUpvalue
	OpStoreUpvalue

	// Iteration
	OpGetIterator
	OpIteratorNext

	// Generators
	OpYieldValue
	OpYieldStar
	OpGeneratorReturn

	// Globals
	OpGetGlobal
	OpSetGlobal
)

var opcodeNames = map[Opcode]string{
	OpLoadConst: "LoadConst", OpLoadInt32: "LoadInt32", OpLoadTrue: "LoadTrue",
	OpLoadFalse: "LoadFalse", OpLoadUndefined: "LoadUndefined", OpLoadNull: "LoadNull",
	OpMove: "Move", OpCopy: "Copy",
	OpAdd: "Add", OpSub: "Sub", OpMul: "Mul", OpDiv: "Div", OpMod: "Mod", OpPow: "Pow",
	OpAnd: "And", OpOr: "Or", OpXor: "Xor", OpShl: "Shl", OpShrS: "ShrS", OpShrU: "ShrU",
	OpLt: "Lt", OpLe: "Le", OpGt: "Gt", OpGe: "Ge", OpEq: "Eq", OpNe: "Ne",
	OpStrictEq: "StrictEq", OpStrictNe: "StrictNe",
	OpNot: "Not", OpNeg: "Neg", OpTypeOf: "TypeOf",
	OpJump: "Jump", OpJumpIfTrue: "JumpIfTrue", OpJumpIfFalse: "JumpIfFalse",
	OpReturn: "Return", OpThrow: "Throw",
	OpPushTry: "PushTry", OpPopTry: "PopTry", OpRaiseException: "RaiseException",
	OpNewObject: "NewObject", OpNewArray: "NewArray",
	OpGetPropConst: "GetPropConst", OpGetPropDyn: "GetPropDyn",
	OpSetPropConst: "SetPropConst", OpSetPropDyn: "SetPropDyn", OpDeleteProp: "DeleteProp",
	OpCall: "Call", OpConstruct: "Construct", OpCallMethod: "CallMethod",
	OpMakeClosure: "MakeClosure", OpLoadUpvalue: "LoadUpvalue", OpStoreUpvalue: "StoreUpvalue",
	OpGetIterator: "GetIterator", OpIteratorNext: "IteratorNext",
	OpYieldValue: "YieldValue", OpYieldStar: "YieldStar", OpGeneratorReturn: "GeneratorReturn",
	OpGetGlobal: "GetGlobal", OpSetGlobal: "SetGlobal",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "Unknown"
}

// Instruction is one decoded bytecode operation. Not every field is
// meaningful for every opcode; the interpreter's dispatch switch knows
// which to read (spec §4.4's operand lists per category).
type Instruction struct {
	Op   Opcode `cbor:"op"`
	Dst  Register `cbor:"dst,omitempty"`
	A    Register `cbor:"a,omitempty"`
	B    Register `cbor:"b,omitempty"`

	// ConstIdx indexes the owning function's constant pool (LoadConst,
	// GetGlobal/SetGlobal name, property names for GetPropConst/SetPropConst).
	ConstIdx uint32 `cbor:"const_idx,omitempty"`

	// Imm32 carries LoadInt32's immediate, NewArray's length, and Call/
	// Construct/CallMethod's argc.
	Imm32 int32 `cbor:"imm32,omitempty"`

	// Offset carries Jump/JumpIfTrue/JumpIfFalse/PushTry's signed
	// relative-instruction-count target (spec §4.4: "a signed relative
	// offset in instructions, not bytes").
	Offset int32 `cbor:"offset,omitempty"`

	// FeedbackIndex names the IC slot consulted/updated by this
	// instruction (arithmetic, GetProp*/SetProp*); slot 0 is an ordinary
	// slot. Arithmetic whose index lies past the end of the function's
	// feedback vector records no feedback; GetProp*/SetProp* require an
	// index inside the vector.
	FeedbackIndex uint32 `cbor:"fb_idx,omitempty"`

	// Upvalues carries MakeClosure's captured-register list.
	Upvalues []Register `cbor:"upvalues,omitempty"`
}
