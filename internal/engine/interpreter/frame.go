// Package interpreter implements the register-based bytecode interpreter
// described in spec §4.5: the dispatch loop, call stack, try/catch
// unwinding, and generator suspension/resumption. The dispatch loop's
// fetch/decode/execute/advance-pc shape is adapted from the teacher's own
// callEngine.callNativeFunc (a stack machine); this engine is a register
// machine instead, so frames carry a register file rather than an
// operand stack.
package interpreter

import (
	"github.com/otterjs/otter/internal/bytecode"
	"github.com/otterjs/otter/internal/ic"
	"github.com/otterjs/otter/internal/value"
)

// TryHandler is one entry on the active exception-handler stack: a catch
// target and the call-depth it was pushed at (spec §4.5 "a try stack
// recording (catch_pc, frame_depth)").
type TryHandler struct {
	CatchPC    int
	FrameDepth int
}

// Frame is one call-stack entry (spec §4.5's call-stack element shape).
// Registers is fixed at 256 slots, matching the instruction set's
// single-byte register operand (spec §4.4); this engine does not
// implement the optional overflow-spill path described alongside it,
// since nothing in the instruction family as specified addresses a
// register past 255.
type Frame struct {
	FunctionIndex uint32
	PC            int
	Registers     [256]value.Value

	ReturnRegister bytecode.Register
	SourceLine     uint32

	TryHandlers []TryHandler

	ThisValue   value.Value
	IsConstruct bool
	Closure     *value.Closure
	Module      *bytecode.Module
	Feedback    *ic.FeedbackVector

	// Argc is the argument count this frame was invoked with, consulted by
	// `arguments`-object materialization and generator snapshot.
	Argc int

	// Generator is non-nil when this frame is executing a generator
	// closure's body, set by resumeGenerator before each resumption so
	// YieldValue/YieldStar know which generator object to suspend into.
	Generator *Generator

	// Suspended, YieldValueOut, and resumeArg are transient dispatch-loop
	// state consulted only by resumeGenerator immediately after runLoop
	// returns and are not part of the persisted GeneratorFrame snapshot.
	// delegateIter and yieldDstReg are carried across a suspension: the
	// snapshot stores them as DelegateIterator and YieldDst.
	Suspended     bool
	YieldValueOut value.Value
	resumeArg     value.Value
	delegateIter  *value.JsObject
	yieldDstReg   bytecode.Register
}

// Get reads register r.
func (f *Frame) Get(r bytecode.Register) value.Value { return f.Registers[r] }

// Set writes v into register r.
func (f *Frame) Set(r bytecode.Register, v value.Value) { f.Registers[r] = v }

// setYieldDst records which register a suspending YieldValue/YieldStar
// should deliver the next resumed value into; read back by
// resumeGenerator via yieldDst when building the next GeneratorFrame
// snapshot.
func (f *Frame) setYieldDst(r bytecode.Register) { f.yieldDstReg = r }

// yieldDst returns the register most recently recorded by setYieldDst.
func (f *Frame) yieldDst() bytecode.Register { return f.yieldDstReg }

// function returns the compiled function this frame is executing.
func (f *Frame) function() (*bytecode.Function, bool) {
	return f.Module.Function(f.FunctionIndex)
}
