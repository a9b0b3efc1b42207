package bytecode

import "github.com/otterjs/otter/internal/bitpack"

// SourceMap records, for each instruction in a Function, the source line
// and column it was compiled from — consulted lazily when an Error's
// `stack` getter formats a captured frame (spec §4.7 "Error stack
// capture"). Lines and columns are retained on the wire as plain slices
// for portability; Compact builds a delta-encoded bitpack.OffsetArray for
// the in-process representation, since instruction→line tables are long,
// monotonically-increasing-ish, and exactly the access pattern
// bitpack.NewOffsetArray is built for.
type SourceMap struct {
	Lines   []uint32 `cbor:"lines,omitempty"`
	Columns []uint32 `cbor:"columns,omitempty"`

	packedLines bitpack.OffsetArray
}

// Compact builds (and caches) the compressed line table. Safe to call
// more than once; later calls are no-ops.
func (m *SourceMap) Compact() {
	if m.packedLines != nil || len(m.Lines) == 0 {
		return
	}
	widened := make([]uint64, len(m.Lines))
	for i, l := range m.Lines {
		widened[i] = uint64(l)
	}
	m.packedLines = bitpack.NewOffsetArray(widened)
}

// LineAt returns the source line for instruction index i, using the
// compacted table if Compact has been called, falling back to the plain
// slice otherwise.
func (m *SourceMap) LineAt(i int) uint32 {
	if m.packedLines != nil {
		return uint32(m.packedLines.Index(i))
	}
	if i < 0 || i >= len(m.Lines) {
		return 0
	}
	return m.Lines[i]
}

// ColumnAt returns the source column for instruction index i.
func (m *SourceMap) ColumnAt(i int) uint32 {
	if i < 0 || i >= len(m.Columns) {
		return 0
	}
	return m.Columns[i]
}

// Function is one compiled function body (spec §4.3: "{name,
// parameter_count, local_count, instructions, constant_refs,
// feedback_vector_size, source_map?}").
type Function struct {
	Name               string        `cbor:"name"`
	ParameterCount     uint32        `cbor:"parameter_count"`
	LocalCount         uint32        `cbor:"local_count"`
	Instructions       []Instruction `cbor:"instructions"`
	ConstantRefs       []uint32      `cbor:"constant_refs,omitempty"`
	FeedbackVectorSize uint32        `cbor:"feedback_vector_size"`
	SourceMap          *SourceMap    `cbor:"source_map,omitempty"`

	// IsGenerator marks a function compiled from a `function*` body:
	// calling it creates a suspended generator object instead of running
	// the body immediately (spec §4.5's generator state machine).
	IsGenerator bool `cbor:"is_generator,omitempty"`
}

// FunctionBuilder assembles a Function incrementally, the way a
// compiler's code generator emits one instruction at a time. Named and
// chainable after the teacher's own HostFunctionBuilder (builder.go),
// adapted here to a bytecode function instead of a host function.
type FunctionBuilder struct {
	fn Function
}

// NewFunctionBuilder starts building a function named name.
func NewFunctionBuilder(name string) *FunctionBuilder {
	return &FunctionBuilder{fn: Function{Name: name}}
}

// WithParameterCount sets the declared parameter count.
func (b *FunctionBuilder) WithParameterCount(n uint32) *FunctionBuilder {
	b.fn.ParameterCount = n
	return b
}

// WithLocalCount sets the number of local register slots beyond the
// parameters.
func (b *FunctionBuilder) WithLocalCount(n uint32) *FunctionBuilder {
	b.fn.LocalCount = n
	return b
}

// WithFeedbackVectorSize sets how many IC slots this function needs.
func (b *FunctionBuilder) WithFeedbackVectorSize(n uint32) *FunctionBuilder {
	b.fn.FeedbackVectorSize = n
	return b
}

// WithSourceMap attaches debug line/column information.
func (b *FunctionBuilder) WithSourceMap(m *SourceMap) *FunctionBuilder {
	b.fn.SourceMap = m
	return b
}

// WithIsGenerator marks the function as a `function*` body.
func (b *FunctionBuilder) WithIsGenerator(isGenerator bool) *FunctionBuilder {
	b.fn.IsGenerator = isGenerator
	return b
}

// Emit appends one instruction and returns its index within the
// function, so callers can patch jump offsets after emitting a forward
// branch's target.
func (b *FunctionBuilder) Emit(instr Instruction) int {
	b.fn.Instructions = append(b.fn.Instructions, instr)
	return len(b.fn.Instructions) - 1
}

// ReferenceConstant records that this function reads constant-pool index
// idx, appending it to ConstantRefs if not already present.
func (b *FunctionBuilder) ReferenceConstant(idx uint32) {
	for _, existing := range b.fn.ConstantRefs {
		if existing == idx {
			return
		}
	}
	b.fn.ConstantRefs = append(b.fn.ConstantRefs, idx)
}

// Build finalizes the function.
func (b *FunctionBuilder) Build() Function {
	return b.fn
}
