package bytecode

// ImportBindingKind distinguishes the three import-binding shapes a
// static `import` statement can produce (spec §4.3).
type ImportBindingKind uint8

const (
	ImportNamed ImportBindingKind = iota
	ImportNamespace
	ImportDefault
)

// ImportBinding is one name bound by an import statement: `import {
// foo }`, `import * as foo`, or `import foo`.
type ImportBinding struct {
	Kind     ImportBindingKind `cbor:"kind"`
	Imported string            `cbor:"imported,omitempty"` // ImportNamed only
	Local    string            `cbor:"local"`
}

// ImportRecord is one module specifier's full set of bound names (spec
// §4.3 "an import record is {specifier, bindings}").
type ImportRecord struct {
	Specifier string          `cbor:"specifier"`
	Bindings  []ImportBinding `cbor:"bindings"`
}

// ExportRecordKind distinguishes the four export-statement shapes (spec
// §4.3 "an export record is one of {Named, Default, ReExportAll,
// ReExportNamed}").
type ExportRecordKind uint8

const (
	ExportNamed ExportRecordKind = iota
	ExportDefault
	ExportReExportAll
	ExportReExportNamed
)

// ExportRecord is one export statement's binding information. Which
// fields are meaningful depends on Kind:
//   - ExportNamed: Local, Exported
//   - ExportDefault: Local
//   - ExportReExportAll: Specifier
//   - ExportReExportNamed: Specifier, Imported, Exported
type ExportRecord struct {
	Kind      ExportRecordKind `cbor:"kind"`
	Local     string           `cbor:"local,omitempty"`
	Exported  string           `cbor:"exported,omitempty"`
	Specifier string           `cbor:"specifier,omitempty"`
	Imported  string           `cbor:"imported,omitempty"`
}

// TypeKind is the shape of a TypeScript type preserved from source for
// host introspection (spec §4.3 "optional TS type info"); the engine
// itself never enforces these, it only carries them.
type TypeKind uint8

const (
	TypePrimitive TypeKind = iota
	TypeObject
	TypeArray
	TypeFunction
	TypeUnion
	TypeIntersection
	TypeGeneric
	TypeAlias
	TypeInterface
	TypeEnum
	TypeClass
)

// TypeInfo is one preserved TypeScript type annotation.
type TypeInfo struct {
	Name string   `cbor:"name"`
	Kind TypeKind `cbor:"kind"`
}

// Module is one compiled bytecode module: the payload described by spec
// §4.3's file format, independent of the "OTTERBC\0" framing around it
// (see format.go).
type Module struct {
	SourceURL  string        `cbor:"source_url"`
	SourceHash [32]byte      `cbor:"source_hash"`
	Constants  *ConstantPool `cbor:"constants"`
	Functions  []Function    `cbor:"functions"`
	EntryPoint uint32        `cbor:"entry_point"`
	Imports    []ImportRecord `cbor:"imports,omitempty"`
	Exports    []ExportRecord `cbor:"exports,omitempty"`
	Types      []TypeInfo     `cbor:"types,omitempty"`
	IsESM      bool           `cbor:"is_esm"`
	Source     *string        `cbor:"source,omitempty"`
}

// EntryFunction returns the module's designated entry-point function.
func (m *Module) EntryFunction() (*Function, bool) {
	return m.Function(m.EntryPoint)
}

// Function returns the function at index, if any.
func (m *Module) Function(index uint32) (*Function, bool) {
	if int(index) >= len(m.Functions) {
		return nil, false
	}
	return &m.Functions[index], true
}

// ModuleBuilder assembles a Module incrementally, mirroring the
// immutable With*-chain builder idiom used elsewhere in this codebase
// (config.go's EngineConfig) but mutable, since building a module body
// instruction-by-instruction benefits from in-place appends the way the
// teacher's own HostFunctionBuilder accumulates host functions.
type ModuleBuilder struct {
	mod Module
}

// NewModuleBuilder starts building a module for the given source URL,
// defaulting to ES module semantics (spec §4.3 "is_esm flag").
func NewModuleBuilder(sourceURL string) *ModuleBuilder {
	return &ModuleBuilder{mod: Module{
		SourceURL: sourceURL,
		Constants: NewConstantPool(),
		IsESM:     true,
	}}
}

// WithSourceHash sets the SHA-256 of the original source text, used for
// bytecode-cache invalidation (spec §4.8 loader contract, §12.5).
func (b *ModuleBuilder) WithSourceHash(hash [32]byte) *ModuleBuilder {
	b.mod.SourceHash = hash
	return b
}

// Constants returns the module's constant pool for in-place population.
func (b *ModuleBuilder) Constants() *ConstantPool { return b.mod.Constants }

// AddFunction appends fn and returns its index.
func (b *ModuleBuilder) AddFunction(fn Function) uint32 {
	idx := uint32(len(b.mod.Functions))
	b.mod.Functions = append(b.mod.Functions, fn)
	return idx
}

// WithEntryPoint sets the entry-point function index.
func (b *ModuleBuilder) WithEntryPoint(index uint32) *ModuleBuilder {
	b.mod.EntryPoint = index
	return b
}

// AddImport appends an import record.
func (b *ModuleBuilder) AddImport(rec ImportRecord) *ModuleBuilder {
	b.mod.Imports = append(b.mod.Imports, rec)
	return b
}

// AddExport appends an export record.
func (b *ModuleBuilder) AddExport(rec ExportRecord) *ModuleBuilder {
	b.mod.Exports = append(b.mod.Exports, rec)
	return b
}

// AddTypeInfo appends a preserved TypeScript type annotation.
func (b *ModuleBuilder) AddTypeInfo(info TypeInfo) *ModuleBuilder {
	b.mod.Types = append(b.mod.Types, info)
	return b
}

// WithESM overrides the default ES-module flag (for CommonJS sources).
func (b *ModuleBuilder) WithESM(isESM bool) *ModuleBuilder {
	b.mod.IsESM = isESM
	return b
}

// WithSource attaches the original source text for debugging.
func (b *ModuleBuilder) WithSource(src string) *ModuleBuilder {
	b.mod.Source = &src
	return b
}

// Build finalizes the module.
func (b *ModuleBuilder) Build() Module {
	return b.mod
}
