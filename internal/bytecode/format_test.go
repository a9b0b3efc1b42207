package bytecode

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModule_BytecodeRoundtrip(t *testing.T) {
	b := NewModuleBuilder("test.js")
	helloIdx := b.Constants().AddString("hello")
	numIdx := b.Constants().AddNumber(42.0)

	fb := NewFunctionBuilder("main")
	fb.Emit(Instruction{Op: OpLoadTrue, Dst: 0})
	fb.Emit(Instruction{Op: OpReturn, A: 0})
	b.AddFunction(fb.Build())
	b.WithEntryPoint(0)

	mod := b.Build()

	data, err := Encode(&mod)
	require.NoError(t, err)

	restored, err := Decode(data)
	require.NoError(t, err)

	require.Equal(t, "test.js", restored.SourceURL)
	require.Equal(t, 2, restored.Constants.Len())
	require.Len(t, restored.Functions, 1)

	hello, ok := restored.Constants.Get(helloIdx)
	require.True(t, ok)
	require.Equal(t, "hello", hello.Str)

	num, ok := restored.Constants.Get(numIdx)
	require.True(t, ok)
	require.Equal(t, 42.0, num.Num)

	entry, ok := restored.EntryFunction()
	require.True(t, ok)
	require.Equal(t, "main", entry.Name)
	require.Equal(t, OpLoadTrue, entry.Instructions[0].Op)
	require.Equal(t, OpReturn, entry.Instructions[1].Op)
}

func TestModule_InvalidMagic(t *testing.T) {
	data := append([]byte("INVALID\x00"), make([]byte, 8)...)
	_, err := Decode(data)
	require.ErrorIs(t, err, ErrInvalidMagic)
}

func TestModule_UnexpectedEnd(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrUnexpectedEnd)
}

func TestModule_UnsupportedVersion(t *testing.T) {
	b := NewModuleBuilder("v.js")
	mod := b.Build()
	data, err := Encode(&mod)
	require.NoError(t, err)

	data[8] = 0xFF // corrupt the version field

	_, err = Decode(data)
	var verErr *UnsupportedVersionError
	require.ErrorAs(t, err, &verErr)
}

func TestModule_SourceHashRoundtrips(t *testing.T) {
	hash := sha256.Sum256([]byte("const x = 1;"))
	b := NewModuleBuilder("hashed.js").WithSourceHash(hash)
	mod := b.Build()

	data, err := Encode(&mod)
	require.NoError(t, err)
	restored, err := Decode(data)
	require.NoError(t, err)

	require.Equal(t, hash, restored.SourceHash)
}

func TestConstantPool_DeduplicatesByValue(t *testing.T) {
	p := NewConstantPool()
	i1 := p.AddString("x")
	i2 := p.AddString("x")
	i3 := p.AddString("y")

	require.Equal(t, i1, i2)
	require.NotEqual(t, i1, i3)
	require.Equal(t, 2, p.Len())
}

func TestConstantPool_NumberAndStringDoNotCollide(t *testing.T) {
	p := NewConstantPool()
	p.AddString("42")
	p.AddNumber(42)
	require.Equal(t, 2, p.Len())
}

func TestConstantPool_RegexDedupesOnSourceAndFlags(t *testing.T) {
	p := NewConstantPool()
	i1 := p.AddRegex("a+", "g")
	i2 := p.AddRegex("a+", "g")
	i3 := p.AddRegex("a+", "i")

	require.Equal(t, i1, i2)
	require.NotEqual(t, i1, i3)
}

func TestImportExportRecords_RoundtripThroughModule(t *testing.T) {
	b := NewModuleBuilder("app.js")
	b.AddImport(ImportRecord{
		Specifier: "./utils.js",
		Bindings: []ImportBinding{
			{Kind: ImportNamed, Imported: "foo", Local: "foo"},
			{Kind: ImportDefault, Local: "utils"},
		},
	})
	b.AddExport(ExportRecord{Kind: ExportNamed, Local: "foo", Exported: "foo"})
	b.AddExport(ExportRecord{Kind: ExportReExportAll, Specifier: "./other.js"})
	mod := b.Build()

	data, err := Encode(&mod)
	require.NoError(t, err)
	restored, err := Decode(data)
	require.NoError(t, err)

	require.Len(t, restored.Imports, 1)
	require.Equal(t, "./utils.js", restored.Imports[0].Specifier)
	require.Len(t, restored.Imports[0].Bindings, 2)
	require.Equal(t, ImportNamed, restored.Imports[0].Bindings[0].Kind)

	require.Len(t, restored.Exports, 2)
	require.Equal(t, ExportReExportAll, restored.Exports[1].Kind)
	require.Equal(t, "./other.js", restored.Exports[1].Specifier)
}

func TestSourceMap_CompactAgreesWithPlainSlices(t *testing.T) {
	sm := &SourceMap{Lines: []uint32{1, 1, 2, 2, 3}, Columns: []uint32{0, 4, 0, 8, 0}}
	sm.Compact()

	for i, want := range sm.Lines {
		require.Equal(t, want, sm.LineAt(i))
	}
}
