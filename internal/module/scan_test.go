package module

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScanImportSpecifiers_Static(t *testing.T) {
	got := ScanImportSpecifiers(`
		import { foo } from './foo.js';
		import bar from "https://esm.sh/bar";
		import * as utils from './utils.js';
	`)
	require.ElementsMatch(t, []string{"./foo.js", "https://esm.sh/bar", "./utils.js"}, got)
}

func TestScanImportSpecifiers_Dynamic(t *testing.T) {
	got := ScanImportSpecifiers(`
		const mod = await import('./dynamic.js');
		import("./another.js").then(m => m.default);
	`)
	require.ElementsMatch(t, []string{"./dynamic.js", "./another.js"}, got)
}

func TestScanImportSpecifiers_ExportFrom(t *testing.T) {
	got := ScanImportSpecifiers(`
		export { foo } from './foo.js';
		export * from './all.js';
	`)
	require.ElementsMatch(t, []string{"./foo.js", "./all.js"}, got)
}

func TestScanImportSpecifiers_SideEffectOnly(t *testing.T) {
	got := ScanImportSpecifiers(`
		import './side-effect.js';
		import "https://esm.sh/polyfill";
	`)
	require.ElementsMatch(t, []string{"./side-effect.js", "https://esm.sh/polyfill"}, got)
}

func TestScanImportSpecifiers_NoDuplicates(t *testing.T) {
	got := ScanImportSpecifiers(`
		import { foo } from './mod.js';
		import { bar } from './mod.js';
		const x = await import('./mod.js');
	`)
	require.Equal(t, []string{"./mod.js"}, got)
}

func TestScanImportSpecifiers_Mixed(t *testing.T) {
	got := ScanImportSpecifiers(`
		import { foo } from './foo.js';
		import bar from "https://esm.sh/bar";
		const dynamic = await import('./dynamic.js');
		export { baz } from './baz.js';
	`)
	require.ElementsMatch(t, []string{"./foo.js", "https://esm.sh/bar", "./dynamic.js", "./baz.js"}, got)
}
