package module

import "regexp"

var (
	staticImportRe = regexp.MustCompile(`(?m)^\s*import\s+(?:.*?\s+from\s+)?['"]([^'"]+)['"]`)
	dynamicImportRe = regexp.MustCompile(`import\s*\(\s*['"]([^'"]+)['"]\s*\)`)
	exportFromRe    = regexp.MustCompile(`(?m)^\s*export\s+.*?\s+from\s+['"]([^'"]+)['"]`)
)

// ScanImportSpecifiers extracts every module specifier a source text
// references — static `import ... from '...'`, dynamic `import('...')`,
// and `export ... from '...'` re-exports — grouped by kind (static
// imports, then dynamic imports, then re-exports), each group in source
// order, with duplicates removed (spec §4.8 step 4's "parse import/export
// statements").
//
// This is a textual scan, not a parse: it is deliberately the same
// trade-off the original implementation made (a regex pass ahead of a
// full AST), good enough to discover a graph's edges without needing a
// compiler front-end to exist first.
func ScanImportSpecifiers(source string) []string {
	seen := make(map[string]bool)
	var specifiers []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			specifiers = append(specifiers, s)
		}
	}
	for _, re := range []*regexp.Regexp{staticImportRe, dynamicImportRe, exportFromRe} {
		for _, m := range re.FindAllStringSubmatch(source, -1) {
			add(m[1])
		}
	}
	return specifiers
}
