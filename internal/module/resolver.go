package module

import (
	"net/url"
	"path"
	"strings"

	"github.com/otterjs/otter/internal/ottererr"
)

// Resolver implements spec §4.8's resolver contract: given a specifier
// and an optional referrer URL, produce a canonical URL.
type Resolver interface {
	Resolve(specifier, referrer string) (string, error)
}

// ImportMap is the optional bare-specifier rewrite table a host supplies
// (the browser/Deno "import map" convention): bare names like "lodash"
// resolve through it before falling back to an error.
type ImportMap map[string]string

// AllowlistFunc reports whether a remote (http/https) specifier is
// permitted to resolve at all. A nil AllowlistFunc rejects every remote
// specifier.
type AllowlistFunc func(canonicalURL string) bool

// DefaultResolver implements spec §4.8's resolver contract: absolute
// URLs stay as-is, relative paths resolve against the referrer's
// directory, bare specifiers consult ImportMap, "node:*" specifiers
// pass through verbatim since the host owns them, and remote specifiers
// must satisfy Allowlist.
type DefaultResolver struct {
	ImportMap ImportMap
	Allowlist AllowlistFunc
}

// NewDefaultResolver builds a resolver with the given import map (nil
// is fine, meaning no bare-specifier rewrites) and allowlist predicate
// (nil rejects all remote specifiers).
func NewDefaultResolver(importMap ImportMap, allowlist AllowlistFunc) *DefaultResolver {
	return &DefaultResolver{ImportMap: importMap, Allowlist: allowlist}
}

func (r *DefaultResolver) Resolve(specifier, referrer string) (string, error) {
	if strings.HasPrefix(specifier, "node:") {
		return specifier, nil
	}

	if isAbsoluteURL(specifier) {
		return r.checkRemote(specifier)
	}

	if strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") || strings.HasPrefix(specifier, "/") {
		resolved, err := resolveRelative(specifier, referrer)
		if err != nil {
			return "", &ottererr.ModuleError{Kind: ottererr.ModuleResolution, URL: specifier}
		}
		return r.checkRemote(resolved)
	}

	// Bare specifier: consult the import map.
	if r.ImportMap != nil {
		if mapped, ok := r.ImportMap[specifier]; ok {
			return r.checkRemote(mapped)
		}
	}
	return "", &ottererr.ModuleError{Kind: ottererr.ModuleResolution, URL: specifier}
}

// checkRemote enforces the allowlist on http(s) specifiers; anything
// else (file:, relative-resolved paths with no scheme) passes through.
func (r *DefaultResolver) checkRemote(canonicalURL string) (string, error) {
	if !isRemoteURL(canonicalURL) {
		return canonicalURL, nil
	}
	allowed := r.Allowlist != nil && r.Allowlist(canonicalURL)
	if !allowed {
		return "", &ottererr.ModuleError{Kind: ottererr.ModuleResolution, URL: canonicalURL}
	}
	return canonicalURL, nil
}

func isAbsoluteURL(specifier string) bool {
	u, err := url.Parse(specifier)
	return err == nil && u.Scheme != ""
}

func isRemoteURL(canonicalURL string) bool {
	u, err := url.Parse(canonicalURL)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// resolveRelative resolves specifier against referrer's directory. A
// referrer that is itself a URL (http/https/file) is resolved with
// net/url; a bare filesystem path uses path.Join against its directory.
func resolveRelative(specifier, referrer string) (string, error) {
	if referrer == "" {
		return path.Clean(specifier), nil
	}
	if isAbsoluteURL(referrer) {
		base, err := url.Parse(referrer)
		if err != nil {
			return "", err
		}
		ref, err := url.Parse(specifier)
		if err != nil {
			return "", err
		}
		return base.ResolveReference(ref).String(), nil
	}
	return path.Join(path.Dir(referrer), specifier), nil
}
