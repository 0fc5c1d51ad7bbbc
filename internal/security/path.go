// Package security implements the validation primitives spec.md §4.1
// requires at every untrusted-input boundary: path containment, URL
// whitelisting, size and time bounds, and integrity verification.
package security

import (
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"golang.org/x/text/unicode/norm"

	"resourcehub/internal/logging"
	"resourcehub/internal/rerr"
)

// ValidatePath resolves requested against base the way spec.md §4.1
// describes: normalize (Unicode NFKC), resolve symlinks, and require the
// result to be a descendant of base. A request is treated as a disguised
// traversal attempt — and rejected — when its raw form contains no ".."
// but its NFKC-normalized form does (this catches lookalike dot/slash
// characters such as U+FF0E, U+FE52, U+2024).
func ValidatePath(requested, base string) (string, error) {
	normalized := norm.NFKC.String(requested)

	if !strings.Contains(requested, "..") && strings.Contains(filepath.ToSlash(normalized), "..") {
		logging.Get(logging.CategorySecurity).Warn("disguised traversal blocked: %q normalizes to %q", requested, normalized)
		return "", rerr.PathTraversal(requested)
	}

	// SecureJoin clamps ".." at base instead of failing, so a lexical escape
	// is rejected here first.
	lexical, err := filepath.Rel(filepath.Clean(base), filepath.Join(base, normalized))
	if err != nil || lexical == ".." || strings.HasPrefix(lexical, ".."+string(filepath.Separator)) {
		return "", rerr.PathTraversal(requested)
	}

	resolved, err := securejoin.SecureJoin(base, normalized)
	if err != nil {
		return "", rerr.PathTraversal(requested).Wrap(err)
	}

	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", rerr.PathTraversal(requested).Wrap(err)
	}
	rel, err := filepath.Rel(absBase, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", rerr.PathTraversal(requested)
	}

	return resolved, nil
}
