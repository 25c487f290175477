package bridge

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/agentx-labs/copybridge/internal/copier"
)

// Scope is the set of filesystem roots the bridge may read or write. It
// stands in for the host's filesystem capability grant. The check is
// lexical; symlinks below an allowed root are not resolved.
type Scope struct {
	roots []string
}

// NewScope builds a Scope from absolute roots. No roots means no restriction.
func NewScope(roots []string) (*Scope, error) {
	s := &Scope{}
	for _, root := range roots {
		if !filepath.IsAbs(root) {
			return nil, fmt.Errorf("scope root %q is not absolute", root)
		}
		s.roots = append(s.roots, filepath.Clean(root))
	}
	return s, nil
}

// Roots returns the allowed roots.
func (s *Scope) Roots() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.roots...)
}

// Allows reports whether path lies under one of the roots. A nil or empty
// Scope allows everything.
func (s *Scope) Allows(path string) bool {
	if s == nil || len(s.roots) == 0 {
		return true
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, root := range s.roots {
		if withinRoot(root, abs) {
			return true
		}
	}
	return false
}

// Check returns a permission error for the first path outside the scope.
func (s *Scope) Check(paths ...string) error {
	for _, p := range paths {
		if !s.Allows(p) {
			return &copier.Error{Kind: copier.KindPermission, Op: "access", Path: p, Err: ErrOutsideScope}
		}
	}
	return nil
}

func withinRoot(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
