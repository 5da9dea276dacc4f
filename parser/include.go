package parser

import (
	"os"
	"path/filepath"

	"github.com/haverford/hera/stdlib"
)

// Includer resolves both forms of #include -- quoted (relative to the
// including file) and bracketed (stdlib or search-root lookup). It is an
// interface rather than a bare function so tests can substitute an
// in-memory filesystem without touching disk.
type Includer interface {
	// ReadQuoted reads the file at rel, resolved relative to fromDir, and
	// returns its canonical (absolute, symlink-resolved) path alongside
	// its contents.
	ReadQuoted(fromDir, rel string) (canonical, content string, err error)
	// ReadBracketed resolves a `<name>` include: the built-in stdlib
	// table first, then the configured search root.
	ReadBracketed(name string) (content string, err error)
}

// OSIncluder resolves includes against the real filesystem, consulting
// SearchRoot for `<name>` includes not found in the built-in table.
// SearchRoot defaults to the conventional course library path when empty.
type OSIncluder struct {
	SearchRoot string
}

const defaultSearchRoot = "/home/courses/lib/HERA-lib"

func (o OSIncluder) ReadQuoted(fromDir, rel string) (string, string, error) {
	full := rel
	if !filepath.IsAbs(full) {
		full = filepath.Join(fromDir, rel)
	}
	canonical, err := filepath.Abs(full)
	if err == nil {
		if resolved, symErr := filepath.EvalSymlinks(canonical); symErr == nil {
			canonical = resolved
		}
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return canonical, "", err
	}
	return canonical, string(data), nil
}

func (o OSIncluder) ReadBracketed(name string) (string, error) {
	if src, ok := stdlib.Lookup(name); ok {
		return src, nil
	}
	root := o.SearchRoot
	if root == "" {
		root = defaultSearchRoot
	}
	data, err := os.ReadFile(filepath.Join(root, name))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
