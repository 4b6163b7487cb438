// Package catalog holds the fixed list of item names a demand sheet may contain.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmpty is returned when a catalog source contains no usable item names.
var ErrEmpty = errors.New("catalog has no items")

// Catalog is an immutable, ordered set of item names. Membership is exact and
// case-sensitive.
type Catalog struct {
	items []string
	index map[string]struct{}
}

// File is the on-disk catalog layout.
type File struct {
	Items []string `yaml:"items"`
}

// New builds a catalog. Names are trimmed, blank names are dropped and
// duplicates keep their first position.
func New(items ...string) *Catalog {
	c := &Catalog{
		items: make([]string, 0, len(items)),
		index: make(map[string]struct{}, len(items)),
	}
	for _, item := range items {
		name := strings.TrimSpace(item)
		if name == "" {
			continue
		}
		if _, dup := c.index[name]; dup {
			continue
		}
		c.index[name] = struct{}{}
		c.items = append(c.items, name)
	}
	return c
}

// Contains reports whether name is exactly a catalog entry. No normalization is
// applied to name.
func (c *Catalog) Contains(name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.index[name]
	return ok
}

// Items returns the catalog entries in configuration order.
func (c *Catalog) Items() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Parse reads a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	c := New(f.Items...)
	if c.Len() == 0 {
		return nil, ErrEmpty
	}
	return c, nil
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: catalog path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Load builds the catalog from a file when path is set, otherwise from inline
// items. At least one source must yield a name.
func Load(path string, items []string) (*Catalog, error) {
	if path != "" {
		return LoadFile(path)
	}
	c := New(items...)
	if c.Len() == 0 {
		return nil, ErrEmpty
	}
	return c, nil
}
