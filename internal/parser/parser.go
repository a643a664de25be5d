// Package parser reads the arrivals and point-of-entry tables and joins
// them into the records every dashboard view is computed from.
package parser

import (
	"path/filepath"
	"strings"
)

// TableReader reads a tabular file into a Table.
type TableReader interface {
	// Name returns the unique name of the reader.
	Name() string
	// CanRead returns true if this reader handles the given file.
	CanRead(filePath string) bool
	// Read reads the whole file. The first row is the header.
	Read(filePath string) (*Table, error)
}

func hasExt(filePath string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
